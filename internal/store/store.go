package store

import (
	"context"
	"errors"
	"time"

	"github.com/nostella/nostella/internal/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for
// now) implement this. Sub-repositories keep concerns tidy and testable.
type Store interface {
	Users() Users
	Photos() Photos

	ApplyMigrations() error

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped store.
type Tx interface {
	Users() Users
	Photos() Photos
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail looks a user up by the exact email string. Uniqueness
	// is enforced by the store, case-sensitive as stored.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id provided by the app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// SetVerificationCode overwrites the code and expiry. Used by resend;
	// the previous code becomes invalid immediately.
	SetVerificationCode(ctx context.Context, userID, code string, expiresAt time.Time) error

	// MarkVerified flips is_verified and clears code + expiry atomically.
	MarkVerified(ctx context.Context, userID string) error

	// UpdateName mutates the display name and bumps updated_at.
	UpdateName(ctx context.Context, userID, name string) error

	// UpdateAvatarURL sets the avatar URL and bumps updated_at.
	UpdateAvatarURL(ctx context.Context, userID, avatarURL string) error

	// SetVIP flips the VIP flag. Administrative; no auth flow calls this.
	SetVIP(ctx context.Context, userID string, vip bool) error

	// ClearExpiredCodes nulls out verification codes whose expiry has
	// passed for still-unverified users. Housekeeping.
	ClearExpiredCodes(ctx context.Context) (int64, error)
}

type Photos interface {
	// CreatePhoto inserts a new photo row.
	CreatePhoto(ctx context.Context, p domain.Photo) error

	// GetPhotoByID returns a photo by id regardless of owner; ownership
	// checks belong to the service layer.
	GetPhotoByID(ctx context.Context, id string) (domain.Photo, error)

	// ListPhotosByUser returns the user's photos ordered by taken_at DESC.
	ListPhotosByUser(ctx context.Context, userID string) ([]domain.Photo, error)

	// UpdatePhoto applies a partial-field update and bumps updated_at.
	UpdatePhoto(ctx context.Context, id string, upd domain.PhotoUpdate) error

	// SetFavorite sets the favorite flag.
	SetFavorite(ctx context.Context, id string, favorite bool) error

	// SetStory stores a generated story and marks has_story.
	SetStory(ctx context.Context, id string, story string) error

	// DeletePhoto removes the row.
	DeletePhoto(ctx context.Context, id string) error
}
