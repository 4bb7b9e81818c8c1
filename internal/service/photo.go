package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/nostella/nostella/internal/domain"
	"github.com/nostella/nostella/internal/storage"
	"github.com/nostella/nostella/internal/store"
	"github.com/nostella/nostella/pkg/idx"
	"github.com/nostella/nostella/pkg/slogx"
)

var (
	ErrPhotoNotFound = errors.New("photo_not_found")
	ErrNotOwner      = errors.New("not_owner")
)

// PhotoService owns the memory timeline: uploads, edits, favorites,
// deletes. Every mutation checks ownership first; a photo that exists but
// belongs to someone else is ErrNotOwner, never ErrPhotoNotFound, so the
// caller can map them to 403 vs 404.
type PhotoService struct {
	Store   store.Store
	Objects storage.ObjectStore
}

// UploadParams describes one upload. TakenAt zero means "now".
type UploadParams struct {
	UserID      string
	ContentType string
	Body        io.Reader
	Caption     string
	Description string
	TakenAt     time.Time
}

// Upload stores the object first and the row second. If the row insert
// fails the object is deleted on a best-effort basis.
func (s *PhotoService) Upload(ctx context.Context, p UploadParams) (domain.Photo, error) {
	log := slogx.FromContext(ctx)

	if !strings.HasPrefix(p.ContentType, "image/") {
		return domain.Photo{}, &ValidationError{Field: "photo", Message: "must be an image"}
	}

	res, err := s.Objects.Put(ctx, p.ContentType, p.Body)
	if err != nil {
		return domain.Photo{}, err
	}

	now := time.Now().UTC()
	takenAt := p.TakenAt
	if takenAt.IsZero() {
		takenAt = now
	}

	photo := domain.Photo{
		ID:        idx.New().String(),
		UserID:    p.UserID,
		URL:       res.URL,
		Key:       res.Key,
		Caption:   strings.TrimSpace(p.Caption),
		TakenAt:   takenAt.UTC(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if desc := strings.TrimSpace(p.Description); desc != "" {
		photo.Description = &desc
	}

	if err := s.Store.Photos().CreatePhoto(ctx, photo); err != nil {
		if delErr := s.Objects.Delete(ctx, res.Key); delErr != nil {
			log.Warn("orphaned object after failed insert", "key", res.Key, "err", delErr)
		}
		return domain.Photo{}, err
	}

	return photo, nil
}

// List returns the user's timeline, newest taken_at first.
func (s *PhotoService) List(ctx context.Context, userID string) ([]domain.Photo, error) {
	return s.Store.Photos().ListPhotosByUser(ctx, userID)
}

// Get returns one photo after an ownership check.
func (s *PhotoService) Get(ctx context.Context, userID, photoID string) (domain.Photo, error) {
	return s.owned(ctx, userID, photoID)
}

// Update applies a partial edit to an owned photo.
func (s *PhotoService) Update(ctx context.Context, userID, photoID string, upd domain.PhotoUpdate) (domain.Photo, error) {
	if _, err := s.owned(ctx, userID, photoID); err != nil {
		return domain.Photo{}, err
	}

	if err := s.Store.Photos().UpdatePhoto(ctx, photoID, upd); err != nil {
		return domain.Photo{}, err
	}
	return s.Store.Photos().GetPhotoByID(ctx, photoID)
}

// ToggleFavorite flips the favorite flag and returns the new state.
func (s *PhotoService) ToggleFavorite(ctx context.Context, userID, photoID string) (domain.Photo, error) {
	photo, err := s.owned(ctx, userID, photoID)
	if err != nil {
		return domain.Photo{}, err
	}

	if err := s.Store.Photos().SetFavorite(ctx, photoID, !photo.IsFavorite); err != nil {
		return domain.Photo{}, err
	}
	return s.Store.Photos().GetPhotoByID(ctx, photoID)
}

// Delete removes the row and then the stored object. A failed object
// delete is logged, not returned; the row is already gone and the
// timeline must reflect that.
func (s *PhotoService) Delete(ctx context.Context, userID, photoID string) error {
	log := slogx.FromContext(ctx)

	photo, err := s.owned(ctx, userID, photoID)
	if err != nil {
		return err
	}

	if err := s.Store.Photos().DeletePhoto(ctx, photoID); err != nil {
		return err
	}

	if err := s.Objects.Delete(ctx, photo.Key); err != nil {
		log.Warn("orphaned object after delete", "key", photo.Key, "err", err)
	}
	return nil
}

// ViewURL returns a short-lived signed URL for the photo bytes.
func (s *PhotoService) ViewURL(ctx context.Context, userID, photoID string) (string, error) {
	photo, err := s.owned(ctx, userID, photoID)
	if err != nil {
		return "", err
	}
	return s.Objects.PresignGet(ctx, photo.Key)
}

func (s *PhotoService) owned(ctx context.Context, userID, photoID string) (domain.Photo, error) {
	photo, err := s.Store.Photos().GetPhotoByID(ctx, photoID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Photo{}, ErrPhotoNotFound
		}
		return domain.Photo{}, err
	}
	if photo.UserID != userID {
		return domain.Photo{}, ErrNotOwner
	}
	return photo, nil
}
