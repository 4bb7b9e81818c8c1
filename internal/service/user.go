package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nostella/nostella/internal/domain"
	"github.com/nostella/nostella/internal/storage"
	"github.com/nostella/nostella/internal/store"
)

const maxNameLength = 80

// Profile is the full profile view, richer than domain.Summary.
type Profile struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
	IsVIP     bool    `json:"isVip"`
}

// UserService serves profile reads and edits for authenticated users.
type UserService struct {
	Store   store.Store
	Objects storage.ObjectStore
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (Profile, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Profile{}, ErrUserNotFound
		}
		return Profile{}, err
	}
	return profileOf(user), nil
}

// UpdateName changes the display name and returns the fresh profile.
func (s *UserService) UpdateName(ctx context.Context, userID, name string) (Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Profile{}, &ValidationError{Field: "name", Message: "must not be empty"}
	}
	if len(name) > maxNameLength {
		return Profile{}, &ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("must be at most %d characters", maxNameLength),
		}
	}

	if err := s.Store.Users().UpdateName(ctx, userID, name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Profile{}, ErrUserNotFound
		}
		return Profile{}, err
	}

	return s.GetProfile(ctx, userID)
}

// UpdateAvatar stores the image and points the profile at it. The old
// avatar object, if any, is left behind; avatars are tiny and orphan
// cleanup is not worth a delete on the hot path.
func (s *UserService) UpdateAvatar(ctx context.Context, userID, contentType string, body io.Reader) (Profile, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return Profile{}, &ValidationError{Field: "avatar", Message: "must be an image"}
	}

	res, err := s.Objects.Put(ctx, contentType, body)
	if err != nil {
		return Profile{}, err
	}

	if err := s.Store.Users().UpdateAvatarURL(ctx, userID, res.URL); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Profile{}, ErrUserNotFound
		}
		return Profile{}, err
	}

	return s.GetProfile(ctx, userID)
}

func profileOf(u domain.User) Profile {
	return Profile{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
		IsVIP:     u.IsVIP,
	}
}
