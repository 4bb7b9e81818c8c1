package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/nostella/nostella/internal/ai"
	"github.com/nostella/nostella/internal/domain"
	"github.com/nostella/nostella/internal/store"
)

var ErrVIPRequired = errors.New("vip_required")

// StoryService turns a photo's caption into a short AI-written vignette.
// VIP-only; the flag is checked per request, not baked into the token, so
// an upgrade takes effect without re-login.
type StoryService struct {
	Store     store.Store
	Generator ai.Generator
}

// Generate writes a story for an owned photo and persists it on the row.
// Regenerating overwrites the previous story.
func (s *StoryService) Generate(ctx context.Context, userID, photoID string) (domain.Photo, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Photo{}, ErrUserNotFound
		}
		return domain.Photo{}, err
	}
	if !user.IsVIP {
		return domain.Photo{}, ErrVIPRequired
	}

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

	story, err := s.Generator.GenerateStory(ctx, storyPrompt(photo))
	if err != nil {
		return domain.Photo{}, err
	}

	if err := s.Store.Photos().SetStory(ctx, photo.ID, story); err != nil {
		return domain.Photo{}, err
	}
	return s.Store.Photos().GetPhotoByID(ctx, photo.ID)
}

func storyPrompt(p domain.Photo) string {
	subject := p.Caption
	if subject == "" {
		subject = "A precious moment"
	}
	return fmt.Sprintf(
		"Write a short, warm, nostalgic story (3-4 sentences) about a photo memory. "+
			"The photo is captioned %q and was taken on %s. "+
			"Write in second person, as if reminding the owner of that day.",
		subject, p.TakenAt.Format("January 2, 2006"),
	)
}
