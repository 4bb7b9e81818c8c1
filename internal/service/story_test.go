package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/nostella/nostella/internal/service"
	"github.com/stretchr/testify/require"
)

func TestStoryGenerate(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	objects := newFakeObjects()
	photos := &service.PhotoService{Store: st, Objects: objects}

	vip := registerVerified(t, st, "vip@x.com")
	require.NoError(t, st.Users().SetVIP(ctx, vip.ID, true))
	free := registerVerified(t, st, "free@x.com")

	photo := uploadPhoto(t, photos, vip.ID, "beach day")

	t.Run("non-vip is refused", func(t *testing.T) {
		svc := &service.StoryService{Store: st, Generator: &fakeGenerator{}}
		otherPhoto := uploadPhoto(t, photos, free.ID, "picnic")
		_, err := svc.Generate(ctx, free.ID, otherPhoto.ID)
		require.ErrorIs(t, err, service.ErrVIPRequired)
	})

	t.Run("vip gets a persisted story", func(t *testing.T) {
		svc := &service.StoryService{Store: st, Generator: &fakeGenerator{story: "It was a golden afternoon."}}

		got, err := svc.Generate(ctx, vip.ID, photo.ID)
		require.NoError(t, err)
		require.True(t, got.HasStory)
		require.NotNil(t, got.Story)
		require.Equal(t, "It was a golden afternoon.", *got.Story)

		stored, err := st.Photos().GetPhotoByID(ctx, photo.ID)
		require.NoError(t, err)
		require.True(t, stored.HasStory)
	})

	t.Run("regenerating overwrites", func(t *testing.T) {
		svc := &service.StoryService{Store: st, Generator: &fakeGenerator{story: "Second telling."}}

		got, err := svc.Generate(ctx, vip.ID, photo.ID)
		require.NoError(t, err)
		require.Equal(t, "Second telling.", *got.Story)
	})

	t.Run("ownership still applies", func(t *testing.T) {
		require.NoError(t, st.Users().SetVIP(ctx, free.ID, true))
		svc := &service.StoryService{Store: st, Generator: &fakeGenerator{}}

		_, err := svc.Generate(ctx, free.ID, photo.ID)
		require.ErrorIs(t, err, service.ErrNotOwner)
	})

	t.Run("generator failure leaves the photo untouched", func(t *testing.T) {
		svc := &service.StoryService{Store: st, Generator: &fakeGenerator{err: errors.New("model overloaded")}}
		fresh := uploadPhoto(t, photos, vip.ID, "quiet morning")

		_, err := svc.Generate(ctx, vip.ID, fresh.ID)
		require.Error(t, err)

		stored, err := st.Photos().GetPhotoByID(ctx, fresh.ID)
		require.NoError(t, err)
		require.False(t, stored.HasStory)
		require.Nil(t, stored.Story)
	})
}
