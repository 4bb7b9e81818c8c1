package cryptox_test

import (
	"testing"

	"github.com/nostella/nostella/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := cryptox.HashPassword("secret1", 4)
	require.NoError(t, err)
	require.NotEqual(t, "secret1", hash)

	t.Run("correct password verifies", func(t *testing.T) {
		require.NoError(t, cryptox.VerifyPassword("secret1", hash))
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		err := cryptox.VerifyPassword("secret2", hash)
		require.ErrorIs(t, err, cryptox.ErrPasswordMismatch)
	})

	t.Run("malformed hash is not a mismatch", func(t *testing.T) {
		err := cryptox.VerifyPassword("secret1", "not-a-bcrypt-hash")
		require.Error(t, err)
		require.NotErrorIs(t, err, cryptox.ErrPasswordMismatch)
	})
}

func TestHashPasswordSalts(t *testing.T) {
	t.Parallel()

	a, err := cryptox.HashPassword("same-password", 4)
	require.NoError(t, err)
	b, err := cryptox.HashPassword("same-password", 4)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
