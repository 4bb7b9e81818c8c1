package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/nostella/nostella/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestNewHS256RejectsShortSecret(t *testing.T) {
	t.Parallel()

	_, err := jwtx.NewHS256([]byte("too-short"), "nostella")
	require.Error(t, err)

	_, err = jwtx.NewHS256(nil, "nostella")
	require.Error(t, err)
}

func TestSignAndVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	h, err := jwtx.NewHS256(testSecret, "nostella")
	require.NoError(t, err)

	now := time.Now().UTC()
	claims := jwtx.NewSessionClaims("user-1", "a@x.com", "nostella", time.Hour, now)

	token, err := h.Sign(claims)
	require.NoError(t, err)
	require.Equal(t, 3, len(strings.Split(token, ".")))

	got, err := h.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", got.Subject)
	require.Equal(t, "a@x.com", got.Email)
	require.WithinDuration(t, now.Add(time.Hour), got.ExpiresAt.Time, time.Second)
}

func TestVerifyFailuresAreIndistinguishable(t *testing.T) {
	t.Parallel()

	h, err := jwtx.NewHS256(testSecret, "nostella")
	require.NoError(t, err)

	now := time.Now().UTC()

	t.Run("expired token", func(t *testing.T) {
		claims := jwtx.NewSessionClaims("user-1", "a@x.com", "nostella", time.Hour, now.Add(-2*time.Hour))
		token, err := h.Sign(claims)
		require.NoError(t, err)

		_, err = h.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := jwtx.NewHS256([]byte("ffffffffffffffffffffffffffffffff"), "nostella")
		require.NoError(t, err)
		token, err := other.Sign(jwtx.NewSessionClaims("user-1", "a@x.com", "nostella", time.Hour, now))
		require.NoError(t, err)

		_, err = h.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrInvalidToken)
	})

	t.Run("malformed token", func(t *testing.T) {
		_, err := h.Verify("not.a.jwt")
		require.ErrorIs(t, err, jwtx.ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other, err := jwtx.NewHS256(testSecret, "someone-else")
		require.NoError(t, err)
		token, err := other.Sign(jwtx.NewSessionClaims("user-1", "a@x.com", "someone-else", time.Hour, now))
		require.NoError(t, err)

		_, err = h.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrInvalidToken)
	})
}
