package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/nostella/nostella/internal/service"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	mailer := &fakeMailer{}
	auth := newAuthService(st, mailer, newSigner(t))

	t.Run("creates unverified user and emails the code", func(t *testing.T) {
		before := time.Now().UTC()
		res, err := auth.Register(ctx, service.RegisterParams{Email: "a@x.com", Password: "secret1"})
		require.NoError(t, err)
		require.Equal(t, "a@x.com", res.Email)

		user, err := st.Users().GetUserByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		require.False(t, user.IsVerified)
		require.Equal(t, service.DefaultName, user.Name)
		require.NotEqual(t, "secret1", user.PasswordHash)

		require.NotNil(t, user.VerificationCode)
		require.Len(t, *user.VerificationCode, 6)
		require.Regexp(t, `^\d{6}$`, *user.VerificationCode)

		require.NotNil(t, user.CodeExpiresAt)
		require.WithinDuration(t, before.Add(service.VerificationCodeTTL), *user.CodeExpiresAt, 5*time.Second)

		require.Equal(t, sentMail{Email: "a@x.com", Code: *user.VerificationCode}, mailer.last(t))
	})

	t.Run("rejects duplicate email while unverified", func(t *testing.T) {
		_, err := auth.Register(ctx, service.RegisterParams{Email: "a@x.com", Password: "another1"})
		require.ErrorIs(t, err, service.ErrDuplicateAccount)
	})

	t.Run("rejects duplicate email after verification", func(t *testing.T) {
		user, err := st.Users().GetUserByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		require.NoError(t, st.Users().MarkVerified(ctx, user.ID))

		_, err = auth.Register(ctx, service.RegisterParams{Email: "a@x.com", Password: "another1"})
		require.ErrorIs(t, err, service.ErrDuplicateAccount)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		var vErr *service.ValidationError

		_, err := auth.Register(ctx, service.RegisterParams{Email: "not-an-email", Password: "secret1"})
		require.ErrorAs(t, err, &vErr)
		require.Equal(t, "email", vErr.Field)

		_, err = auth.Register(ctx, service.RegisterParams{Email: "b@x.com", Password: "short"})
		require.ErrorAs(t, err, &vErr)
		require.Equal(t, "password", vErr.Field)
	})

	t.Run("keeps the row when the email fails", func(t *testing.T) {
		mailer.fail = true
		defer func() { mailer.fail = false }()

		_, err := auth.Register(ctx, service.RegisterParams{Email: "c@x.com", Password: "secret1"})
		require.ErrorIs(t, err, service.ErrNotificationFailure)

		// The account exists; a later resend recovers it.
		_, err = st.Users().GetUserByEmail(ctx, "c@x.com")
		require.NoError(t, err)
	})
}

func TestVerifyOTP(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	mailer := &fakeMailer{}
	auth := newAuthService(st, mailer, newSigner(t))

	_, err := auth.Register(ctx, service.RegisterParams{Email: "a@x.com", Password: "secret1", Name: "Ann"})
	require.NoError(t, err)
	code := mailer.last(t).Code

	t.Run("unknown email", func(t *testing.T) {
		_, err := auth.VerifyOTP(ctx, "ghost@x.com", code)
		require.ErrorIs(t, err, service.ErrUserNotFound)
	})

	t.Run("wrong code", func(t *testing.T) {
		wrong := "000000"
		if wrong == code {
			wrong = "000001"
		}
		_, err := auth.VerifyOTP(ctx, "a@x.com", wrong)
		require.ErrorIs(t, err, service.ErrInvalidCode)

		// Failed attempt must not consume the real code.
		user, err := st.Users().GetUserByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		require.False(t, user.IsVerified)
		require.NotNil(t, user.VerificationCode)
	})

	t.Run("correct code mints a session and clears the code", func(t *testing.T) {
		sess, err := auth.VerifyOTP(ctx, "a@x.com", code)
		require.NoError(t, err)
		require.Equal(t, "a@x.com", sess.User.Email)
		require.Equal(t, "Ann", sess.User.Name)

		claims, err := newSigner(t).Verify(sess.Token)
		require.NoError(t, err)
		require.Equal(t, sess.User.ID, claims.Subject)
		require.Equal(t, "a@x.com", claims.Email)

		user, err := st.Users().GetUserByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		require.True(t, user.IsVerified)
		require.Nil(t, user.VerificationCode)
		require.Nil(t, user.CodeExpiresAt)
	})

	t.Run("already verified", func(t *testing.T) {
		_, err := auth.VerifyOTP(ctx, "a@x.com", code)
		require.ErrorIs(t, err, service.ErrAlreadyVerified)
	})
}

func TestVerifyOTPExpiry(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	mailer := &fakeMailer{}
	auth := newAuthService(st, mailer, newSigner(t))

	_, err := auth.Register(ctx, service.RegisterParams{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	user, err := st.Users().GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	expired := time.Now().UTC().Add(-time.Minute)
	require.NoError(t, st.Users().SetVerificationCode(ctx, user.ID, "123456", expired))

	t.Run("expired code", func(t *testing.T) {
		_, err := auth.VerifyOTP(ctx, "a@x.com", "123456")
		require.ErrorIs(t, err, service.ErrCodeExpired)

		// Failure leaves the account untouched.
		after, err := st.Users().GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		require.False(t, after.IsVerified)
		require.NotNil(t, after.VerificationCode)
	})

	t.Run("wrong code wins over expiry", func(t *testing.T) {
		_, err := auth.VerifyOTP(ctx, "a@x.com", "654321")
		require.ErrorIs(t, err, service.ErrInvalidCode)
	})

	t.Run("resend recovers an expired account", func(t *testing.T) {
		require.NoError(t, auth.ResendOTP(ctx, "a@x.com"))
		fresh := mailer.last(t).Code

		sess, err := auth.VerifyOTP(ctx, "a@x.com", fresh)
		require.NoError(t, err)
		require.NotEmpty(t, sess.Token)
	})
}

func TestResendOTP(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	mailer := &fakeMailer{}
	auth := newAuthService(st, mailer, newSigner(t))

	_, err := auth.Register(ctx, service.RegisterParams{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	first := mailer.last(t).Code

	t.Run("replaces the stored code", func(t *testing.T) {
		require.NoError(t, auth.ResendOTP(ctx, "a@x.com"))
		second := mailer.last(t).Code

		user, err := st.Users().GetUserByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		require.NotNil(t, user.VerificationCode)
		require.Equal(t, second, *user.VerificationCode)

		// The old code is dead even though it hasn't expired.
		if first != second {
			_, err = auth.VerifyOTP(ctx, "a@x.com", first)
			require.ErrorIs(t, err, service.ErrInvalidCode)
		}

		_, err = auth.VerifyOTP(ctx, "a@x.com", second)
		require.NoError(t, err)
	})

	t.Run("already verified", func(t *testing.T) {
		err := auth.ResendOTP(ctx, "a@x.com")
		require.ErrorIs(t, err, service.ErrAlreadyVerified)
	})

	t.Run("unknown email", func(t *testing.T) {
		err := auth.ResendOTP(ctx, "ghost@x.com")
		require.ErrorIs(t, err, service.ErrUserNotFound)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	mailer := &fakeMailer{}
	auth := newAuthService(st, mailer, newSigner(t))

	_, err := auth.Register(ctx, service.RegisterParams{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	t.Run("unverified account", func(t *testing.T) {
		_, err := auth.Login(ctx, "a@x.com", "secret1")
		require.ErrorIs(t, err, service.ErrNotVerified)
	})

	verified, err := auth.VerifyOTP(ctx, "a@x.com", mailer.last(t).Code)
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		sess, err := auth.Login(ctx, "a@x.com", "secret1")
		require.NoError(t, err)

		claims, err := newSigner(t).Verify(sess.Token)
		require.NoError(t, err)
		require.Equal(t, verified.User.ID, claims.Subject)
		require.Equal(t, "a@x.com", claims.Email)
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		_, errWrongPass := auth.Login(ctx, "a@x.com", "not-it-1")
		require.ErrorIs(t, errWrongPass, service.ErrInvalidCredentials)

		_, errUnknown := auth.Login(ctx, "ghost@x.com", "secret1")
		require.ErrorIs(t, errUnknown, service.ErrInvalidCredentials)

		require.Equal(t, errWrongPass.Error(), errUnknown.Error())
	})
}
