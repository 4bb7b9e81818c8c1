package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/nostella/nostella/internal/domain"
	mailer "github.com/nostella/nostella/internal/mail"
	"github.com/nostella/nostella/internal/store"
	"github.com/nostella/nostella/pkg/cryptox"
	"github.com/nostella/nostella/pkg/idx"
	"github.com/nostella/nostella/pkg/jwtx"
	"github.com/nostella/nostella/pkg/slogx"
)

const (
	// VerificationCodeTTL is how long an emailed code stays valid.
	VerificationCodeTTL = 15 * time.Minute

	// DefaultName is used when a registrant doesn't supply one.
	DefaultName = "New user"

	// MinPasswordLength for new registrations.
	MinPasswordLength = 6
)

var (
	ErrDuplicateAccount    = errors.New("duplicate_account")
	ErrUserNotFound        = errors.New("user_not_found")
	ErrAlreadyVerified     = errors.New("already_verified")
	ErrInvalidCode         = errors.New("invalid_code")
	ErrCodeExpired         = errors.New("code_expired")
	ErrInvalidCredentials  = errors.New("invalid_credentials")
	ErrNotVerified         = errors.New("not_verified")
	ErrNotificationFailure = errors.New("notification_failure")
)

// ValidationError reports malformed input with field-level detail.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// AuthService coordinates registration, verification and login. It owns
// the account state machine: Unverified(code,expiry) -> Verified, with
// resend as a self-loop replacing (code,expiry). There is no transition
// back.
type AuthService struct {
	Store  store.Store
	Mailer mailer.Sender
	Signer jwtx.Signer
	Issuer string

	// SessionTTL for minted tokens; zero means jwtx.DefaultSessionTTL.
	SessionTTL time.Duration

	// HashCost for bcrypt; zero means the cryptox default. Tests use the
	// minimum cost to stay fast.
	HashCost int
}

// RegisterParams for one registration. Name is optional and defaults to
// DefaultName.
type RegisterParams struct {
	Email    string
	Password string
	Name     string
}

// RegisterResult acknowledges the registration. Deliberately carries no
// token; the account is unusable until verified.
type RegisterResult struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

// Session is a minted token plus the client-facing user view.
type Session struct {
	Token string
	User  domain.Summary
}

// Register creates an unverified account and emails it a fresh code.
//
// Any existing row for the email, verified or not, is a conflict. The
// user row is committed before the send is attempted; a failed send
// surfaces as ErrNotificationFailure and the caller self-heals via
// ResendOTP, which overwrites the stored code.
func (s *AuthService) Register(ctx context.Context, p RegisterParams) (RegisterResult, error) {
	log := slogx.FromContext(ctx)

	if err := validateEmail(p.Email); err != nil {
		return RegisterResult{}, err
	}
	if len(p.Password) < MinPasswordLength {
		return RegisterResult{}, &ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("must be at least %d characters", MinPasswordLength),
		}
	}

	if _, err := s.Store.Users().GetUserByEmail(ctx, p.Email); err == nil {
		return RegisterResult{}, ErrDuplicateAccount
	} else if !errors.Is(err, store.ErrNotFound) {
		return RegisterResult{}, err
	}

	hash, err := cryptox.HashPassword(p.Password, s.HashCost)
	if err != nil {
		return RegisterResult{}, err
	}

	code, err := cryptox.GenerateVerificationCode()
	if err != nil {
		return RegisterResult{}, err
	}

	name := p.Name
	if name == "" {
		name = DefaultName
	}

	now := time.Now().UTC()
	expiresAt := now.Add(VerificationCodeTTL)
	user := domain.User{
		ID:               idx.New().String(),
		Email:            p.Email,
		Name:             name,
		PasswordHash:     hash,
		IsVerified:       false,
		VerificationCode: &code,
		CodeExpiresAt:    &expiresAt,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		// Lost a race with a concurrent registration for the same email.
		if errors.Is(err, store.ErrAlreadyExists) {
			return RegisterResult{}, ErrDuplicateAccount
		}
		return RegisterResult{}, err
	}

	if err := s.Mailer.SendVerificationCode(ctx, user.Email, code); err != nil {
		log.Error("verification email failed", "user_id", user.ID, "err", err)
		return RegisterResult{}, ErrNotificationFailure
	}

	return RegisterResult{
		Message: "Registration successful. Please check your email for verification code.",
		Email:   user.Email,
	}, nil
}

// VerifyOTP checks the emailed code and promotes the account to verified,
// clearing the code fields and minting the first session.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (Session, error) {
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, ErrUserNotFound
		}
		return Session{}, err
	}

	if user.IsVerified {
		return Session{}, ErrAlreadyVerified
	}
	// Mismatch before expiry: an expired-but-wrong code must not learn
	// that it was also expired.
	if user.VerificationCode == nil || *user.VerificationCode != code {
		return Session{}, ErrInvalidCode
	}
	if user.CodeExpiresAt != nil && user.CodeExpiresAt.Before(time.Now().UTC()) {
		return Session{}, ErrCodeExpired
	}

	if err := s.Store.Users().MarkVerified(ctx, user.ID); err != nil {
		return Session{}, err
	}

	verified, err := s.Store.Users().GetUserByID(ctx, user.ID)
	if err != nil {
		return Session{}, err
	}

	return s.mintSession(verified)
}

// ResendOTP issues a fresh code + expiry, unconditionally replacing the
// stored pair. Any previously emailed code is invalid from here on, even
// if unexpired. Two concurrent resends race last-write-wins; that's
// expected, not a bug.
func (s *AuthService) ResendOTP(ctx context.Context, email string) error {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if user.IsVerified {
		return ErrAlreadyVerified
	}

	code, err := cryptox.GenerateVerificationCode()
	if err != nil {
		return err
	}

	expiresAt := time.Now().UTC().Add(VerificationCodeTTL)
	if err := s.Store.Users().SetVerificationCode(ctx, user.ID, code, expiresAt); err != nil {
		return err
	}

	if err := s.Mailer.SendVerificationCode(ctx, user.Email, code); err != nil {
		log.Error("verification email failed", "user_id", user.ID, "err", err)
		return ErrNotificationFailure
	}

	return nil
}

// Login authenticates a verified account. Unknown email and wrong
// password collapse into one ErrInvalidCredentials so callers can't
// enumerate accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}

	if !user.IsVerified {
		return Session{}, ErrNotVerified
	}

	return s.mintSession(user)
}

func (s *AuthService) mintSession(user domain.User) (Session, error) {
	ttl := s.SessionTTL
	if ttl == 0 {
		ttl = jwtx.DefaultSessionTTL
	}

	claims := jwtx.NewSessionClaims(user.ID, user.Email, s.Issuer, ttl, time.Now().UTC())
	token, err := s.Signer.Sign(claims)
	if err != nil {
		return Session{}, err
	}

	return Session{Token: token, User: user.Summary()}, nil
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return &ValidationError{Field: "email", Message: "must be a valid email address"}
	}
	return nil
}
