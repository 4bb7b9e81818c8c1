// Package mail delivers transactional email. The only message this
// system sends is the account verification code.
package mail

import (
	"context"

	"github.com/nostella/nostella/pkg/slogx"
)

// Sender delivers a one-time verification code to an email address.
type Sender interface {
	// SendVerificationCode sends the code. Failures are reported to the
	// caller; nothing here retries.
	SendVerificationCode(ctx context.Context, email, code string) error

	// IsEnabled reports whether delivery is actually happening. A
	// disabled sender accepts everything and sends nothing.
	IsEnabled() bool
}

// NewDisabled returns a Sender that logs instead of sending. Used in dev
// setups without SMTP credentials and in tests.
func NewDisabled() Sender { return &disabled{} }

type disabled struct{}

func (d *disabled) SendVerificationCode(ctx context.Context, email, code string) error {
	slogx.FromContext(ctx).Info("mail disabled, dropping verification code",
		"email", email, "code", code)
	return nil
}

func (d *disabled) IsEnabled() bool { return false }
