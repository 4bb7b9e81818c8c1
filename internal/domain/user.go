package domain

import "time"

// User is one registrant. A verified user always has a nil
// VerificationCode and CodeExpiresAt; the fields are cleared together the
// moment verification succeeds.
type User struct {
	ID           string
	Email        string // unique, stored case-sensitive
	Name         string
	AvatarURL    *string
	PasswordHash string // bcrypt encoded, plaintext never persisted

	IsVerified       bool
	VerificationCode *string // 6-digit numeric string
	CodeExpiresAt    *time.Time

	// IsVIP gates the story-generation feature. Set administratively,
	// never mutated by any auth flow.
	IsVIP bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Summary is the user shape returned to clients. Never includes the
// password hash or the verification code.
type Summary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	IsVIP bool   `json:"isVip"`
}

// Summary builds the client-facing view of the user.
func (u User) Summary() Summary {
	return Summary{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		IsVIP: u.IsVIP,
	}
}
