package cryptox

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// VerificationCodeLength is the number of digits in an email verification code.
const VerificationCodeLength = 6

// codeSpan covers [100000, 999999] so codes never need zero padding.
var codeSpan = big.NewInt(900000)

// GenerateVerificationCode returns a uniformly random 6-digit numeric code.
func GenerateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpan)
	if err != nil {
		return "", fmt.Errorf("cryptox: failed to generate verification code: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}
