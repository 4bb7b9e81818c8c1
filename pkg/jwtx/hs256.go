package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the smallest signing secret accepted. HS256 secrets
// shorter than the hash output weaken the MAC.
const MinSecretLength = 32

// ErrInvalidToken is returned for any verification failure. Malformed,
// bad-signature and expired tokens are deliberately indistinguishable so
// callers cannot leak why a token was rejected.
var ErrInvalidToken = errors.New("jwtx: invalid token")

// Signer mints signed token strings from claims.
type Signer interface {
	Sign(Claims) (string, error)
}

// Verifier validates a token string and returns its claims.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// HS256 signs and verifies tokens with a single shared secret. The secret
// must come from configuration; there is no default.
type HS256 struct {
	secret []byte
	issuer string
}

// NewHS256 builds an HS256 signer/verifier. Fails when the secret is
// missing or too short; callers are expected to treat that as fatal at
// startup.
func NewHS256(secret []byte, issuer string) (*HS256, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("jwtx: signing secret must be at least %d bytes, got %d", MinSecretLength, len(secret))
	}
	return &HS256{secret: secret, issuer: issuer}, nil
}

// Sign turns claims into a signed compact JWT string.
func (h *HS256) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(h.secret)
}

// Verify parses and validates a token string. Signature, expiry, nbf and
// issuer are all enforced; every failure collapses into ErrInvalidToken.
func (h *HS256) Verify(tokenStr string) (Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if h.issuer != "" {
		opts = append(opts, jwt.WithIssuer(h.issuer))
	}
	parser := jwt.NewParser(opts...)

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return h.secret, nil
	})
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return Claims{}, ErrInvalidToken
	}

	return *claims, nil
}
