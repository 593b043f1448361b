package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// NewVerificationToken generates an unguessable single-use token: 32 bytes of
// cryptographically secure randomness, base64 URL-encoded without padding so
// it survives query strings untouched.
func NewVerificationToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate verification token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
