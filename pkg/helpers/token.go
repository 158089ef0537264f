package helpers

import (
	"crypto/rand"
	"encoding/hex"
)

// NewAccessToken returns a 128-bit random token as 32 hex characters.
// The token space is large enough that collisions are negligible; the
// session store's unique constraint is the backstop.
func NewAccessToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
