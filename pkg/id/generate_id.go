package id

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// TokenLen is the length of a token returned by NewToken.
const TokenLen = 43

// NewToken returns 32 random bytes as unpadded URL-safe base64. It is used
// for session bearer tokens.
func NewToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
