package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// SessionIDBytes is the entropy of a session ID: 32 bytes = 43 chars base64url.
const SessionIDBytes = 32

// GenerateRandomString produces a cryptographically random base64url string of n bytes.
func GenerateRandomString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateSessionID generates a random session ID.
func GenerateSessionID() (string, error) {
	return GenerateRandomString(SessionIDBytes)
}

// IsSessionID reports whether s has the shape produced by GenerateSessionID.
func IsSessionID(s string) bool {
	if len(s) != base64.RawURLEncoding.EncodedLen(SessionIDBytes) {
		return false
	}
	_, err := base64.RawURLEncoding.DecodeString(s)
	return err == nil
}
