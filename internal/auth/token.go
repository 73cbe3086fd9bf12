package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateSecureToken creates a cryptographically secure random token of
// length random bytes, hex encoded.
func GenerateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
