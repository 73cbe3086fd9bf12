package auth

import (
	"fmt"
	"unicode/utf8"

	"github.com/nfrund/propdesk/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// Password constraints. bcrypt ignores everything past 72 bytes.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

// bcryptCost is a variable so tests can lower it.
var bcryptCost = bcrypt.DefaultCost

// ValidatePassword checks the length rules for a new password.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return domain.FieldError("password", fmt.Sprintf("must be at least %d characters long", MinPasswordLength))
	}
	if len(password) > MaxPasswordLength {
		return domain.FieldError("password", fmt.Sprintf("must be at most %d bytes long", MaxPasswordLength))
	}
	return nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
