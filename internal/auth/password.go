package auth

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordTooLong is returned when a password exceeds bcrypt's 72-byte limit.
var ErrPasswordTooLong = errors.New("password exceeds maximum length of 72 bytes")

// HashPassword creates a bcrypt hash of the password. bcrypt salts every
// call, so identical passwords produce different stored hashes.
func HashPassword(password string, cost int) (string, error) {
	if len(password) > 72 {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the candidate matches the stored hash.
// Surrounding whitespace is trimmed from the candidate before comparison;
// that leniency is observable behavior and covered by tests. Malformed
// input compares as a mismatch, never an error.
func CheckPassword(candidate, hash string) bool {
	clean := strings.TrimSpace(candidate)
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(clean)) == nil
}
