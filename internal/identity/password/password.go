// Package password wraps bcrypt hashing for principal credentials.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	dErrors "pulseboard/pkg/domain-errors"
)

// ErrMismatch signals that the plaintext does not match the stored hash.
// Callers translate it to an authentication failure; infrastructure errors
// propagate separately.
var ErrMismatch = errors.New("password mismatch")

// Hash creates a bcrypt hash of the provided password. The cost is adaptive
// and the salt is embedded in the hash; the plaintext is never recoverable.
func Hash(plain string) (string, error) {
	if plain == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "password cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeBadRequest, "password is too long")
		}
		return "", fmt.Errorf("could not hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify checks a plaintext password against a bcrypt hash. bcrypt's
// comparison is constant-time over the derived key.
func Verify(plain, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatch
		}
		return fmt.Errorf("could not verify password: %w", err)
	}
	return nil
}
