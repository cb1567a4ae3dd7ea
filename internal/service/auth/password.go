package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the minimum accepted password length at registration.
const MinPasswordLength = 12

// PasswordVerifier hashes and verifies user passwords.
type PasswordVerifier interface {
	// Hash returns the hash of a plaintext password.
	Hash(password string) (string, error)

	// Compare checks a plaintext password against a stored hash.
	// Returns ErrInvalidCredentials on mismatch.
	Compare(hashedPassword, password string) error
}

// bcryptVerifier implements PasswordVerifier using bcrypt.
type bcryptVerifier struct {
	cost int
}

// NewBcryptVerifier creates a PasswordVerifier with the given bcrypt cost.
// A non-positive cost falls back to the bcrypt default.
func NewBcryptVerifier(cost int) PasswordVerifier {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &bcryptVerifier{cost: cost}
}

// Hash implements PasswordVerifier.Hash.
func (v *bcryptVerifier) Hash(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), v.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hash), nil
}

// Compare implements PasswordVerifier.Compare.
func (v *bcryptVerifier) Compare(hashedPassword, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("failed to compare password: %w", err)
	}

	return nil
}
