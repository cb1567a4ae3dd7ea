// Package auth provides JWT-based authentication and password hashing
// services for the API surface.
package auth

import "errors"

// Common authentication errors.
var (
	// ErrInvalidToken is returned when a token fails signature or claims
	// validation.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when a token's expiry has passed.
	ErrExpiredToken = errors.New("token expired")

	// ErrInvalidCredentials is returned when an email/password pair does
	// not match a known user.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
