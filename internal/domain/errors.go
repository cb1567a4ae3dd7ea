package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrUnauthorized is returned when the caller has no membership granting
	// access to the entity at all.
	ErrUnauthorized = errors.New("unauthorized operation")

	// ErrForbidden is returned when the caller is a member but their role
	// does not permit the operation.
	ErrForbidden = errors.New("operation forbidden for role")
)
