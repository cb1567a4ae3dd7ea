package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store. Entity-specific variants below wrap it.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a user with the same email).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrCooldownActive is returned by the evaluation request queue when an
	// activity is still inside its cooldown window and the enqueue attempt
	// is rejected.
	ErrCooldownActive = errors.New("evaluation cooldown active")

	// Entity-specific "not found" errors

	// ErrUserNotFound indicates that the requested user does not exist.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// ErrGroupNotFound indicates that the requested group does not exist.
	ErrGroupNotFound = fmt.Errorf("%w: group", ErrNotFound)

	// ErrMembershipNotFound indicates that the user has no membership in the group.
	ErrMembershipNotFound = fmt.Errorf("%w: membership", ErrNotFound)

	// ErrActivityNotFound indicates that the requested activity does not
	// exist or has been soft-deleted.
	ErrActivityNotFound = fmt.Errorf("%w: activity", ErrNotFound)

	// ErrEvaluationNotFound indicates that the requested evaluation does not exist.
	ErrEvaluationNotFound = fmt.Errorf("%w: evaluation", ErrNotFound)

	// ErrRequestNotFound indicates that the requested evaluation request does not exist.
	ErrRequestNotFound = fmt.Errorf("%w: evaluation request", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrEmailExists indicates that a user with the given email already exists.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
