package api

import (
	"errors"
	"net/http"

	"github.com/campforge/campforge-api/internal/api/shared"
	"github.com/campforge/campforge-api/internal/domain"
	"github.com/campforge/campforge-api/internal/service/auth"
	"github.com/campforge/campforge-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes. This keeps
// internal error types and messages out of responses.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrCooldownActive):
		return http.StatusTooManyRequests

	case errors.Is(err, store.ErrEmailExists):
		return http.StatusConflict

	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// ErrorCodeFor maps an internal error to the taxonomy code carried in the
// error body.
func ErrorCodeFor(err error) domain.ErrorCode {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return domain.CodeUnauthorized

	case errors.Is(err, domain.ErrForbidden):
		return domain.CodeForbidden

	case errors.Is(err, store.ErrNotFound):
		return domain.CodeNotFound

	case errors.Is(err, store.ErrCooldownActive):
		return domain.CodeCooldownActive

	case errors.Is(err, store.ErrEmailExists),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID):
		return domain.CodeValidationError

	default:
		return domain.CodeInternalError
	}
}

// GetSafeErrorMessage returns a sanitized, user-facing message for an error.
func GetSafeErrorMessage(err error) string {
	switch {
	case err == nil:
		return "An unexpected error occurred"

	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrExpiredToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, domain.ErrUnauthorized):
		return "Invalid credentials"

	case errors.Is(err, domain.ErrForbidden):
		return "You are not allowed to perform this action"

	case errors.Is(err, store.ErrActivityNotFound):
		return "Activity not found"

	case errors.Is(err, store.ErrGroupNotFound):
		return "Group not found"

	case errors.Is(err, store.ErrEvaluationNotFound):
		return "Evaluation not found"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, store.ErrCooldownActive):
		return "An evaluation was requested recently; try again later"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID):
		return "Invalid request data"

	default:
		return "An unexpected error occurred"
	}
}

// respondWithMappedError writes an error response using the standard mapping
// of internal errors to status, code and safe message.
func respondWithMappedError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithError(w, r,
		MapErrorToStatusCode(err),
		GetSafeErrorMessage(err),
		ErrorCodeFor(err))
}
