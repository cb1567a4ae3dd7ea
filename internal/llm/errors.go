package llm

import (
	"errors"

	"github.com/campforge/campforge-api/internal/domain"
)

// Fixed error taxonomy for provider failures. The worker records the matching
// domain.ErrorCode on the failed request; nothing here is retried
// automatically — a fresh, cooldown-gated user request is the retry path.
var (
	// ErrValidation is returned when the request to the provider is invalid
	// before it is ever sent (e.g. empty prompt).
	ErrValidation = errors.New("invalid completion request")

	// ErrAuth is returned when the provider rejects our credentials.
	ErrAuth = errors.New("provider authentication failed")

	// ErrRateLimit is returned when the provider throttles the request.
	ErrRateLimit = errors.New("provider rate limit exceeded")

	// ErrPayloadTooLarge is returned when the provider rejects the request
	// for size.
	ErrPayloadTooLarge = errors.New("prompt payload too large")

	// ErrTimeout is returned when the call is cancelled or exceeds its
	// deadline. Aborted calls surface as this, never as ErrUpstream.
	ErrTimeout = errors.New("provider call timed out")

	// ErrUpstream is returned for provider-side failures (5xx and the like).
	ErrUpstream = errors.New("provider upstream error")

	// ErrInvalidResponse is returned when the provider's output is missing,
	// does not parse as JSON, or violates the response schema.
	ErrInvalidResponse = errors.New("invalid response from language model")
)

// CodeForError maps a taxonomy error to the code recorded on the failed
// evaluation request. Unknown errors map to INTERNAL_ERROR.
func CodeForError(err error) domain.ErrorCode {
	switch {
	case errors.Is(err, ErrValidation):
		return domain.CodeValidationError
	case errors.Is(err, ErrAuth):
		return domain.CodeAuthError
	case errors.Is(err, ErrRateLimit):
		return domain.CodeRateLimit
	case errors.Is(err, ErrPayloadTooLarge):
		return domain.CodePayloadTooLarge
	case errors.Is(err, ErrTimeout):
		return domain.CodeTimeout
	case errors.Is(err, ErrUpstream):
		return domain.CodeUpstreamError
	case errors.Is(err, ErrInvalidResponse):
		return domain.CodeInvalidResponse
	default:
		return domain.CodeInternalError
	}
}
