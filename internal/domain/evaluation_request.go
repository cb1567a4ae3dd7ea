package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// EvaluationRequestStatus represents the processing state of an evaluation
// request. The state machine is linear and one-directional:
//
//	queued -> processing -> completed
//	queued -> processing -> failed
//
// Terminal rows are never re-enqueued; the retry path is a fresh request,
// subject again to the cooldown.
type EvaluationRequestStatus string

// Possible evaluation request status values
const (
	EvaluationRequestQueued     EvaluationRequestStatus = "queued"
	EvaluationRequestProcessing EvaluationRequestStatus = "processing"
	EvaluationRequestCompleted  EvaluationRequestStatus = "completed"
	EvaluationRequestFailed     EvaluationRequestStatus = "failed"
)

// ErrorCode identifies why an evaluation request failed, or why an enqueue
// attempt was rejected. Codes form a fixed taxonomy shared with the HTTP
// surface and the request rows.
type ErrorCode string

// Error codes surfaced synchronously at enqueue time.
const (
	CodeValidationError ErrorCode = "VALIDATION_ERROR"
	CodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	CodeForbidden       ErrorCode = "FORBIDDEN"
	CodeNotFound        ErrorCode = "NOT_FOUND"
	CodeCooldownActive  ErrorCode = "COOLDOWN_ACTIVE"
)

// Error codes recorded on failed requests by the worker.
const (
	CodeAuthError       ErrorCode = "AUTH_ERROR"
	CodeRateLimit       ErrorCode = "RATE_LIMIT"
	CodePayloadTooLarge ErrorCode = "PAYLOAD_TOO_LARGE"
	CodeTimeout         ErrorCode = "TIMEOUT"
	CodeUpstreamError   ErrorCode = "UPSTREAM_ERROR"
	CodeInvalidResponse ErrorCode = "INVALID_RESPONSE"
	CodeInternalError   ErrorCode = "INTERNAL_ERROR"
)

// MaxErrorMessageLen caps error messages persisted on failed requests.
const MaxErrorMessageLen = 500

// Common validation and transition errors for EvaluationRequest
var (
	ErrEmptyRequestID          = errors.New("evaluation request ID cannot be empty")
	ErrEmptyRequestActivity    = errors.New("evaluation request activity ID cannot be empty")
	ErrEmptyRequestUser        = errors.New("evaluation request user ID cannot be empty")
	ErrInvalidRequestStatus    = errors.New("invalid evaluation request status")
	ErrInvalidStatusTransition = errors.New("invalid evaluation request status transition")
)

// EvaluationRequest is one row per evaluation attempt. It is created by the
// request gate, mutated only by the worker, and immutable once finished.
type EvaluationRequest struct {
	ID           uuid.UUID               `json:"id"`
	ActivityID   uuid.UUID               `json:"activity_id"`
	RequestedBy  uuid.UUID               `json:"requested_by"`
	Status       EvaluationRequestStatus `json:"status"`
	ErrorCode    *ErrorCode              `json:"error_code,omitempty"`
	ErrorMessage *string                 `json:"error_message,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
	StartedAt    *time.Time              `json:"started_at,omitempty"`
	FinishedAt   *time.Time              `json:"finished_at,omitempty"`
}

// NewEvaluationRequest creates a queued request for the given activity and
// requesting user. Returns an error if validation fails.
func NewEvaluationRequest(activityID, requestedBy uuid.UUID) (*EvaluationRequest, error) {
	req := &EvaluationRequest{
		ID:          uuid.New(),
		ActivityID:  activityID,
		RequestedBy: requestedBy,
		Status:      EvaluationRequestQueued,
		CreatedAt:   time.Now().UTC(),
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	return req, nil
}

// Validate checks if the EvaluationRequest has valid data and that its
// timestamps are consistent with its status.
func (r *EvaluationRequest) Validate() error {
	if r.ID == uuid.Nil {
		return ErrEmptyRequestID
	}

	if r.ActivityID == uuid.Nil {
		return ErrEmptyRequestActivity
	}

	if r.RequestedBy == uuid.Nil {
		return ErrEmptyRequestUser
	}

	switch r.Status {
	case EvaluationRequestQueued:
		if r.StartedAt != nil || r.FinishedAt != nil {
			return ErrInvalidRequestStatus
		}
	case EvaluationRequestProcessing:
		if r.StartedAt == nil || r.FinishedAt != nil {
			return ErrInvalidRequestStatus
		}
	case EvaluationRequestCompleted, EvaluationRequestFailed:
		if r.StartedAt == nil || r.FinishedAt == nil {
			return ErrInvalidRequestStatus
		}
	default:
		return ErrInvalidRequestStatus
	}

	return nil
}

// IsTerminal reports whether the request has reached a terminal state.
func (r *EvaluationRequest) IsTerminal() bool {
	return r.Status == EvaluationRequestCompleted || r.Status == EvaluationRequestFailed
}

// MarkProcessing transitions a queued request to processing and stamps
// StartedAt. Returns ErrInvalidStatusTransition from any other state.
func (r *EvaluationRequest) MarkProcessing(now time.Time) error {
	if r.Status != EvaluationRequestQueued {
		return ErrInvalidStatusTransition
	}

	now = now.UTC()
	r.Status = EvaluationRequestProcessing
	r.StartedAt = &now
	return nil
}

// MarkCompleted transitions a processing request to completed and stamps
// FinishedAt. Returns ErrInvalidStatusTransition from any other state.
func (r *EvaluationRequest) MarkCompleted(now time.Time) error {
	if r.Status != EvaluationRequestProcessing {
		return ErrInvalidStatusTransition
	}

	now = now.UTC()
	r.Status = EvaluationRequestCompleted
	r.FinishedAt = &now
	return nil
}

// MarkFailed transitions a processing request to failed, recording the error
// code and a message truncated to MaxErrorMessageLen. Returns
// ErrInvalidStatusTransition from any other state.
func (r *EvaluationRequest) MarkFailed(now time.Time, code ErrorCode, message string) error {
	if r.Status != EvaluationRequestProcessing {
		return ErrInvalidStatusTransition
	}

	now = now.UTC()
	message = TruncateErrorMessage(message)

	r.Status = EvaluationRequestFailed
	r.FinishedAt = &now
	r.ErrorCode = &code
	r.ErrorMessage = &message
	return nil
}

// TruncateErrorMessage caps a message at MaxErrorMessageLen bytes.
func TruncateErrorMessage(message string) string {
	if len(message) > MaxErrorMessageLen {
		return message[:MaxErrorMessageLen]
	}
	return message
}
