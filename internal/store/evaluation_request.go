package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/campforge/campforge-api/internal/domain"
	"github.com/google/uuid"
)

// EvaluationRequestStore is the typed contract for the evaluation request
// queue. All queue mutation goes through these narrow operations; there are
// no ad hoc updates. The queue table is the single handoff between the
// enqueue path and the background worker.
type EvaluationRequestStore interface {
	// EnqueueWithCooldown atomically checks the activity's cooldown marker,
	// stamps it, and inserts a queued request — one unit, so two
	// near-simultaneous requests cannot both pass the check.
	//
	// Returns ErrCooldownActive if the activity's last accepted request is
	// younger than cooldown, and ErrActivityNotFound if the activity does
	// not exist or is soft-deleted.
	EnqueueWithCooldown(
		ctx context.Context,
		activityID, requestedBy uuid.UUID,
		cooldown time.Duration,
	) (*domain.EvaluationRequest, error)

	// ClaimBatch atomically claims up to limit queued requests, oldest
	// first, transitioning them to processing and stamping started_at.
	// The claim is a single statement with skip-locked semantics, so
	// concurrent workers never claim the same row.
	ClaimBatch(ctx context.Context, limit int) ([]*domain.EvaluationRequest, error)

	// FinalizeSuccess transitions a processing request to completed and
	// stamps finished_at. Returns ErrRequestNotFound if no processing row
	// matches. The evaluation writer calls this through WithTx so the flip
	// commits atomically with the evaluation insert.
	FinalizeSuccess(ctx context.Context, id uuid.UUID) error

	// FinalizeFailure transitions a processing request to failed with the
	// given error code and a message truncated to the persisted cap.
	// Returns ErrRequestNotFound if no processing row matches.
	FinalizeFailure(ctx context.Context, id uuid.UUID, code domain.ErrorCode, message string) error

	// FinalizeExpired fails every request stuck in processing longer than
	// olderThan with INTERNAL_ERROR, returning how many rows were swept.
	// Used at worker startup to clear rows orphaned by a crash.
	FinalizeExpired(ctx context.Context, olderThan time.Duration) (int, error)

	// GetByID retrieves a request by its unique ID.
	// Returns ErrRequestNotFound if the request does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.EvaluationRequest, error)

	// WithTx returns a new EvaluationRequestStore instance that uses the
	// provided transaction.
	WithTx(tx *sql.Tx) EvaluationRequestStore
}
