package store

import (
	"context"
	"database/sql"

	"github.com/campforge/campforge-api/internal/domain"
	"github.com/google/uuid"
)

// EvaluationStore defines the interface for persisted evaluation results.
// Rows are immutable: there is no update or delete.
type EvaluationStore interface {
	// CreateWithVersion inserts the evaluation, assigning the next version
	// number for its activity atomically with the insert (starting at 1).
	// The assigned version is written back to the entity.
	CreateWithVersion(ctx context.Context, evaluation *domain.Evaluation) error

	// GetByID retrieves an evaluation by its unique ID.
	// Returns ErrEvaluationNotFound if the evaluation does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Evaluation, error)

	// ListByActivity retrieves all evaluations for an activity, newest
	// version first.
	ListByActivity(ctx context.Context, activityID uuid.UUID) ([]*domain.Evaluation, error)

	// WithTx returns a new EvaluationStore instance that uses the provided
	// transaction. The evaluation writer uses this to commit the insert and
	// the request status flip as one unit.
	WithTx(tx *sql.Tx) EvaluationStore
}
