package store

import (
	"context"
	"database/sql"

	"github.com/campforge/campforge-api/internal/domain"
	"github.com/google/uuid"
)

// ActivityStore defines the interface for activity persistence.
// Soft-deleted activities are invisible to every read method.
type ActivityStore interface {
	// Create saves a new activity to the store.
	Create(ctx context.Context, activity *domain.Activity) error

	// GetByID retrieves an activity by its unique ID.
	// Returns ErrActivityNotFound if the activity does not exist or is
	// soft-deleted.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Activity, error)

	// ListByGroup retrieves all live activities in a group, newest first.
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*domain.Activity, error)

	// Update saves changes to an existing activity.
	// Returns ErrActivityNotFound if the activity does not exist or is
	// soft-deleted.
	Update(ctx context.Context, activity *domain.Activity) error

	// SoftDelete marks an activity as deleted without removing the row.
	// Returns ErrActivityNotFound if the activity does not exist or is
	// already deleted.
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new ActivityStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ActivityStore
}
