package store

import (
	"context"
	"database/sql"

	"github.com/campforge/campforge-api/internal/domain"
	"github.com/google/uuid"
)

// GroupStore defines the interface for group and membership persistence.
type GroupStore interface {
	// Create saves a new group to the store.
	Create(ctx context.Context, group *domain.Group) error

	// GetByID retrieves a group by its unique ID.
	// Returns ErrGroupNotFound if the group does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error)

	// AddMembership records a user's role in a group. Adding an existing
	// member updates their role.
	AddMembership(ctx context.Context, membership *domain.Membership) error

	// GetMembership retrieves the membership for a user in a group.
	// Returns ErrMembershipNotFound if the user is not a member.
	GetMembership(ctx context.Context, groupID, userID uuid.UUID) (*domain.Membership, error)

	// WithTx returns a new GroupStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) GroupStore
}
