package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/campforge/campforge-api/internal/domain"
	"github.com/campforge/campforge-api/internal/platform/logger"
	"github.com/campforge/campforge-api/internal/store"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresGroupStore implements the store.GroupStore interface
// using a PostgreSQL database as the storage backend.
type PostgresGroupStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresGroupStore creates a new PostgreSQL implementation of the
// GroupStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresGroupStore(db store.DBTX, logger *slog.Logger) *PostgresGroupStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresGroupStore{
		db:     db,
		logger: logger.With(slog.String("component", "group_store")),
	}
}

// Ensure PostgresGroupStore implements store.GroupStore
var _ store.GroupStore = (*PostgresGroupStore)(nil)

// Create implements store.GroupStore.Create.
func (s *PostgresGroupStore) Create(ctx context.Context, group *domain.Group) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := group.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO groups (id, name, theme, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(ctx, query,
		group.ID,
		group.Name,
		group.Theme,
		group.CreatedAt,
		group.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create group",
			slog.String("error", err.Error()),
			slog.String("group_id", group.ID.String()))
		return MapError(err)
	}

	log.Info("group created", slog.String("group_id", group.ID.String()))
	return nil
}

// GetByID implements store.GroupStore.GetByID.
func (s *PostgresGroupStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	query := `
		SELECT id, name, theme, created_at, updated_at
		FROM groups
		WHERE id = $1
	`

	var group domain.Group
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&group.ID,
		&group.Name,
		&group.Theme,
		&group.CreatedAt,
		&group.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrGroupNotFound
		}
		return nil, MapError(err)
	}

	return &group, nil
}

// AddMembership implements store.GroupStore.AddMembership.
// Adding an existing member updates their role.
func (s *PostgresGroupStore) AddMembership(
	ctx context.Context,
	membership *domain.Membership,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := membership.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO memberships (group_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (group_id, user_id) DO UPDATE SET role = EXCLUDED.role
	`
	_, err := s.db.ExecContext(ctx, query,
		membership.GroupID,
		membership.UserID,
		membership.Role,
		membership.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode {
			return fmt.Errorf("%w: group or user not found", store.ErrInvalidEntity)
		}

		log.Error("failed to add membership",
			slog.String("error", err.Error()),
			slog.String("group_id", membership.GroupID.String()),
			slog.String("user_id", membership.UserID.String()))
		return MapError(err)
	}

	return nil
}

// GetMembership implements store.GroupStore.GetMembership.
func (s *PostgresGroupStore) GetMembership(
	ctx context.Context,
	groupID, userID uuid.UUID,
) (*domain.Membership, error) {
	query := `
		SELECT group_id, user_id, role, created_at
		FROM memberships
		WHERE group_id = $1 AND user_id = $2
	`

	var membership domain.Membership
	err := s.db.QueryRowContext(ctx, query, groupID, userID).Scan(
		&membership.GroupID,
		&membership.UserID,
		&membership.Role,
		&membership.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrMembershipNotFound
		}
		return nil, MapError(err)
	}

	return &membership, nil
}

// WithTx implements store.GroupStore.WithTx.
func (s *PostgresGroupStore) WithTx(tx *sql.Tx) store.GroupStore {
	return &PostgresGroupStore{
		db:     tx,
		logger: s.logger,
	}
}
