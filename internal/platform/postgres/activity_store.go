package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/campforge/campforge-api/internal/domain"
	"github.com/campforge/campforge-api/internal/platform/logger"
	"github.com/campforge/campforge-api/internal/store"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresActivityStore implements the store.ActivityStore interface
// using a PostgreSQL database as the storage backend.
type PostgresActivityStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresActivityStore creates a new PostgreSQL implementation of the
// ActivityStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresActivityStore(db store.DBTX, logger *slog.Logger) *PostgresActivityStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresActivityStore{
		db:     db,
		logger: logger.With(slog.String("component", "activity_store")),
	}
}

// Ensure PostgresActivityStore implements store.ActivityStore
var _ store.ActivityStore = (*PostgresActivityStore)(nil)

const activityColumns = `id, group_id, title, description, materials, location,
	duration_minutes, assigned_editor_id, last_evaluation_requested_at,
	deleted_at, created_at, updated_at`

// Create implements store.ActivityStore.Create.
// Returns store.ErrInvalidEntity if the owning group does not exist.
func (s *PostgresActivityStore) Create(ctx context.Context, activity *domain.Activity) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := activity.Validate(); err != nil {
		log.Warn("activity validation failed during create",
			slog.String("error", err.Error()),
			slog.String("activity_id", activity.ID.String()))
		return err
	}

	query := `
		INSERT INTO activities (
			id, group_id, title, description, materials, location,
			duration_minutes, assigned_editor_id, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		activity.ID,
		activity.GroupID,
		activity.Title,
		activity.Description,
		activity.Materials,
		activity.Location,
		activity.DurationMinutes,
		activity.AssignedEditorID,
		activity.CreatedAt,
		activity.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode {
			return fmt.Errorf("%w: group %s not found",
				store.ErrInvalidEntity, activity.GroupID)
		}

		log.Error("failed to create activity",
			slog.String("error", err.Error()),
			slog.String("activity_id", activity.ID.String()))
		return MapError(err)
	}

	log.Info("activity created",
		slog.String("activity_id", activity.ID.String()),
		slog.String("group_id", activity.GroupID.String()))
	return nil
}

// GetByID implements store.ActivityStore.GetByID.
func (s *PostgresActivityStore) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*domain.Activity, error) {
	query := `SELECT ` + activityColumns + `
		FROM activities
		WHERE id = $1 AND deleted_at IS NULL`

	activity, err := scanActivity(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrActivityNotFound
		}
		return nil, MapError(err)
	}

	return activity, nil
}

// ListByGroup implements store.ActivityStore.ListByGroup.
func (s *PostgresActivityStore) ListByGroup(
	ctx context.Context,
	groupID uuid.UUID,
) ([]*domain.Activity, error) {
	query := `SELECT ` + activityColumns + `
		FROM activities
		WHERE group_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var activities []*domain.Activity
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity row: %w", err)
		}
		activities = append(activities, activity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity rows: %w", err)
	}

	return activities, nil
}

// Update implements store.ActivityStore.Update.
func (s *PostgresActivityStore) Update(ctx context.Context, activity *domain.Activity) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := activity.Validate(); err != nil {
		return err
	}

	activity.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE activities
		SET title = $1, description = $2, materials = $3, location = $4,
			duration_minutes = $5, assigned_editor_id = $6, updated_at = $7
		WHERE id = $8 AND deleted_at IS NULL
	`
	result, err := s.db.ExecContext(ctx, query,
		activity.Title,
		activity.Description,
		activity.Materials,
		activity.Location,
		activity.DurationMinutes,
		activity.AssignedEditorID,
		activity.UpdatedAt,
		activity.ID,
	)
	if err != nil {
		log.Error("failed to update activity",
			slog.String("error", err.Error()),
			slog.String("activity_id", activity.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "activity"); err != nil {
		return store.ErrActivityNotFound
	}

	return nil
}

// SoftDelete implements store.ActivityStore.SoftDelete.
func (s *PostgresActivityStore) SoftDelete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := time.Now().UTC()
	query := `
		UPDATE activities
		SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`
	result, err := s.db.ExecContext(ctx, query, now, id)
	if err != nil {
		log.Error("failed to soft-delete activity",
			slog.String("error", err.Error()),
			slog.String("activity_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "activity"); err != nil {
		return store.ErrActivityNotFound
	}

	log.Info("activity soft-deleted", slog.String("activity_id", id.String()))
	return nil
}

// WithTx implements store.ActivityStore.WithTx.
func (s *PostgresActivityStore) WithTx(tx *sql.Tx) store.ActivityStore {
	return &PostgresActivityStore{
		db:     tx,
		logger: s.logger,
	}
}

// scanActivity reads one activity row.
func scanActivity(row rowScanner) (*domain.Activity, error) {
	var activity domain.Activity
	var assignedEditor uuid.NullUUID
	var lastRequested sql.NullTime
	var deletedAt sql.NullTime

	err := row.Scan(
		&activity.ID,
		&activity.GroupID,
		&activity.Title,
		&activity.Description,
		&activity.Materials,
		&activity.Location,
		&activity.DurationMinutes,
		&assignedEditor,
		&lastRequested,
		&deletedAt,
		&activity.CreatedAt,
		&activity.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if assignedEditor.Valid {
		id := assignedEditor.UUID
		activity.AssignedEditorID = &id
	}
	if lastRequested.Valid {
		t := lastRequested.Time
		activity.LastEvaluationRequestedAt = &t
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		activity.DeletedAt = &t
	}

	return &activity, nil
}
