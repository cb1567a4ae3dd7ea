package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/campforge/campforge-api/internal/domain"
	"github.com/campforge/campforge-api/internal/platform/logger"
	"github.com/campforge/campforge-api/internal/store"
	"github.com/google/uuid"
)

// PostgresEvaluationRequestStore implements store.EvaluationRequestStore
// using a PostgreSQL database as the storage backend. The queue table is the
// only shared mutable state between the enqueue path and the worker, so every
// mutation here is a single atomic statement.
type PostgresEvaluationRequestStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresEvaluationRequestStore creates a new PostgreSQL implementation
// of the EvaluationRequestStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresEvaluationRequestStore(db store.DBTX, logger *slog.Logger) *PostgresEvaluationRequestStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresEvaluationRequestStore{
		db:     db,
		logger: logger.With(slog.String("component", "evaluation_request_store")),
	}
}

// Ensure PostgresEvaluationRequestStore implements store.EvaluationRequestStore
var _ store.EvaluationRequestStore = (*PostgresEvaluationRequestStore)(nil)

// requestColumns is the column list shared by every SELECT/RETURNING here.
const requestColumns = `id, activity_id, requested_by, status, error_code, error_message, created_at, started_at, finished_at`

// EnqueueWithCooldown implements store.EvaluationRequestStore.EnqueueWithCooldown.
//
// The cooldown check, the cooldown stamp and the request insert run as one
// statement: the CTE conditionally updates the activity's marker, and the
// insert only fires when the update claimed a row. Two near-simultaneous
// requests serialize on the activity row lock, so exactly one is accepted
// within any cooldown window.
func (s *PostgresEvaluationRequestStore) EnqueueWithCooldown(
	ctx context.Context,
	activityID, requestedBy uuid.UUID,
	cooldown time.Duration,
) (*domain.EvaluationRequest, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := time.Now().UTC()
	id := uuid.New()

	query := `
		WITH gated AS (
			UPDATE activities
			SET last_evaluation_requested_at = $4, updated_at = $4
			WHERE id = $2
			  AND deleted_at IS NULL
			  AND (
				last_evaluation_requested_at IS NULL
				OR last_evaluation_requested_at <= $4::timestamptz - make_interval(secs => $5)
			  )
			RETURNING id
		)
		INSERT INTO evaluation_requests (id, activity_id, requested_by, status, created_at)
		SELECT $1, gated.id, $3, $6, $4
		FROM gated
		RETURNING ` + requestColumns

	row := s.db.QueryRowContext(ctx, query,
		id,
		activityID,
		requestedBy,
		now,
		cooldown.Seconds(),
		domain.EvaluationRequestQueued,
	)

	req, err := scanRequest(row)
	if err == nil {
		log.Info("evaluation request enqueued",
			slog.String("request_id", req.ID.String()),
			slog.String("activity_id", activityID.String()),
			slog.String("requested_by", requestedBy.String()))
		return req, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		log.Error("failed to enqueue evaluation request",
			slog.String("activity_id", activityID.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	// The gate rejected: distinguish a missing/deleted activity from an
	// active cooldown. Read-only follow-up, classification only.
	var exists bool
	checkQuery := `SELECT EXISTS (SELECT 1 FROM activities WHERE id = $1 AND deleted_at IS NULL)`
	if err := s.db.QueryRowContext(ctx, checkQuery, activityID).Scan(&exists); err != nil {
		return nil, MapError(err)
	}

	if !exists {
		return nil, store.ErrActivityNotFound
	}

	log.Info("evaluation request rejected by cooldown",
		slog.String("activity_id", activityID.String()),
		slog.String("requested_by", requestedBy.String()))
	return nil, store.ErrCooldownActive
}

// ClaimBatch implements store.EvaluationRequestStore.ClaimBatch.
//
// The claim is a single UPDATE over a skip-locked subselect, so a row is
// claimed by at most one worker even when several poll concurrently.
func (s *PostgresEvaluationRequestStore) ClaimBatch(
	ctx context.Context,
	limit int,
) ([]*domain.EvaluationRequest, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		return nil, nil
	}

	query := `
		UPDATE evaluation_requests
		SET status = $1, started_at = $2
		WHERE id IN (
			SELECT id
			FROM evaluation_requests
			WHERE status = $3
			ORDER BY created_at ASC
			LIMIT $4
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + requestColumns

	rows, err := s.db.QueryContext(ctx, query,
		domain.EvaluationRequestProcessing,
		time.Now().UTC(),
		domain.EvaluationRequestQueued,
		limit,
	)
	if err != nil {
		log.Error("failed to claim evaluation requests", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var claimed []*domain.EvaluationRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan claimed request: %w", err)
		}
		claimed = append(claimed, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating claimed requests: %w", err)
	}

	// UPDATE ... RETURNING does not guarantee row order; restore FIFO.
	sort.Slice(claimed, func(i, j int) bool {
		return claimed[i].CreatedAt.Before(claimed[j].CreatedAt)
	})

	if len(claimed) > 0 {
		log.Debug("claimed evaluation requests", slog.Int("count", len(claimed)))
	}

	return claimed, nil
}

// FinalizeSuccess implements store.EvaluationRequestStore.FinalizeSuccess.
func (s *PostgresEvaluationRequestStore) FinalizeSuccess(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE evaluation_requests
		SET status = $1, finished_at = $2
		WHERE id = $3 AND status = $4
	`

	result, err := s.db.ExecContext(ctx, query,
		domain.EvaluationRequestCompleted,
		time.Now().UTC(),
		id,
		domain.EvaluationRequestProcessing,
	)
	if err != nil {
		log.Error("failed to finalize evaluation request",
			slog.String("request_id", id.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "evaluation request"); err != nil {
		return fmt.Errorf("%w: no processing row for %s", store.ErrRequestNotFound, id)
	}

	log.Info("evaluation request completed", slog.String("request_id", id.String()))
	return nil
}

// FinalizeFailure implements store.EvaluationRequestStore.FinalizeFailure.
func (s *PostgresEvaluationRequestStore) FinalizeFailure(
	ctx context.Context,
	id uuid.UUID,
	code domain.ErrorCode,
	message string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE evaluation_requests
		SET status = $1, finished_at = $2, error_code = $3, error_message = $4
		WHERE id = $5 AND status = $6
	`

	result, err := s.db.ExecContext(ctx, query,
		domain.EvaluationRequestFailed,
		time.Now().UTC(),
		code,
		domain.TruncateErrorMessage(message),
		id,
		domain.EvaluationRequestProcessing,
	)
	if err != nil {
		log.Error("failed to record evaluation request failure",
			slog.String("request_id", id.String()),
			slog.String("error_code", string(code)),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "evaluation request"); err != nil {
		return fmt.Errorf("%w: no processing row for %s", store.ErrRequestNotFound, id)
	}

	log.Info("evaluation request failed",
		slog.String("request_id", id.String()),
		slog.String("error_code", string(code)))
	return nil
}

// FinalizeExpired implements store.EvaluationRequestStore.FinalizeExpired.
func (s *PostgresEvaluationRequestStore) FinalizeExpired(
	ctx context.Context,
	olderThan time.Duration,
) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE evaluation_requests
		SET status = $1, finished_at = $2, error_code = $3, error_message = $4
		WHERE status = $5 AND started_at < $6
	`

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, query,
		domain.EvaluationRequestFailed,
		now,
		domain.CodeInternalError,
		"request expired while processing",
		domain.EvaluationRequestProcessing,
		now.Add(-olderThan),
	)
	if err != nil {
		log.Error("failed to sweep expired evaluation requests", slog.String("error", err.Error()))
		return 0, MapError(err)
	}

	swept, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if swept > 0 {
		log.Warn("swept expired evaluation requests", slog.Int64("count", swept))
	}

	return int(swept), nil
}

// GetByID implements store.EvaluationRequestStore.GetByID.
func (s *PostgresEvaluationRequestStore) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*domain.EvaluationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM evaluation_requests WHERE id = $1`

	req, err := scanRequest(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrRequestNotFound
		}
		return nil, MapError(err)
	}

	return req, nil
}

// WithTx implements store.EvaluationRequestStore.WithTx.
func (s *PostgresEvaluationRequestStore) WithTx(tx *sql.Tx) store.EvaluationRequestStore {
	return &PostgresEvaluationRequestStore{
		db:     tx,
		logger: s.logger,
	}
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRequest reads one evaluation request row.
func scanRequest(row rowScanner) (*domain.EvaluationRequest, error) {
	var req domain.EvaluationRequest
	var errorCode sql.NullString
	var errorMessage sql.NullString
	var startedAt sql.NullTime
	var finishedAt sql.NullTime

	err := row.Scan(
		&req.ID,
		&req.ActivityID,
		&req.RequestedBy,
		&req.Status,
		&errorCode,
		&errorMessage,
		&req.CreatedAt,
		&startedAt,
		&finishedAt,
	)
	if err != nil {
		return nil, err
	}

	if errorCode.Valid {
		code := domain.ErrorCode(errorCode.String)
		req.ErrorCode = &code
	}
	if errorMessage.Valid {
		msg := errorMessage.String
		req.ErrorMessage = &msg
	}
	if startedAt.Valid {
		t := startedAt.Time
		req.StartedAt = &t
	}
	if finishedAt.Valid {
		t := finishedAt.Time
		req.FinishedAt = &t
	}

	return &req, nil
}
