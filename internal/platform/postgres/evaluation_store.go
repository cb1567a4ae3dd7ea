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

// PostgresEvaluationStore implements the store.EvaluationStore interface
// using a PostgreSQL database as the storage backend.
type PostgresEvaluationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresEvaluationStore creates a new PostgreSQL implementation of the
// EvaluationStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresEvaluationStore(db store.DBTX, logger *slog.Logger) *PostgresEvaluationStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresEvaluationStore{
		db:     db,
		logger: logger.With(slog.String("component", "evaluation_store")),
	}
}

// Ensure PostgresEvaluationStore implements store.EvaluationStore
var _ store.EvaluationStore = (*PostgresEvaluationStore)(nil)

const evaluationColumns = `id, activity_id, version, lore_score, scouting_values_score,
	lore_feedback, scouting_feedback, suggestions, tokens, created_at`

// CreateWithVersion implements store.EvaluationStore.CreateWithVersion.
//
// The version subselect and the insert are one statement, and the table's
// (activity_id, version) unique constraint backstops it: concurrent writers
// cannot produce duplicate versions, one of them surfaces ErrDuplicate.
func (s *PostgresEvaluationStore) CreateWithVersion(
	ctx context.Context,
	evaluation *domain.Evaluation,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO evaluations (
			id, activity_id, version, lore_score, scouting_values_score,
			lore_feedback, scouting_feedback, suggestions, tokens, created_at
		)
		VALUES (
			$1, $2,
			(SELECT COALESCE(MAX(version), 0) + 1 FROM evaluations WHERE activity_id = $2),
			$3, $4, $5, $6, $7, $8, $9
		)
		RETURNING version
	`

	var tokens sql.NullInt64
	if evaluation.Tokens != nil {
		tokens = sql.NullInt64{Int64: int64(*evaluation.Tokens), Valid: true}
	}

	err := s.db.QueryRowContext(ctx, query,
		evaluation.ID,
		evaluation.ActivityID,
		evaluation.LoreScore,
		evaluation.ScoutingValuesScore,
		evaluation.LoreFeedback,
		evaluation.ScoutingFeedback,
		suggestionsArray(evaluation.Suggestions),
		tokens,
		evaluation.CreatedAt,
	).Scan(&evaluation.Version)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode {
			return fmt.Errorf("%w: activity %s not found",
				store.ErrInvalidEntity, evaluation.ActivityID)
		}

		log.Error("failed to create evaluation",
			slog.String("evaluation_id", evaluation.ID.String()),
			slog.String("activity_id", evaluation.ActivityID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	log.Info("evaluation created",
		slog.String("evaluation_id", evaluation.ID.String()),
		slog.String("activity_id", evaluation.ActivityID.String()),
		slog.Int("version", evaluation.Version))
	return nil
}

// GetByID implements store.EvaluationStore.GetByID.
func (s *PostgresEvaluationStore) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*domain.Evaluation, error) {
	query := `SELECT ` + evaluationColumns + ` FROM evaluations WHERE id = $1`

	eval, err := scanEvaluation(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrEvaluationNotFound
		}
		return nil, MapError(err)
	}

	return eval, nil
}

// ListByActivity implements store.EvaluationStore.ListByActivity.
func (s *PostgresEvaluationStore) ListByActivity(
	ctx context.Context,
	activityID uuid.UUID,
) ([]*domain.Evaluation, error) {
	query := `SELECT ` + evaluationColumns + `
		FROM evaluations
		WHERE activity_id = $1
		ORDER BY version DESC`

	rows, err := s.db.QueryContext(ctx, query, activityID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var evaluations []*domain.Evaluation
	for rows.Next() {
		eval, err := scanEvaluation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan evaluation row: %w", err)
		}
		evaluations = append(evaluations, eval)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating evaluation rows: %w", err)
	}

	return evaluations, nil
}

// WithTx implements store.EvaluationStore.WithTx.
func (s *PostgresEvaluationStore) WithTx(tx *sql.Tx) store.EvaluationStore {
	return &PostgresEvaluationStore{
		db:     tx,
		logger: s.logger,
	}
}

// scanEvaluation reads one evaluation row.
func scanEvaluation(row rowScanner) (*domain.Evaluation, error) {
	var eval domain.Evaluation
	var suggestions suggestionsArray
	var tokens sql.NullInt64

	err := row.Scan(
		&eval.ID,
		&eval.ActivityID,
		&eval.Version,
		&eval.LoreScore,
		&eval.ScoutingValuesScore,
		&eval.LoreFeedback,
		&eval.ScoutingFeedback,
		&suggestions,
		&tokens,
		&eval.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	eval.Suggestions = suggestions
	if tokens.Valid {
		t := int(tokens.Int64)
		eval.Tokens = &t
	}

	return &eval, nil
}
