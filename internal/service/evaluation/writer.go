package evaluation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"unicode/utf8"

	"github.com/campforge/campforge-api/internal/domain"
	"github.com/campforge/campforge-api/internal/llm"
	"github.com/campforge/campforge-api/internal/store"
	"github.com/google/uuid"
)

// ellipsis is appended to feedback and suggestions cut at their length caps.
const ellipsis = "..."

// Writer persists finished evaluation results. The evaluation insert and the
// request's flip to completed commit as one transaction, so a crash between
// the two cannot leave an evaluation without a completed request or vice
// versa.
type Writer struct {
	logger          *slog.Logger
	db              *sql.DB
	evaluationStore store.EvaluationStore
	requestStore    store.EvaluationRequestStore
}

// NewWriter creates a Writer.
func NewWriter(
	logger *slog.Logger,
	db *sql.DB,
	evaluationStore store.EvaluationStore,
	requestStore store.EvaluationRequestStore,
) (*Writer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	if evaluationStore == nil || requestStore == nil {
		return nil, errors.New("stores cannot be nil")
	}

	return &Writer{
		logger:          logger.With(slog.String("component", "evaluation_writer")),
		db:              db,
		evaluationStore: evaluationStore,
		requestStore:    requestStore,
	}, nil
}

// SaveResult normalizes a completion result into an evaluation, persists it
// with the next version number, and flips the request to completed, all in
// one transaction.
//
// A result missing a required field fails with llm.ErrInvalidResponse; fields
// that are merely out of range are clamped or truncated rather than rejected.
func (w *Writer) SaveResult(
	ctx context.Context,
	requestID, activityID uuid.UUID,
	result *llm.EvaluationResult,
) (*domain.Evaluation, error) {
	if result == nil {
		return nil, fmt.Errorf("%w: nil result", llm.ErrInvalidResponse)
	}

	if err := checkRequiredFields(result); err != nil {
		return nil, err
	}

	suggestions := normalizeSuggestions(result.Suggestions)

	eval, err := domain.NewEvaluation(
		activityID,
		clampScore(*result.LoreScore),
		clampScore(*result.ScoutingValuesScore),
		truncateWithEllipsis(*result.LoreFeedback, domain.MaxFeedbackLen),
		truncateWithEllipsis(*result.ScoutingFeedback, domain.MaxFeedbackLen),
		suggestions,
		result.Tokens,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build evaluation: %w", err)
	}

	err = store.RunInTransaction(ctx, w.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := w.evaluationStore.WithTx(tx).CreateWithVersion(ctx, eval); err != nil {
			return fmt.Errorf("failed to insert evaluation: %w", err)
		}

		if err := w.requestStore.WithTx(tx).FinalizeSuccess(ctx, requestID); err != nil {
			return fmt.Errorf("failed to complete request: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	w.logger.InfoContext(ctx, "evaluation saved",
		slog.String("evaluation_id", eval.ID.String()),
		slog.String("activity_id", activityID.String()),
		slog.Int("version", eval.Version))

	return eval, nil
}

// checkRequiredFields rejects results missing any required field. Anything
// short of all scores, all feedback and the minimum suggestion count is
// unusable.
func checkRequiredFields(result *llm.EvaluationResult) error {
	switch {
	case result.LoreScore == nil:
		return fmt.Errorf("%w: missing lore_score", llm.ErrInvalidResponse)
	case result.ScoutingValuesScore == nil:
		return fmt.Errorf("%w: missing scouting_values_score", llm.ErrInvalidResponse)
	case result.LoreFeedback == nil:
		return fmt.Errorf("%w: missing lore_feedback", llm.ErrInvalidResponse)
	case result.ScoutingFeedback == nil:
		return fmt.Errorf("%w: missing scouting_feedback", llm.ErrInvalidResponse)
	case len(result.Suggestions) < domain.MinSuggestions:
		return fmt.Errorf("%w: got %d suggestions, need at least %d",
			llm.ErrInvalidResponse, len(result.Suggestions), domain.MinSuggestions)
	}

	return nil
}

// clampScore rounds to the nearest integer and clamps into the score range.
func clampScore(score float64) int {
	rounded := int(math.Round(score))
	if rounded < domain.MinScore {
		return domain.MinScore
	}
	if rounded > domain.MaxScore {
		return domain.MaxScore
	}
	return rounded
}

// normalizeSuggestions truncates over-long suggestions and drops any beyond
// the maximum count.
func normalizeSuggestions(suggestions []string) []string {
	if len(suggestions) > domain.MaxSuggestions {
		suggestions = suggestions[:domain.MaxSuggestions]
	}

	out := make([]string, len(suggestions))
	for i, s := range suggestions {
		out[i] = truncateWithEllipsis(s, domain.MaxSuggestionLen)
	}

	return out
}

// truncateWithEllipsis cuts s to at most max bytes, ending on a rune boundary
// with an ellipsis marking the cut.
func truncateWithEllipsis(s string, max int) string {
	if len(s) <= max {
		return s
	}

	cut := max - len(ellipsis)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}

	return s[:cut] + ellipsis
}
