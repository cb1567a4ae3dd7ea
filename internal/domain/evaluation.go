package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Bounds for evaluation content. The writer clamps and truncates into these
// limits; persisted rows never exceed them.
const (
	MinScore = 1
	MaxScore = 10

	MaxFeedbackLen   = 500
	MaxSuggestionLen = 300

	MinSuggestions = 3
	MaxSuggestions = 10
)

// Common validation errors for Evaluation
var (
	ErrEmptyEvaluationID       = errors.New("evaluation ID cannot be empty")
	ErrEmptyEvaluationActivity = errors.New("evaluation activity ID cannot be empty")
	ErrInvalidEvaluationScore  = errors.New("evaluation score out of range")
	ErrInvalidVersion          = errors.New("evaluation version must be positive")
	ErrFeedbackTooLong         = errors.New("evaluation feedback exceeds maximum length")
	ErrSuggestionTooLong       = errors.New("evaluation suggestion exceeds maximum length")
	ErrSuggestionCount         = errors.New("evaluation suggestion count out of range")
)

// Evaluation is one immutable AI assessment of an activity. Versions count up
// per activity starting at 1; rows are never updated or deleted, and history
// is read by listing all versions newest first.
type Evaluation struct {
	ID         uuid.UUID `json:"id"`
	ActivityID uuid.UUID `json:"activity_id"`
	Version    int       `json:"version"`

	LoreScore           int `json:"lore_score"`
	ScoutingValuesScore int `json:"scouting_values_score"`

	LoreFeedback     string   `json:"lore_feedback"`
	ScoutingFeedback string   `json:"scouting_feedback"`
	Suggestions      []string `json:"suggestions"`

	Tokens    *int      `json:"tokens,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewEvaluation creates an Evaluation for the given activity. The version is
// zero until the store assigns it at insert time. Callers are expected to
// pass already-clamped content; Validate enforces the bounds.
func NewEvaluation(
	activityID uuid.UUID,
	loreScore, scoutingValuesScore int,
	loreFeedback, scoutingFeedback string,
	suggestions []string,
	tokens *int,
) (*Evaluation, error) {
	eval := &Evaluation{
		ID:                  uuid.New(),
		ActivityID:          activityID,
		LoreScore:           loreScore,
		ScoutingValuesScore: scoutingValuesScore,
		LoreFeedback:        loreFeedback,
		ScoutingFeedback:    scoutingFeedback,
		Suggestions:         suggestions,
		Tokens:              tokens,
		CreatedAt:           time.Now().UTC(),
	}

	if err := eval.validateContent(); err != nil {
		return nil, err
	}

	return eval, nil
}

// Validate checks the full entity, including the store-assigned version.
func (e *Evaluation) Validate() error {
	if e.Version < 1 {
		return ErrInvalidVersion
	}
	return e.validateContent()
}

// validateContent checks everything except the version, which is assigned
// by the store at insert time.
func (e *Evaluation) validateContent() error {
	if e.ID == uuid.Nil {
		return ErrEmptyEvaluationID
	}

	if e.ActivityID == uuid.Nil {
		return ErrEmptyEvaluationActivity
	}

	if !scoreInRange(e.LoreScore) || !scoreInRange(e.ScoutingValuesScore) {
		return ErrInvalidEvaluationScore
	}

	if len(e.LoreFeedback) > MaxFeedbackLen || len(e.ScoutingFeedback) > MaxFeedbackLen {
		return ErrFeedbackTooLong
	}

	if len(e.Suggestions) < MinSuggestions || len(e.Suggestions) > MaxSuggestions {
		return ErrSuggestionCount
	}

	for _, s := range e.Suggestions {
		if len(s) > MaxSuggestionLen {
			return ErrSuggestionTooLong
		}
	}

	return nil
}

// scoreInRange reports whether the score lies in [MinScore, MaxScore].
func scoreInRange(score int) bool {
	return score >= MinScore && score <= MaxScore
}
