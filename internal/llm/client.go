package llm

import "context"

// EvaluationResult is the parsed structured output of an evaluation
// completion. Score and feedback fields are pointers so the evaluation
// writer can tell a missing required field from a zero value; the provider
// adapter fills Tokens from usage metadata when available.
type EvaluationResult struct {
	LoreScore           *float64 `json:"lore_score"`
	ScoutingValuesScore *float64 `json:"scouting_values_score"`
	LoreFeedback        *string  `json:"lore_feedback"`
	ScoutingFeedback    *string  `json:"scouting_feedback"`
	Suggestions         []string `json:"suggestions"`

	Tokens *int `json:"-"`
}

// Client is the boundary to an external completion provider. Implementations
// request schema-constrained JSON output and translate provider failures into
// the taxonomy errors of this package.
type Client interface {
	// Complete sends the prompt and returns the parsed structured result.
	// The context's deadline bounds the call; cancellation surfaces as
	// ErrTimeout. A response whose top-level JSON does not parse fails with
	// ErrInvalidResponse regardless of provider-side schema enforcement.
	Complete(ctx context.Context, prompt string) (*EvaluationResult, error)
}
