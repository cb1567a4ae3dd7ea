package evaluation

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/campforge/campforge-api/internal/domain"
	"github.com/campforge/campforge-api/internal/llm"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrF(v float64) *float64 { return &v }
func ptrS(v string) *string   { return &v }

func completeResult() *llm.EvaluationResult {
	return &llm.EvaluationResult{
		LoreScore:           ptrF(8),
		ScoutingValuesScore: ptrF(6),
		LoreFeedback:        ptrS("fits the theme well"),
		ScoutingFeedback:    ptrS("strong on teamwork"),
		Suggestions:         []string{"a", "b", "c"},
	}
}

func TestSaveResult_RejectsIncompleteResults(t *testing.T) {
	// The rejection paths never reach the database, so a bare Writer works.
	w := &Writer{logger: slog.Default()}
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(r *llm.EvaluationResult)
	}{
		{name: "missing lore score", mutate: func(r *llm.EvaluationResult) { r.LoreScore = nil }},
		{name: "missing scouting score", mutate: func(r *llm.EvaluationResult) { r.ScoutingValuesScore = nil }},
		{name: "missing lore feedback", mutate: func(r *llm.EvaluationResult) { r.LoreFeedback = nil }},
		{name: "missing scouting feedback", mutate: func(r *llm.EvaluationResult) { r.ScoutingFeedback = nil }},
		{name: "too few suggestions", mutate: func(r *llm.EvaluationResult) { r.Suggestions = []string{"a", "b"} }},
		{name: "no suggestions", mutate: func(r *llm.EvaluationResult) { r.Suggestions = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := completeResult()
			tt.mutate(result)

			_, err := w.SaveResult(ctx, uuid.New(), uuid.New(), result)
			assert.ErrorIs(t, err, llm.ErrInvalidResponse)
		})
	}

	t.Run("nil result", func(t *testing.T) {
		_, err := w.SaveResult(ctx, uuid.New(), uuid.New(), nil)
		assert.ErrorIs(t, err, llm.ErrInvalidResponse)
	})
}

func TestClampScore(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  int
	}{
		{name: "in range", score: 7, want: 7},
		{name: "rounds half up", score: 6.5, want: 7},
		{name: "rounds down", score: 6.4, want: 6},
		{name: "above max clamps", score: 15, want: 10},
		{name: "below min clamps", score: 0, want: 1},
		{name: "negative clamps", score: -3.2, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clampScore(tt.score))
		})
	}
}

func TestTruncateWithEllipsis(t *testing.T) {
	t.Run("short strings pass through", func(t *testing.T) {
		assert.Equal(t, "hello", truncateWithEllipsis("hello", 10))
	})

	t.Run("exact length passes through", func(t *testing.T) {
		assert.Equal(t, "hello", truncateWithEllipsis("hello", 5))
	})

	t.Run("over-long strings are cut with a marker", func(t *testing.T) {
		got := truncateWithEllipsis(strings.Repeat("x", 600), domain.MaxFeedbackLen)
		assert.Len(t, got, domain.MaxFeedbackLen)
		assert.True(t, strings.HasSuffix(got, ellipsis))
	})

	t.Run("never splits a rune", func(t *testing.T) {
		got := truncateWithEllipsis(strings.Repeat("é", 300), 100)
		assert.LessOrEqual(t, len(got), 100)
		assert.True(t, strings.HasSuffix(got, ellipsis))
		assert.True(t, strings.HasPrefix(got, "é"))
	})
}

func TestNormalizeSuggestions(t *testing.T) {
	t.Run("caps the count", func(t *testing.T) {
		many := make([]string, 15)
		for i := range many {
			many[i] = "s"
		}

		got := normalizeSuggestions(many)
		assert.Len(t, got, domain.MaxSuggestions)
	})

	t.Run("truncates each entry", func(t *testing.T) {
		got := normalizeSuggestions([]string{strings.Repeat("x", 400), "ok", "fine"})
		require.Len(t, got, 3)
		assert.Len(t, got[0], domain.MaxSuggestionLen)
		assert.Equal(t, "ok", got[1])
	})
}
