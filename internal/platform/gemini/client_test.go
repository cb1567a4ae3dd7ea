package gemini

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/campforge/campforge-api/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func responseWithText(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []*genai.Part{{Text: text}},
				},
			},
		},
	}
}

func TestParseResult(t *testing.T) {
	t.Run("valid structured response", func(t *testing.T) {
		resp := responseWithText(`{
			"lore_score": 8,
			"scouting_values_score": 6,
			"lore_feedback": "good fit",
			"scouting_feedback": "solid teamwork focus",
			"suggestions": ["a", "b", "c"]
		}`)
		resp.UsageMetadata = &genai.GenerateContentResponseUsageMetadata{TotalTokenCount: 321}

		result, err := parseResult(resp)
		require.NoError(t, err)

		require.NotNil(t, result.LoreScore)
		assert.Equal(t, 8.0, *result.LoreScore)
		require.NotNil(t, result.ScoutingValuesScore)
		assert.Equal(t, 6.0, *result.ScoutingValuesScore)
		require.NotNil(t, result.LoreFeedback)
		assert.Equal(t, "good fit", *result.LoreFeedback)
		assert.Equal(t, []string{"a", "b", "c"}, result.Suggestions)
		require.NotNil(t, result.Tokens)
		assert.Equal(t, 321, *result.Tokens)
	})

	t.Run("missing fields parse as nil", func(t *testing.T) {
		result, err := parseResult(responseWithText(`{"lore_score": 15, "suggestions": ["a"]}`))
		require.NoError(t, err)

		require.NotNil(t, result.LoreScore)
		assert.Equal(t, 15.0, *result.LoreScore)
		assert.Nil(t, result.ScoutingValuesScore)
		assert.Nil(t, result.LoreFeedback)
	})

	t.Run("nil response", func(t *testing.T) {
		_, err := parseResult(nil)
		assert.ErrorIs(t, err, llm.ErrInvalidResponse)
	})

	t.Run("no candidates", func(t *testing.T) {
		_, err := parseResult(&genai.GenerateContentResponse{})
		assert.ErrorIs(t, err, llm.ErrInvalidResponse)
	})

	t.Run("empty text", func(t *testing.T) {
		_, err := parseResult(responseWithText(""))
		assert.ErrorIs(t, err, llm.ErrInvalidResponse)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := parseResult(responseWithText("here are my thoughts: the activity"))
		assert.ErrorIs(t, err, llm.ErrInvalidResponse)
	})

	t.Run("safety block", func(t *testing.T) {
		resp := responseWithText(`{}`)
		resp.Candidates[0].FinishReason = genai.FinishReasonSafety

		_, err := parseResult(resp)
		assert.ErrorIs(t, err, llm.ErrInvalidResponse)
	})
}

func TestMapProviderError(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		code int
		want error
	}{
		{name: "unauthorized", code: 401, want: llm.ErrAuth},
		{name: "forbidden", code: 403, want: llm.ErrAuth},
		{name: "rate limited", code: 429, want: llm.ErrRateLimit},
		{name: "payload too large", code: 413, want: llm.ErrPayloadTooLarge},
		{name: "bad request", code: 400, want: llm.ErrValidation},
		{name: "server error", code: 500, want: llm.ErrUpstream},
		{name: "bad gateway", code: 502, want: llm.ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapProviderError(ctx, genai.APIError{Code: tt.code, Message: tt.name})
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("deadline exceeded maps to timeout", func(t *testing.T) {
		err := mapProviderError(ctx, context.DeadlineExceeded)
		assert.ErrorIs(t, err, llm.ErrTimeout)
	})

	t.Run("cancelled context maps to timeout even with provider error", func(t *testing.T) {
		cancelled, cancel := context.WithTimeout(ctx, time.Nanosecond)
		defer cancel()
		<-cancelled.Done()

		err := mapProviderError(cancelled, genai.APIError{Code: 500})
		assert.ErrorIs(t, err, llm.ErrTimeout)
	})

	t.Run("unknown errors map to upstream", func(t *testing.T) {
		err := mapProviderError(ctx, errors.New("connection reset"))
		assert.ErrorIs(t, err, llm.ErrUpstream)
	})
}
