package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/campforge/campforge-api/internal/config"
	"github.com/campforge/campforge-api/internal/llm"
	"google.golang.org/genai"
)

// Client implements the llm.Client interface using Google's Gemini API.
// It is stateless apart from the underlying API client and safe for
// concurrent use by worker goroutines.
type Client struct {
	logger *slog.Logger
	client *genai.Client
	model  string
}

// NewClient creates a new Gemini-backed llm.Client with the provided
// configuration.
//
// Returns an error if the configuration is incomplete or the underlying
// client cannot be constructed.
func NewClient(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", llm.ErrValidation)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", llm.ErrValidation)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		logger: logger.With(slog.String("component", "gemini_client")),
		client: client,
		model:  cfg.ModelName,
	}, nil
}

// Ensure Client implements llm.Client
var _ llm.Client = (*Client)(nil)

// Complete implements llm.Client.Complete.
func (c *Client) Complete(ctx context.Context, prompt string) (*llm.EvaluationResult, error) {
	if prompt == "" {
		return nil, fmt.Errorf("%w: prompt cannot be empty", llm.ErrValidation)
	}

	c.logger.DebugContext(ctx, "making Gemini API call",
		slog.String("model", c.model),
		slog.Int("prompt_length", len(prompt)))

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   evaluationResponseSchema(),
		})
	if err != nil {
		mapped := mapProviderError(ctx, err)
		c.logger.ErrorContext(ctx, "Gemini API call failed",
			slog.String("error", err.Error()),
			slog.String("mapped", mapped.Error()))
		return nil, mapped
	}

	result, err := parseResult(resp)
	if err != nil {
		c.logger.WarnContext(ctx, "Gemini response rejected", slog.String("error", err.Error()))
		return nil, err
	}

	c.logger.DebugContext(ctx, "Gemini API call successful")
	return result, nil
}

// parseResult extracts and parses the structured JSON from a completion
// response. The top-level JSON must parse on our side regardless of
// provider-side schema enforcement.
func parseResult(resp *genai.GenerateContentResponse) (*llm.EvaluationResult, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no content generated", llm.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return nil, fmt.Errorf("%w: content blocked by safety filters", llm.ErrInvalidResponse)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("%w: empty response text", llm.ErrInvalidResponse)
	}

	var result llm.EvaluationResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v", llm.ErrInvalidResponse, err)
	}

	if resp.UsageMetadata != nil {
		tokens := int(resp.UsageMetadata.TotalTokenCount)
		result.Tokens = &tokens
	}

	return &result, nil
}

// mapProviderError translates a transport or provider error into the fixed
// taxonomy. Cancellation and deadline expiry always surface as ErrTimeout,
// never as ErrUpstream.
func mapProviderError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		ctx.Err() != nil {
		return fmt.Errorf("%w: %v", llm.ErrTimeout, err)
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
			return fmt.Errorf("%w: %v", llm.ErrAuth, err)
		case apiErr.Code == http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", llm.ErrRateLimit, err)
		case apiErr.Code == http.StatusRequestEntityTooLarge:
			return fmt.Errorf("%w: %v", llm.ErrPayloadTooLarge, err)
		case apiErr.Code == http.StatusBadRequest:
			return fmt.Errorf("%w: %v", llm.ErrValidation, err)
		case apiErr.Code >= http.StatusInternalServerError:
			return fmt.Errorf("%w: %v", llm.ErrUpstream, err)
		}
	}

	return fmt.Errorf("%w: %v", llm.ErrUpstream, err)
}
