package gemini

import (
	"github.com/campforge/campforge-api/internal/domain"
	"google.golang.org/genai"
)

// evaluationResponseSchema declares the structured output contract sent with
// every completion request: two bounded integer scores, two bounded feedback
// strings, and 3-10 bounded suggestions. All five fields are required; the
// evaluation writer enforces the same `required` list on our side, since
// provider-side schema enforcement is advisory.
func evaluationResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"lore_score": {
				Type:        genai.TypeInteger,
				Description: "How well the activity fits the group's thematic lore, 1-10.",
				Minimum:     genai.Ptr(float64(domain.MinScore)),
				Maximum:     genai.Ptr(float64(domain.MaxScore)),
			},
			"scouting_values_score": {
				Type:        genai.TypeInteger,
				Description: "How well the activity embodies scouting values, 1-10.",
				Minimum:     genai.Ptr(float64(domain.MinScore)),
				Maximum:     genai.Ptr(float64(domain.MaxScore)),
			},
			"lore_feedback": {
				Type:        genai.TypeString,
				Description: "Feedback on the thematic fit, at most 500 characters.",
				MaxLength:   genai.Ptr(int64(domain.MaxFeedbackLen)),
			},
			"scouting_feedback": {
				Type:        genai.TypeString,
				Description: "Feedback on the scouting values fit, at most 500 characters.",
				MaxLength:   genai.Ptr(int64(domain.MaxFeedbackLen)),
			},
			"suggestions": {
				Type:        genai.TypeArray,
				Description: "Concrete improvement suggestions.",
				MinItems:    genai.Ptr(int64(domain.MinSuggestions)),
				MaxItems:    genai.Ptr(int64(domain.MaxSuggestions)),
				Items: &genai.Schema{
					Type:      genai.TypeString,
					MaxLength: genai.Ptr(int64(domain.MaxSuggestionLen)),
				},
			},
		},
		Required: []string{
			"lore_score",
			"scouting_values_score",
			"lore_feedback",
			"scouting_feedback",
			"suggestions",
		},
	}
}
