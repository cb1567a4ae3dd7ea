package evaluation

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/campforge/campforge-api/internal/domain"
	"github.com/campforge/campforge-api/internal/llm"
)

// promptTemplate frames the activity for the evaluator. Every interpolated
// field has been through llm.SanitizePromptInput first.
const promptTemplate = `You are an experienced scout leader reviewing a planned camp activity.

Evaluate the activity on two axes, each scored from 1 (poor) to 10 (excellent):
1. lore_score: how well the activity fits the group's narrative theme.
2. scouting_values_score: how well the activity embodies scouting values such as teamwork, outdoor skills, responsibility and inclusion.

Group theme: {{.Theme}}

Activity title: {{.Title}}
Description: {{.Description}}
{{- if .Materials}}
Materials: {{.Materials}}
{{- end}}
{{- if .Location}}
Location: {{.Location}}
{{- end}}
{{- if .DurationMinutes}}
Duration: {{.DurationMinutes}} minutes
{{- end}}

Respond with JSON containing lore_score, scouting_values_score, lore_feedback, scouting_feedback and a suggestions array of 3 to 10 concrete improvements. Keep each feedback under 500 characters and each suggestion under 300 characters.`

var promptTmpl = template.Must(template.New("evaluation_prompt").Parse(promptTemplate))

// promptData carries the sanitized fields interpolated into the template.
type promptData struct {
	Theme           string
	Title           string
	Description     string
	Materials       string
	Location        string
	DurationMinutes int
}

// BuildPrompt renders the evaluation prompt for an activity. All free-text
// fields are sanitized before interpolation so markup or script fragments in
// user content never reach the provider verbatim.
func BuildPrompt(activity *domain.Activity, group *domain.Group) (string, error) {
	if activity == nil || group == nil {
		return "", fmt.Errorf("activity and group are required")
	}

	data := promptData{
		Theme:           llm.SanitizePromptInput(group.Theme),
		Title:           llm.SanitizePromptInput(activity.Title),
		Description:     llm.SanitizePromptInput(activity.Description),
		Materials:       llm.SanitizePromptInput(activity.Materials),
		Location:        llm.SanitizePromptInput(activity.Location),
		DurationMinutes: activity.DurationMinutes,
	}

	var sb strings.Builder
	if err := promptTmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}

	return sb.String(), nil
}
