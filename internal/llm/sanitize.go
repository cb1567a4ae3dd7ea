package llm

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxPromptFieldLen caps each free-text field interpolated into a prompt.
// This is a prompt-injection and payload-bloat guard, not a security boundary
// against the model itself.
const MaxPromptFieldLen = 5000

var (
	scriptTagPattern    = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	markupTagPattern    = regexp.MustCompile(`(?s)<[^>]*>`)
	javascriptPattern   = regexp.MustCompile(`(?i)javascript\s*:`)
	eventHandlerPattern = regexp.MustCompile(`(?i)\bon\w+\s*=`)
	whitespacePattern   = regexp.MustCompile(`\s+`)
)

// SanitizePromptInput strips script blocks, markup, javascript: URLs and
// inline event-handler patterns from free text, normalizes whitespace, and
// truncates the result to MaxPromptFieldLen. Every user-authored field must
// pass through here before it is interpolated into a prompt.
func SanitizePromptInput(input string) string {
	if input == "" {
		return ""
	}

	// Script bodies go first so their content disappears with the tags.
	cleaned := scriptTagPattern.ReplaceAllString(input, " ")
	cleaned = markupTagPattern.ReplaceAllString(cleaned, " ")
	cleaned = javascriptPattern.ReplaceAllString(cleaned, " ")
	cleaned = eventHandlerPattern.ReplaceAllString(cleaned, " ")

	cleaned = whitespacePattern.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)

	if len(cleaned) > MaxPromptFieldLen {
		cut := MaxPromptFieldLen
		// Back off to a rune boundary so the cut never emits invalid UTF-8.
		for cut > 0 && !utf8.RuneStart(cleaned[cut]) {
			cut--
		}
		cleaned = cleaned[:cut]
	}

	return cleaned
}
