// Package gemini implements the llm.Client interface using Google's Gemini
// API with JSON-schema-constrained structured output.
package gemini
