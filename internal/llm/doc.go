// Package llm defines the boundary between the application core and external
// language-model providers: a provider-neutral client interface, the fixed
// error taxonomy recorded on failed evaluation requests, and the input
// sanitization applied to free text before it enters a prompt.
package llm
