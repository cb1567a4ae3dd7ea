// Package shared holds response and context helpers used by every handler.
package shared

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/campforge/campforge-api/internal/domain"
)

// ErrorResponse is the standard error body. Code carries the machine-readable
// error code from the fixed taxonomy; clients branch on it, not on the
// message.
type ErrorResponse struct {
	Error   string           `json:"error"`
	Code    domain.ErrorCode `json:"code"`
	TraceID string           `json:"trace_id,omitempty"`
}

// RespondWithJSON writes a JSON response with the given status code and data.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// RespondWithError writes a JSON error response with the given status,
// message and taxonomy code. The trace ID from the request context is
// included when present.
func RespondWithError(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	message string,
	code domain.ErrorCode,
) {
	traceID := GetTraceID(r.Context())

	logLevel := slog.LevelDebug
	if status >= http.StatusInternalServerError {
		logLevel = slog.LevelError
	} else if status == http.StatusTooManyRequests {
		logLevel = slog.LevelWarn
	}

	slog.LogAttrs(r.Context(), logLevel, "API error response",
		slog.Int("status_code", status),
		slog.String("code", string(code)),
		slog.String("message", message),
		slog.String("trace_id", traceID),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method))

	RespondWithJSON(w, r, status, ErrorResponse{
		Error:   message,
		Code:    code,
		TraceID: traceID,
	})
}
