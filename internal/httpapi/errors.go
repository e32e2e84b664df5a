// Package httpapi implements owm-relay's external HTTP surface: the
// /data/3.0/onecall proxy endpoint and its admin/observability siblings
// (spec.md §6).
//
// Grounded on the teacher's proxy package (internal/proxy/errors.go,
// middleware.go, routes.go, server.go); the error envelope shape differs —
// spec.md §6 fixes {success, error, timestamp, requestId} rather than the
// teacher's Anthropic-style {type, error{type,message}} — but the
// WriteError/writeJSON split and request-ID plumbing are kept as-is.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrorEnvelope is the JSON body returned for every non-2xx response, per
// spec.md §6. Its shape never reveals which credential handled (or failed
// to handle) a request.
type ErrorEnvelope struct {
	Success   bool      `json:"success"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"requestId"`
}

// WriteError writes statusCode with an ErrorEnvelope body built from the
// request's context (for requestId).
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	env := ErrorEnvelope{
		Success:   false,
		Error:     message,
		Timestamp: time.Now().UTC(),
		RequestID: GetRequestID(r.Context()),
	}
	writeJSON(w, statusCode, env)
}

// WriteRetryAfter sets the Retry-After header to the duration until the
// next local midnight, per spec.md §7's NoCredentialsAvailable hint.
func WriteRetryAfter(w http.ResponseWriter, until time.Duration) {
	seconds := int(until.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// newRequestID generates a fresh request identifier.
func newRequestID() string {
	return uuid.New().String()
}
