// Package httputil provides shared HTTP response helpers.
package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/fitmova/platform/internal/logging"
)

// ErrorResponse is the JSON envelope for error replies.
type ErrorResponse struct {
	Error struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details,omitempty"`
		TraceID string                 `json:"trace_id,omitempty"`
	} `json:"error"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteErrorResponse writes the error envelope, attaching the request trace
// ID when present.
func WriteErrorResponse(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]interface{}) {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	if r != nil {
		resp.Error.TraceID = logging.GetTraceID(r.Context())
	}
	WriteJSON(w, status, resp)
}

// Unauthorized writes a 401 with an optional message.
func Unauthorized(w http.ResponseWriter, message string) {
	if message == "" {
		message = "authentication required"
	}
	WriteErrorResponse(w, nil, http.StatusUnauthorized, "UNAUTHORIZED", message, nil)
}
