package common

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the canonical error payload returned by the API.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON writes v to the response writer as JSON with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// JSONError renders an error response using the canonical error shape.
func JSONError(w http.ResponseWriter, status int, code, message string, details any) {
	JSON(w, status, map[string]any{
		"error": ErrorBody{Code: code, Message: message, Details: details},
	})
}

// Ack writes the short acknowledgment body webhook callers expect. The gateway
// stops retrying once it sees a 2xx, so every ack goes out as 200.
func Ack(w http.ResponseWriter, status string) {
	JSON(w, http.StatusOK, map[string]string{"status": status})
}
