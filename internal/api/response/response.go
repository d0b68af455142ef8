// Package response provides utilities for sending consistent HTTP responses.
package response

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorBody is the structured error payload returned by the API. Details is
// optional and carries additional context, such as the shortfall on a
// rejected order.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// JSON sends a JSON response with the given status code. If data is nil only
// the status code is sent. Encoding errors are logged, not fatal.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("failed to encode JSON response: %v", err)
		}
	}
}

// Error sends a structured error response. The message names which
// precondition or operation failed; details carries the specifics.
//
// Example:
//
//	response.Error(w, http.StatusConflict, "insufficient funds", err.Error())
func Error(w http.ResponseWriter, status int, message, details string) {
	JSON(w, status, ErrorBody{Error: message, Details: details})
}
