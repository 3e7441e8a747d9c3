package common

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the canonical error payload returned by the API.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Fields  any    `json:"fields,omitempty"`
}

// JSON writes v to the response as JSON with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Data wraps v in the standard {"data": ...} envelope.
func Data(w http.ResponseWriter, status int, v any) {
	JSON(w, status, map[string]any{"data": v})
}

// JSONError renders an error response in the canonical shape. fields carries
// per-field validation messages when the error is a local input problem.
func JSONError(w http.ResponseWriter, status int, code, message string, fields any) {
	JSON(w, status, map[string]any{"error": ErrorBody{
		Code:    code,
		Message: message,
		Fields:  fields,
	}})
}
