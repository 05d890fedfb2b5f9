// Package httpapi exposes the HTTP API layer of the service.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/fairyhunter13/amiral-order-service/internal/validation"
)

// jsonError represents a JSON error payload.
type jsonError struct {
	Error   string                  `json:"error"`
	Details string                  `json:"details,omitempty"`
	Fields  []validation.FieldError `json:"fields,omitempty"`
	Result  any                     `json:"dispatch,omitempty"`
}

// WriteJSONError writes a JSON error payload with the given status code.
func WriteJSONError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, jsonError{Error: message, Details: details})
}

// WriteValidationError writes a 422 listing every rejected field.
func WriteValidationError(w http.ResponseWriter, fields []validation.FieldError) {
	writeJSON(w, http.StatusUnprocessableEntity, jsonError{
		Error:   "validation_error",
		Details: "يرجى تصحيح الأخطاء في النموذج",
		Fields:  fields,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
