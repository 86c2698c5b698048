// Package httputil provides HTTP response helpers and middleware.
package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// JSON writes a raw JSON response without envelope.
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// Text writes a plain text response.
func Text(w http.ResponseWriter, statusCode int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(statusCode)
	if _, err := w.Write([]byte(text)); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// Message writes a {"message": ...} confirmation response.
func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"message": message})
}

// Error writes a JSON response with {"error": {"message": ...}} envelope.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]interface{}{
		"error": map[string]string{"message": message},
	})
}

// detailedError is implemented by domain validation errors that carry
// a machine-readable kind and per-field details.
type detailedError interface {
	error
	ErrorKind() string
	ErrorDetails() interface{}
}

// ValidationError writes a 400 validation error response.
// Domain validation errors keep their own message, kind and details;
// validator.ValidationErrors are reported field by field; anything else
// is reported as err.Error().
func ValidationError(w http.ResponseWriter, err error) {
	body := map[string]interface{}{
		"message": "validation error",
	}

	var de detailedError
	var validationErrors validator.ValidationErrors
	switch {
	case errors.As(err, &de):
		body["message"] = de.Error()
		body["kind"] = de.ErrorKind()
		body["details"] = de.ErrorDetails()
	case errors.As(err, &validationErrors):
		fieldErrors := make([]map[string]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			fieldErrors = append(fieldErrors, map[string]string{
				"field":   e.Field(),
				"message": e.Tag(),
			})
		}
		body["details"] = fieldErrors
	default:
		body["details"] = err.Error()
	}

	JSON(w, http.StatusBadRequest, map[string]interface{}{"error": body})
}
