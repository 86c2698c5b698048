package httputil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	errMissing = errors.New("thing not found")
	errInvalid = errors.New("thing invalid")
)

type kindError struct{}

func (kindError) Error() string             { return "bad thing" }
func (kindError) Unwrap() error             { return errInvalid }
func (kindError) ErrorKind() string         { return "bad_kind" }
func (kindError) ErrorDetails() interface{} { return []string{"a"} }

func TestHandleError(t *testing.T) {
	mappings := []ErrorMapping{
		{Error: errMissing, Status: http.StatusNotFound},
		{Error: errInvalid, Status: http.StatusBadRequest, Respond: ValidationError},
	}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "mapped error uses its message",
			err:        fmt.Errorf("lookup: %w", errMissing),
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":{"message":"lookup: thing not found"}}`,
		},
		{
			name:       "custom responder",
			err:        kindError{},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":{"message":"bad thing","kind":"bad_kind","details":["a"]}}`,
		},
		{
			name:       "unmapped error is hidden",
			err:        errors.New("pq: connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":{"message":"internal error"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(context.Background(), rec, tt.err, mappings)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestValidationError_PlainError(t *testing.T) {
	rec := httptest.NewRecorder()
	ValidationError(rec, errors.New("title too long"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":{"message":"validation error","details":"title too long"}}`, rec.Body.String())
}
