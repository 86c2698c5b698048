package incidents

import (
	"errors"
	"strings"
)

// Repository errors.
var (
	ErrIncidentNotFound   = errors.New("incident not found")
	ErrStorageUnavailable = errors.New("incident storage unavailable")
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation error")

// ValidationKind classifies why a candidate incident was rejected.
type ValidationKind string

// Validation kinds.
const (
	KindMissingField ValidationKind = "missing_field"
	KindInvalidEnum  ValidationKind = "invalid_enum"
)

// FieldIssue describes a single rejected field.
type FieldIssue struct {
	Field   string         `json:"field"`
	Kind    ValidationKind `json:"kind"`
	Message string         `json:"message"`
}

// ValidationError is returned when a candidate incident is rejected.
// Kind is KindMissingField whenever at least one required field is absent.
type ValidationError struct {
	Kind   ValidationKind
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case KindMissingField:
		return "please provide title, description, and severity"
	case KindInvalidEnum:
		return "severity must be " + joinSeverities()
	}
	return ErrValidation.Error()
}

// Unwrap allows errors.Is(err, ErrValidation).
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ErrorKind returns the rejection kind as a string for HTTP responses.
func (e *ValidationError) ErrorKind() string {
	return string(e.Kind)
}

// ErrorDetails returns per-field issues for HTTP responses.
func (e *ValidationError) ErrorDetails() interface{} {
	return e.Issues
}

func joinSeverities() string {
	var b strings.Builder
	for i, s := range severityNames {
		switch {
		case i == 0:
		case i == len(severityNames)-1:
			b.WriteString(", or ")
		default:
			b.WriteString(", ")
		}
		b.WriteString(s)
	}
	return b.String()
}
