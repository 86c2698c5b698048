package incidents

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/bissquit/incident-log/internal/domain"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"
)

// CreateIncidentInput holds data for creating an incident.
type CreateIncidentInput struct {
	Title       string
	Description string
	Severity    string
	// ReportedAt overrides the report timestamp. Only the seeder sets it;
	// the HTTP API never accepts it from callers.
	ReportedAt *time.Time
}

// candidate is the validated shape of CreateIncidentInput.
type candidate struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Severity    string `json:"severity" validate:"required,severity"`
}

var (
	validate      = newValidator()
	severityNames = func() []string {
		names := make([]string, 0, len(domain.Severities))
		for _, s := range domain.Severities {
			names = append(names, s.String())
		}
		return names
	}()
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("severity", func(fl validator.FieldLevel) bool {
		return domain.Severity(fl.Field().String()).IsValid()
	})
	return v
}

// Normalize trims surrounding whitespace and applies Unicode NFC
// normalization to title and description. Severity is left untouched: it
// must match one of the enum values exactly.
func Normalize(input CreateIncidentInput) CreateIncidentInput {
	input.Title = norm.NFC.String(strings.TrimSpace(input.Title))
	input.Description = norm.NFC.String(strings.TrimSpace(input.Description))
	return input
}

// Validate checks a candidate incident. It returns nil when the input is
// acceptable and a *ValidationError otherwise. It has no side effects.
func Validate(input CreateIncidentInput) error {
	input = Normalize(input)

	// A whitespace-only severity counts as missing; anything else is
	// compared verbatim, so " High " is not a severity.
	severity := input.Severity
	if strings.TrimSpace(severity) == "" {
		severity = ""
	}

	err := validate.Struct(candidate{
		Title:       input.Title,
		Description: input.Description,
		Severity:    severity,
	})
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		// Only reachable on a programming error in candidate.
		return &ValidationError{Kind: KindMissingField}
	}

	verr := &ValidationError{Kind: KindInvalidEnum}
	for _, fe := range fieldErrs {
		issue := FieldIssue{Field: fe.Field()}
		switch fe.Tag() {
		case "required":
			issue.Kind = KindMissingField
			issue.Message = fe.Field() + " is required"
			verr.Kind = KindMissingField
		default:
			issue.Kind = KindInvalidEnum
			issue.Message = fe.Field() + " must be one of " + strings.Join(severityNames, ", ")
		}
		verr.Issues = append(verr.Issues, issue)
	}

	return verr
}
