// Package domain contains the core data types of the incident log.
package domain

import (
	"fmt"
	"time"
)

// Severity represents the impact classification of an incident.
type Severity string

// Severity levels.
const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// Severities lists every valid severity in ascending order of impact.
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh}

// IsValid checks if the severity is one of the known levels.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (s Severity) String() string {
	return string(s)
}

// ParseSeverity converts a raw value into a Severity.
// Matching is case-sensitive: "high" is not a valid severity.
func ParseSeverity(raw string) (Severity, error) {
	s := Severity(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("unknown severity %q", raw)
	}
	return s, nil
}

// Incident is a single recorded AI-safety event.
type Incident struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Severity    Severity  `json:"severity"`
	ReportedAt  time.Time `json:"reported_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
