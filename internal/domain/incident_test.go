package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverity_IsValid(t *testing.T) {
	tests := []struct {
		severity Severity
		expected bool
	}{
		{SeverityLow, true},
		{SeverityMedium, true},
		{SeverityHigh, true},
		{"", false},
		{"high", false},
		{"Critical", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.severity.IsValid())
		})
	}
}

func TestParseSeverity(t *testing.T) {
	s, err := ParseSeverity("Medium")
	require.NoError(t, err)
	assert.Equal(t, SeverityMedium, s)

	_, err = ParseSeverity("MEDIUM")
	assert.Error(t, err)
}

func TestSeverities_AllValid(t *testing.T) {
	require.Len(t, Severities, 3)
	for _, s := range Severities {
		assert.True(t, s.IsValid(), s.String())
	}
}
