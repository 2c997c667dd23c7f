package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntry(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		description string
		group       string
		rate        *float64
	}{
		{"plain", "Design review", "Design review", "", nil},
		{"group", "Design review @clientA", "Design review", "clientA", nil},
		{"rate", "Design review $50", "Design review", "", ptr(50)},
		{"both anywhere", "@acme Fix $42.5 invoices", "Fix invoices", "acme", ptr(42.5)},
		{"last group wins", "Call @a @b", "Call", "b", nil},
		{"email is not a group", "Mail bob@example.com", "Mail bob@example.com", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseEntry(tt.input)
			assert.Empty(t, got.Errors)
			assert.Equal(t, tt.description, got.Description)
			assert.Equal(t, tt.group, got.Group)
			if tt.rate == nil {
				assert.Nil(t, got.Rate)
			} else {
				require.NotNil(t, got.Rate)
				assert.Equal(t, *tt.rate, *got.Rate)
			}
		})
	}
}

func TestParseEntry_NonNumericDollarStaysInText(t *testing.T) {
	for _, input := range []string{
		"Fix $PATH handling",
		"Work $lots",
		"Bump $50x limit",
		"Refund $-5",
	} {
		t.Run(input, func(t *testing.T) {
			got := ParseEntry(input)
			assert.Empty(t, got.Errors)
			assert.Nil(t, got.Rate)
			assert.Equal(t, input, got.Description)
		})
	}
}

func TestParseEntry_RateNextToWords(t *testing.T) {
	got := ParseEntry("Fix $PATH handling $45")
	require.NotNil(t, got.Rate)
	assert.Equal(t, 45.0, *got.Rate)
	assert.Equal(t, "Fix $PATH handling", got.Description)
}

func TestParseRate(t *testing.T) {
	rate, err := ParseRate(" 12.75 ")
	require.NoError(t, err)
	assert.Equal(t, 12.75, rate)

	for _, raw := range []string{"", "abc", "-1", "NaN", "Inf"} {
		_, err := ParseRate(raw)
		var rateErr *RateError
		assert.ErrorAs(t, err, &rateErr, raw)
	}
}

func ptr(f float64) *float64 {
	return &f
}
