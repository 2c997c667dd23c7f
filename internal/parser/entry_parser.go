package parser

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ParsedEntry is a session description with inline metadata pulled out
type ParsedEntry struct {
	Description string
	Group       string
	Rate        *float64
	Errors      []string
}

var (
	groupRegex = regexp.MustCompile(`(?:^|\s)@([^\s@$]+)`)
	rateRegex  = regexp.MustCompile(`(?:^|\s)\$(\d+(?:\.\d+)?)\b`)
)

// ParseEntry extracts metadata from a session description using quick-entry syntax
// Syntax: "Design review @clientA $50"
//
//	@group - group label
//	$rate  - hourly rate
func ParseEntry(input string) ParsedEntry {
	result := ParsedEntry{
		Errors: []string{},
	}

	// Extract group (@name), last one wins
	groupMatches := groupRegex.FindAllStringSubmatch(input, -1)
	if len(groupMatches) > 0 {
		result.Group = groupMatches[len(groupMatches)-1][1]
		input = groupRegex.ReplaceAllString(input, " ")
	}

	// Extract rate ($50, $42.5); "$PATH" is left in the text
	rateMatches := rateRegex.FindAllStringSubmatch(input, -1)
	if len(rateMatches) > 0 {
		raw := rateMatches[len(rateMatches)-1][1]
		rate, err := ParseRate(raw)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
		} else {
			result.Rate = &rate
		}
		input = rateRegex.ReplaceAllString(input, " ")
	}

	// Clean up the description (remove extra spaces)
	result.Description = strings.Join(strings.Fields(input), " ")

	return result
}

// ParseRate parses an hourly rate; negative values are rejected
func ParseRate(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	rate, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, &RateError{Value: raw}
	}
	if rate < 0 {
		return 0, &RateError{Value: raw, Negative: true}
	}
	return rate, nil
}

// RateError reports an unusable hourly rate
type RateError struct {
	Value    string
	Negative bool
}

func (e *RateError) Error() string {
	if e.Negative {
		return fmt.Sprintf("invalid rate %q: must not be negative", e.Value)
	}
	return fmt.Sprintf("invalid rate %q: use a number like 50 or 42.5", e.Value)
}
