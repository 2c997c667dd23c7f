package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DayLayout is the dd-mm-yyyy form accepted on the command line
const DayLayout = "02-01-2006"

var dayRegex = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`)

// ParseDay parses a dd-mm-yyyy calendar date and returns local midnight of that day.
// Single-digit day and month are accepted ("5-3-2024").
func ParseDay(input string) (time.Time, error) {
	input = strings.TrimSpace(input)
	matches := dayRegex.FindStringSubmatch(input)
	if len(matches) != 4 {
		return time.Time{}, fmt.Errorf("invalid date %q. Use: dd-mm-yyyy", input)
	}

	day, _ := strconv.Atoi(matches[1])
	month, _ := strconv.Atoi(matches[2])
	year, _ := strconv.Atoi(matches[3])

	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("invalid date %q: month must be between 1 and 12", input)
	}
	if day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("invalid date %q: day must be between 1 and 31", input)
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)

	// time.Date normalises 31-02 into March, reject that
	if t.Day() != day || t.Month() != time.Month(month) || t.Year() != year {
		return time.Time{}, fmt.Errorf("invalid date %q: no such day", input)
	}

	return t, nil
}

// IsDay reports whether input is a valid dd-mm-yyyy date
func IsDay(input string) bool {
	_, err := ParseDay(input)
	return err == nil
}

// StartOfDay truncates t to local midnight
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// FormatDay renders t as dd-mm-yyyy
func FormatDay(t time.Time) string {
	return t.Format(DayLayout)
}
