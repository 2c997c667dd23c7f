// Package query resolves list arguments into a session filter.
//
// Arguments are matched against a fixed precedence, first match wins:
//
//  1. date, date2 and group: inclusive day range and group
//  2. date and date2: inclusive day range
//  3. date that parses as dd-mm-yyyy: that single day
//  4. date that does not parse: the value is used as a group name
//  5. group alone: group
//  6. nothing: the most recently started session(s)
//
// Rule 4 keeps the historical "whm list clientA" shorthand working. It means a
// mistyped date silently becomes a group lookup that matches nothing.
package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/balkashynov/whm/internal/models"
	"github.com/balkashynov/whm/internal/parser"
)

// ErrInvalidDate is returned when a range bound is not a dd-mm-yyyy date
var ErrInvalidDate = errors.New("invalid date")

// Kind identifies the precedence rule that produced a Filter
type Kind int

const (
	KindLatest Kind = iota
	KindRangeGroup
	KindRange
	KindDay
	KindDateAsGroup
	KindGroup
)

func (k Kind) String() string {
	switch k {
	case KindLatest:
		return "latest"
	case KindRangeGroup:
		return "range+group"
	case KindRange:
		return "range"
	case KindDay:
		return "day"
	case KindDateAsGroup:
		return "date-as-group"
	case KindGroup:
		return "group"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Args holds the raw list arguments as typed by the user
type Args struct {
	Date  string
	Date2 string
	Group string
	Last  int // rows returned when no filter is given; 0 means 1
}

// Filter is a structured predicate evaluated by the session store
type Filter struct {
	Kind  Kind
	From  *time.Time // inclusive lower bound on start time
	Until *time.Time // exclusive upper bound on start time
	Group *string
	Limit int  // 0 means unlimited
	Desc  bool // newest first
}

// Matches reports whether s satisfies the predicate part of the filter (not Limit)
func (f Filter) Matches(s models.Session) bool {
	start := s.StartTime.Time
	if f.From != nil && start.Before(*f.From) {
		return false
	}
	if f.Until != nil && !start.Before(*f.Until) {
		return false
	}
	if f.Group != nil && s.Group != *f.Group {
		return false
	}
	return true
}

// Resolve turns Args into a Filter following the package precedence rules
func Resolve(args Args) (Filter, error) {
	date := strings.TrimSpace(args.Date)
	date2 := strings.TrimSpace(args.Date2)
	group := strings.TrimSpace(args.Group)

	if args.Last < 0 {
		return Filter{}, fmt.Errorf("last must not be negative, got %d", args.Last)
	}

	switch {
	case date != "" && date2 != "" && group != "":
		f, err := dayRange(date, date2)
		if err != nil {
			return Filter{}, err
		}
		f.Kind = KindRangeGroup
		f.Group = &group
		return f, nil

	case date != "" && date2 != "":
		f, err := dayRange(date, date2)
		if err != nil {
			return Filter{}, err
		}
		f.Kind = KindRange
		return f, nil

	case date != "":
		day, err := parser.ParseDay(date)
		if err != nil {
			return Filter{Kind: KindDateAsGroup, Group: &date}, nil
		}
		next := day.AddDate(0, 0, 1)
		return Filter{Kind: KindDay, From: &day, Until: &next}, nil

	case group != "":
		return Filter{Kind: KindGroup, Group: &group}, nil
	}

	limit := args.Last
	if limit == 0 {
		limit = 1
	}
	return Filter{Kind: KindLatest, Limit: limit, Desc: true}, nil
}

func dayRange(from, to string) (Filter, error) {
	start, err := parser.ParseDay(from)
	if err != nil {
		return Filter{}, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	end, err := parser.ParseDay(to)
	if err != nil {
		return Filter{}, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	until := end.AddDate(0, 0, 1)
	return Filter{From: &start, Until: &until}, nil
}

// Source is the read side of the session store
type Source interface {
	Query(ctx context.Context, f Filter) ([]models.Session, error)
}

// Result carries the resolved filter alongside the matching sessions
type Result struct {
	Filter   Filter
	Sessions []models.Session
}

// Run resolves args and evaluates the filter against src
func Run(ctx context.Context, src Source, args Args) (Result, error) {
	f, err := Resolve(args)
	if err != nil {
		return Result{}, err
	}
	sessions, err := src.Query(ctx, f)
	if err != nil {
		return Result{}, fmt.Errorf("failed to query sessions: %w", err)
	}
	return Result{Filter: f, Sessions: sessions}, nil
}

// Describe returns a one-line caption for a result set
func (f Filter) Describe() string {
	switch f.Kind {
	case KindLatest:
		if f.Limit > 1 {
			return fmt.Sprintf("Last %d timers:", f.Limit)
		}
		return "Last timer:"
	case KindRangeGroup:
		return fmt.Sprintf("Timers from %s to %s in group %q:", parser.FormatDay(*f.From), lastDay(f), *f.Group)
	case KindRange:
		return fmt.Sprintf("Timers from %s to %s:", parser.FormatDay(*f.From), lastDay(f))
	case KindDay:
		return fmt.Sprintf("Timers on %s:", parser.FormatDay(*f.From))
	case KindDateAsGroup, KindGroup:
		return fmt.Sprintf("Timers in group %q:", *f.Group)
	}
	return ""
}

func lastDay(f Filter) string {
	return parser.FormatDay(f.Until.AddDate(0, 0, -1))
}
