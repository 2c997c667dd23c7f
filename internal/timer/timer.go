// Package timer implements the start/stop lifecycle of the single running session.
package timer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/balkashynov/whm/internal/db"
	"github.com/balkashynov/whm/internal/models"
)

var (
	// ErrInvalidInput is returned for a blank description or a negative rate
	ErrInvalidInput = errors.New("invalid input")
	// ErrAlreadyRunning is returned by Start while another session is open
	ErrAlreadyRunning = errors.New("a timer is already running")
)

// State of the timer as derived from the store
type State int

const (
	NoOpenSession State = iota
	OneOpenSession
	// ManyOpenSessions only happens when overlap is allowed or the database was edited by hand
	ManyOpenSessions
)

func (s State) String() string {
	switch s {
	case NoOpenSession:
		return "idle"
	case OneOpenSession:
		return "running"
	case ManyOpenSessions:
		return "running (overlapping)"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Store is the part of the session store the controller needs
type Store interface {
	Insert(ctx context.Context, req db.NewSession) (*models.Session, error)
	Latest(ctx context.Context) (*models.Session, error)
	LatestOpen(ctx context.Context) (*models.Session, error)
	OpenSessions(ctx context.Context) ([]models.Session, error)
	UpdateClose(ctx context.Context, id uint, end time.Time, elapsedHours, subtotal float64) (int64, error)
}

// Controller starts and stops sessions
type Controller struct {
	store        Store
	now          func() time.Time
	allowOverlap bool
}

// Option configures a Controller
type Option func(*Controller)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithOverlap lets Start open a session while another one is still running.
// Stop only ever closes the latest one, so the earlier session stays open for good.
func WithOverlap(allow bool) Option {
	return func(c *Controller) {
		c.allowOverlap = allow
	}
}

// New creates a controller over store
func New(store Store, opts ...Option) *Controller {
	c := &Controller{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StartRequest holds the data needed to start a timer
type StartRequest struct {
	Description string
	Group       string
	Rate        *float64
}

// Start opens a new session
func (c *Controller) Start(ctx context.Context, req StartRequest) (*models.Session, error) {
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	if req.Rate != nil && (*req.Rate < 0 || math.IsNaN(*req.Rate) || math.IsInf(*req.Rate, 0)) {
		return nil, fmt.Errorf("%w: rate must be a non-negative number", ErrInvalidInput)
	}

	if !c.allowOverlap {
		open, err := c.store.LatestOpen(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to check running timer: %w", err)
		}
		if open != nil {
			return nil, fmt.Errorf("%w: #%d %q. Stop it first with 'whm end'", ErrAlreadyRunning, open.ID, open.Description)
		}
	}

	session, err := c.store.Insert(ctx, db.NewSession{
		Description: description,
		Group:       req.Group,
		Rate:        req.Rate,
		StartTime:   c.now(),
	})
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Uint("id", session.ID).Str("description", session.Description).Msg("timer started")
	return session, nil
}

// Stop closes the most recently started session and returns it.
// It returns nil, nil when there is nothing to stop: an empty store, or a latest
// session that is already closed (closed fields are never rewritten).
func (c *Controller) Stop(ctx context.Context) (*models.Session, error) {
	log := zerolog.Ctx(ctx)

	session, err := c.store.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find latest session: %w", err)
	}
	if session == nil {
		log.Debug().Msg("stop: no sessions")
		return nil, nil
	}
	if !session.IsOpen() {
		log.Debug().Uint("id", session.ID).Msg("stop: latest session already closed")
		return nil, nil
	}

	end := c.now()
	hours := ElapsedHours(session.StartTime.Time, end)
	subtotal := Subtotal(session.Rate, hours)

	rows, err := c.store.UpdateClose(ctx, session.ID, end, hours, subtotal)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		log.Warn().Uint("id", session.ID).Msg("stop: session vanished before it could be closed")
		return nil, nil
	}

	session.EndTime = models.NewNullTimestamp(end)
	session.ElapsedHours = hours
	session.Subtotal = subtotal

	log.Info().Uint("id", session.ID).Float64("hours", hours).Float64("subtotal", subtotal).Msg("timer stopped")
	return session, nil
}

// Current returns the running session, or nil
func (c *Controller) Current(ctx context.Context) (*models.Session, error) {
	return c.store.LatestOpen(ctx)
}

// Latest returns the most recently started session, open or closed. It is the
// only session Stop can close.
func (c *Controller) Latest(ctx context.Context) (*models.Session, error) {
	return c.store.Latest(ctx)
}

// State reports how many sessions are open
func (c *Controller) State(ctx context.Context) (State, error) {
	open, err := c.store.OpenSessions(ctx)
	if err != nil {
		return NoOpenSession, err
	}
	switch len(open) {
	case 0:
		return NoOpenSession, nil
	case 1:
		return OneOpenSession, nil
	default:
		return ManyOpenSessions, nil
	}
}

// Now returns the controller clock reading
func (c *Controller) Now() time.Time {
	return c.now()
}

// ElapsedHours is the span between start and end in hours, rounded half away
// from zero to 2 decimal places
func ElapsedHours(start, end time.Time) float64 {
	hours := end.Sub(start).Seconds() / 3600
	return math.Round(hours*100) / 100
}

// Subtotal multiplies the already-rounded hours by rate; the product is not rounded
func Subtotal(rate, elapsedHours float64) float64 {
	return rate * elapsedHours
}
