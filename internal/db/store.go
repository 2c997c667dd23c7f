package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/balkashynov/whm/internal/models"
	"github.com/balkashynov/whm/internal/query"
)

// ErrNotFound is returned when a session id does not exist
var ErrNotFound = errors.New("session not found")

var (
	colID    = clause.Column{Name: "id"}
	colStart = clause.Column{Name: "date"}
	colEnd   = clause.Column{Name: "date2"}
	colGroup = clause.Column{Name: "group"}
)

// Store is the durable, append-only collection of sessions
type Store struct {
	db           *gorm.DB
	defaultGroup string
}

// NewStore wraps an open connection. An empty defaultGroup falls back to models.DefaultGroup.
func NewStore(conn *gorm.DB, defaultGroup string) *Store {
	if strings.TrimSpace(defaultGroup) == "" {
		defaultGroup = models.DefaultGroup
	}
	return &Store{db: conn, defaultGroup: defaultGroup}
}

// NewSession holds the data needed to start a session
type NewSession struct {
	Description string
	Group       string    // blank means the default group
	Rate        *float64  // nil means inherit from the latest session
	StartTime   time.Time // zero means now
}

// Insert creates an open session. Without an explicit rate it inherits the rate of
// the session with the latest start time, open or closed, or 0 when the store is empty.
func (s *Store) Insert(ctx context.Context, req NewSession) (*models.Session, error) {
	start := req.StartTime
	if start.IsZero() {
		start = time.Now()
	}
	group := strings.TrimSpace(req.Group)
	if group == "" {
		group = s.defaultGroup
	}

	session := models.Session{
		Description: req.Description,
		Group:       group,
		StartTime:   models.NewTimestamp(start),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.Rate != nil {
			session.Rate = *req.Rate
		} else {
			latest, err := latest(tx, false)
			if err != nil {
				return err
			}
			if latest != nil {
				session.Rate = latest.Rate
			}
		}
		return tx.Create(&session).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert session: %w", err)
	}

	zerolog.Ctx(ctx).Debug().
		Uint("id", session.ID).
		Str("group", session.Group).
		Float64("rate", session.Rate).
		Msg("session inserted")

	return &session, nil
}

// Latest returns the session with the greatest start time, or nil when the store is empty
func (s *Store) Latest(ctx context.Context) (*models.Session, error) {
	return latest(s.db.WithContext(ctx), false)
}

// LatestOpen returns the most recently started session that is still running, or nil
func (s *Store) LatestOpen(ctx context.Context) (*models.Session, error) {
	return latest(s.db.WithContext(ctx), true)
}

func latest(tx *gorm.DB, openOnly bool) (*models.Session, error) {
	var sessions []models.Session

	q := tx.Model(&models.Session{})
	if openOnly {
		q = q.Where(clause.Eq{Column: colEnd, Value: nil})
	}
	err := q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: colStart, Desc: true},
		{Column: colID, Desc: true},
	}}).Limit(1).Find(&sessions).Error
	if err != nil {
		return nil, err
	}

	if len(sessions) == 0 {
		return nil, nil // Empty store is not an error
	}
	return &sessions[0], nil
}

// OpenSessions returns every running session, newest first
func (s *Store) OpenSessions(ctx context.Context) ([]models.Session, error) {
	var sessions []models.Session

	err := s.db.WithContext(ctx).
		Where(clause.Eq{Column: colEnd, Value: nil}).
		Order(clause.OrderBy{Columns: []clause.OrderByColumn{
			{Column: colStart, Desc: true},
			{Column: colID, Desc: true},
		}}).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}

	return sessions, nil
}

// UpdateClose records the end of a session. It returns the number of rows changed,
// which is 0 for an unknown id.
func (s *Store) UpdateClose(ctx context.Context, id uint, end time.Time, elapsedHours, subtotal float64) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Session{}).
		Where(clause.Eq{Column: colID, Value: id}).
		Updates(map[string]any{
			colEnd.Name:   models.NewNullTimestamp(end),
			"total_hours": elapsedHours,
			"subtotal":    subtotal,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to close session #%d: %w", id, res.Error)
	}

	zerolog.Ctx(ctx).Debug().
		Uint("id", id).
		Int64("rows", res.RowsAffected).
		Float64("hours", elapsedHours).
		Msg("session closed")

	return res.RowsAffected, nil
}

// Get retrieves a session by id
func (s *Store) Get(ctx context.Context, id uint) (*models.Session, error) {
	var session models.Session

	err := s.db.WithContext(ctx).Where(clause.Eq{Column: colID, Value: id}).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: #%d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	return &session, nil
}

// Query evaluates a structured filter. Every value is bound as a parameter.
func (s *Store) Query(ctx context.Context, f query.Filter) ([]models.Session, error) {
	var sessions []models.Session

	q := s.db.WithContext(ctx).Model(&models.Session{})
	if f.From != nil {
		q = q.Where(clause.Gte{Column: colStart, Value: models.NewTimestamp(*f.From)})
	}
	if f.Until != nil {
		q = q.Where(clause.Lt{Column: colStart, Value: models.NewTimestamp(*f.Until)})
	}
	if f.Group != nil {
		q = q.Where(clause.Eq{Column: colGroup, Value: *f.Group})
	}
	q = q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: colStart, Desc: f.Desc},
		{Column: colID, Desc: f.Desc},
	}})
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	if err := q.Find(&sessions).Error; err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Stringer("kind", f.Kind).
		Int("rows", len(sessions)).
		Msg("sessions queried")

	return sessions, nil
}

// All returns every session in insertion order
func (s *Store) All(ctx context.Context) ([]models.Session, error) {
	var sessions []models.Session

	err := s.db.WithContext(ctx).
		Order(clause.OrderByColumn{Column: colID}).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}

	return sessions, nil
}

// Import inserts sessions verbatim in one transaction. With keepIDs false the
// store assigns fresh ids; otherwise an id collision aborts the whole import.
func (s *Store) Import(ctx context.Context, sessions []models.Session, keepIDs bool) (int, error) {
	if len(sessions) == 0 {
		return 0, nil
	}

	rows := make([]models.Session, len(sessions))
	copy(rows, sessions)
	if !keepIDs {
		for i := range rows {
			rows[i].ID = 0
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range rows {
			if strings.TrimSpace(rows[i].Group) == "" {
				rows[i].Group = s.defaultGroup
			}
			if err := tx.Create(&rows[i]).Error; err != nil {
				return fmt.Errorf("row %d (%q): %w", i+1, rows[i].Description, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to import sessions: %w", err)
	}

	return len(rows), nil
}
