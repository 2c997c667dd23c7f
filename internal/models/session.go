package models

import "time"

// DefaultGroup is stored when a session is started without a group
const DefaultGroup = "NA"

// Session represents one tracked unit of billable work
type Session struct {
	ID          uint    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Description string  `gorm:"column:description;type:varchar;not null" json:"description"`
	Group       string  `gorm:"column:group;type:varchar" json:"group"`
	Rate        float64 `gorm:"column:hour;type:float" json:"rate"` // hourly rate

	StartTime    Timestamp     `gorm:"column:date;type:text;index" json:"start_time"`
	EndTime      NullTimestamp `gorm:"column:date2;type:text" json:"end_time"` // null while running
	ElapsedHours float64       `gorm:"column:total_hours;type:float" json:"elapsed_hours"`
	Subtotal     float64       `gorm:"column:subtotal;type:float" json:"subtotal"`
}

// TableName keeps the table name used by existing whm databases
func (Session) TableName() string {
	return "whm"
}

// IsOpen reports whether the session is still running
func (s Session) IsOpen() bool {
	return !s.EndTime.Valid
}

// Elapsed returns the wall-clock time spent so far, or the recorded span once closed
func (s Session) Elapsed(now time.Time) time.Duration {
	if s.EndTime.Valid {
		return s.EndTime.Time.Sub(s.StartTime.Time)
	}
	return now.Sub(s.StartTime.Time)
}
