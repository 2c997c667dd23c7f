package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// TimestampLayout is the on-disk text form of session timestamps
const TimestampLayout = "2006-01-02 15:04:05.000000"

// parseLayout accepts rows written without the fractional part
const parseLayout = "2006-01-02 15:04:05.999999999"

// Timestamp is a local time persisted as TEXT in TimestampLayout
type Timestamp struct {
	time.Time
}

// NewTimestamp truncates t to the stored microsecond precision
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.Truncate(time.Microsecond)}
}

// Value implements driver.Valuer
func (t Timestamp) Value() (driver.Value, error) {
	return t.Time.Format(TimestampLayout), nil
}

// Scan implements sql.Scanner
func (t *Timestamp) Scan(src any) error {
	parsed, ok, err := scanTime(src)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("timestamp: unexpected NULL")
	}
	t.Time = parsed
	return nil
}

// String formats the timestamp the way it is stored
func (t Timestamp) String() string {
	return t.Time.Format(TimestampLayout)
}

// NullTimestamp is a Timestamp that may be NULL
type NullTimestamp struct {
	Time  time.Time
	Valid bool
}

// NewNullTimestamp returns a valid NullTimestamp at t
func NewNullTimestamp(t time.Time) NullTimestamp {
	return NullTimestamp{Time: t.Truncate(time.Microsecond), Valid: true}
}

// Value implements driver.Valuer
func (n NullTimestamp) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Time.Format(TimestampLayout), nil
}

// Scan implements sql.Scanner
func (n *NullTimestamp) Scan(src any) error {
	parsed, ok, err := scanTime(src)
	if err != nil {
		return err
	}
	n.Time, n.Valid = parsed, ok
	return nil
}

// String formats the timestamp the way it is stored, or "" when NULL
func (n NullTimestamp) String() string {
	if !n.Valid {
		return ""
	}
	return n.Time.Format(TimestampLayout)
}

// MarshalJSON renders NULL as null
func (n NullTimestamp) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Time)
}

// UnmarshalJSON accepts null or an RFC 3339 time
func (n *NullTimestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = NullTimestamp{}
		return nil
	}
	if err := json.Unmarshal(data, &n.Time); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// ParseTimestamp parses the stored text form in local time
func ParseTimestamp(s string) (time.Time, error) {
	return time.ParseInLocation(parseLayout, s, time.Local)
}

func scanTime(src any) (time.Time, bool, error) {
	switch v := src.(type) {
	case nil:
		return time.Time{}, false, nil
	case time.Time:
		return v, true, nil
	case string:
		if v == "" {
			return time.Time{}, false, nil
		}
		t, err := ParseTimestamp(v)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("timestamp: %w", err)
		}
		return t, true, nil
	case []byte:
		return scanTime(string(v))
	default:
		return time.Time{}, false, fmt.Errorf("timestamp: cannot scan %T", src)
	}
}
