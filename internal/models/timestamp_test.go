package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp_ValueUsesStoredLayout(t *testing.T) {
	ts := NewTimestamp(time.Date(2024, 3, 15, 9, 5, 7, 123456789, time.Local))

	v, err := ts.Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15 09:05:07.123456", v)
}

func TestTimestamp_ScanAcceptsMissingFraction(t *testing.T) {
	var ts Timestamp
	require.NoError(t, ts.Scan("2024-03-15 09:05:07"))

	want := time.Date(2024, 3, 15, 9, 5, 7, 0, time.Local)
	assert.True(t, want.Equal(ts.Time), "got %s", ts.Time)
}

func TestTimestamp_ScanSources(t *testing.T) {
	want := time.Date(2024, 3, 15, 9, 5, 7, 500000000, time.Local)

	for name, src := range map[string]any{
		"string": "2024-03-15 09:05:07.500000",
		"bytes":  []byte("2024-03-15 09:05:07.500000"),
		"time":   want,
	} {
		t.Run(name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, ts.Scan(src))
			assert.True(t, want.Equal(ts.Time))
		})
	}
}

func TestTimestamp_ScanRejectsNullAndGarbage(t *testing.T) {
	var ts Timestamp
	assert.Error(t, ts.Scan(nil))
	assert.Error(t, ts.Scan("yesterday"))
	assert.Error(t, ts.Scan(42))
}

func TestNullTimestamp(t *testing.T) {
	var n NullTimestamp
	require.NoError(t, n.Scan(nil))
	assert.False(t, n.Valid)

	v, err := n.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Equal(t, "", n.String())

	require.NoError(t, n.Scan("2024-03-15 10:30:00.000000"))
	assert.True(t, n.Valid)
	assert.Equal(t, "2024-03-15 10:30:00.000000", n.String())
}

func TestNullTimestamp_JSON(t *testing.T) {
	var n NullTimestamp
	b, err := n.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))

	n = NewNullTimestamp(time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC))
	b, err = n.MarshalJSON()
	require.NoError(t, err)

	var back NullTimestamp
	require.NoError(t, back.UnmarshalJSON(b))
	assert.True(t, back.Valid)
	assert.True(t, n.Time.Equal(back.Time))

	require.NoError(t, back.UnmarshalJSON([]byte("null")))
	assert.False(t, back.Valid)
}

func TestSession_IsOpenAndElapsed(t *testing.T) {
	start := time.Date(2024, 3, 15, 9, 0, 0, 0, time.Local)
	s := Session{StartTime: NewTimestamp(start)}

	assert.True(t, s.IsOpen())
	assert.Equal(t, 90*time.Minute, s.Elapsed(start.Add(90*time.Minute)))

	s.EndTime = NewNullTimestamp(start.Add(time.Hour))
	assert.False(t, s.IsOpen())
	assert.Equal(t, time.Hour, s.Elapsed(start.Add(5*time.Hour)))
}
