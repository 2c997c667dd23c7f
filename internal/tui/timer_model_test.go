package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/whm/internal/models"
)

func testModel(now time.Time) TimerModel {
	session := &models.Session{
		ID:          4,
		Description: "Design review",
		Group:       "clientA",
		Rate:        50,
		StartTime:   models.NewTimestamp(now.Add(-90 * time.Minute)),
	}
	return NewTimerModel(session, func() time.Time { return now })
}

func press(m TimerModel, keys string) (TimerModel, tea.Cmd) {
	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)}
	next, cmd := m.Update(msg)
	return next.(TimerModel), cmd
}

func TestTimerModel_StopKey(t *testing.T) {
	m, cmd := press(testModel(time.Now()), "s")

	assert.True(t, m.Stopping())
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestTimerModel_LeaveKeepsTimerRunning(t *testing.T) {
	m, cmd := press(testModel(time.Now()), "q")

	assert.False(t, m.Stopping())
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())

	next, _ := testModel(time.Now()).Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, next.(TimerModel).Stopping())
}

func TestTimerModel_TickUpdatesElapsed(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.Local)
	m := testModel(now)
	assert.Equal(t, 90*time.Minute, m.elapsed)

	next, cmd := m.Update(timerTickMsg(now))
	assert.NotNil(t, cmd, "clock keeps ticking while running")
	assert.Equal(t, 90*time.Minute, next.(TimerModel).elapsed)

	stopped, _ := press(m, "s")
	_, cmd = stopped.Update(timerTickMsg(now))
	assert.Nil(t, cmd)
}

func TestTimerModel_View(t *testing.T) {
	m := testModel(time.Now())
	assert.Equal(t, "Loading...", m.View())

	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	view := next.(TimerModel).View()
	assert.Contains(t, view, "TRACKING TIME")
	assert.Contains(t, view, "#4")
	assert.Contains(t, view, "clientA")
	assert.Contains(t, view, "stop & save")

	narrow, _ := m.Update(tea.WindowSizeMsg{Width: 60, Height: 30})
	assert.NotContains(t, narrow.(TimerModel).View(), "Running total")
}

func TestRenderBigClock(t *testing.T) {
	short := renderBigClock(5*time.Minute + 7*time.Second)
	long := renderBigClock(2*time.Hour + 5*time.Minute)

	assert.Len(t, strings.Split(short, "\n"), 5)
	assert.Greater(t, len(long), len(short), "hours add a field")
	assert.Equal(t, renderBigClock(0), renderBigClock(-time.Second))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Design...", truncate("Design review", 9))
	assert.Equal(t, "Design review", truncate("Design review", 3))
}

func TestTimerModel_StopDisabled(t *testing.T) {
	m := testModel(time.Now()).withStopDisabled()

	m, cmd := press(m, "s")
	assert.False(t, m.Stopping())
	assert.Nil(t, cmd)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	view := next.(TimerModel).View()
	assert.Contains(t, view, "cannot be stopped from here")
	assert.NotContains(t, view, "stop & save")

	m, cmd = press(m, "q")
	assert.False(t, m.Stopping())
	require.NotNil(t, cmd)
}

// fakeStopper returns a fixed latest session
type fakeStopper struct {
	latest *models.Session
	err    error
}

func (f fakeStopper) Stop(context.Context) (*models.Session, error) { return nil, nil }

func (f fakeStopper) Latest(context.Context) (*models.Session, error) { return f.latest, f.err }

func (f fakeStopper) Now() time.Time { return time.Now() }

func TestCanStop(t *testing.T) {
	ctx := context.Background()
	shown := &models.Session{ID: 1}

	ok, err := canStop(ctx, fakeStopper{latest: &models.Session{ID: 1}}, shown)
	require.NoError(t, err)
	assert.True(t, ok)

	// A later session was started and closed while this one stayed open
	ok, err = canStop(ctx, fakeStopper{latest: &models.Session{ID: 2}}, shown)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = canStop(ctx, fakeStopper{}, shown)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = canStop(ctx, fakeStopper{err: errors.New("disk gone")}, shown)
	assert.Error(t, err)
}
