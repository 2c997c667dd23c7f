package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/whm/internal/models"
)

func day(d, m, y int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.Local)
}

func TestResolve_Precedence(t *testing.T) {
	t.Run("range and group", func(t *testing.T) {
		f, err := Resolve(Args{Date: "15-03-2024", Date2: "20-03-2024", Group: "client-a"})
		require.NoError(t, err)
		assert.Equal(t, KindRangeGroup, f.Kind)
		assert.Equal(t, day(15, 3, 2024), *f.From)
		assert.Equal(t, day(21, 3, 2024), *f.Until)
		require.NotNil(t, f.Group)
		assert.Equal(t, "client-a", *f.Group)
		assert.Zero(t, f.Limit)
		assert.False(t, f.Desc)
	})

	t.Run("range without group", func(t *testing.T) {
		f, err := Resolve(Args{Date: "15-03-2024", Date2: "20-03-2024"})
		require.NoError(t, err)
		assert.Equal(t, KindRange, f.Kind)
		assert.Nil(t, f.Group)
		assert.Equal(t, day(15, 3, 2024), *f.From)
		assert.Equal(t, day(21, 3, 2024), *f.Until)
	})

	t.Run("single day", func(t *testing.T) {
		f, err := Resolve(Args{Date: "15-03-2024"})
		require.NoError(t, err)
		assert.Equal(t, KindDay, f.Kind)
		assert.Equal(t, day(15, 3, 2024), *f.From)
		assert.Equal(t, day(16, 3, 2024), *f.Until)
	})

	t.Run("single day ignores group", func(t *testing.T) {
		f, err := Resolve(Args{Date: "15-03-2024", Group: "acme"})
		require.NoError(t, err)
		assert.Equal(t, KindDay, f.Kind)
		assert.Nil(t, f.Group)
	})

	t.Run("non-date is a group", func(t *testing.T) {
		f, err := Resolve(Args{Date: "not-a-date"})
		require.NoError(t, err)
		assert.Equal(t, KindDateAsGroup, f.Kind)
		assert.Nil(t, f.From)
		assert.Nil(t, f.Until)
		require.NotNil(t, f.Group)
		assert.Equal(t, "not-a-date", *f.Group)
	})

	t.Run("group only", func(t *testing.T) {
		f, err := Resolve(Args{Group: "acme"})
		require.NoError(t, err)
		assert.Equal(t, KindGroup, f.Kind)
		assert.Equal(t, "acme", *f.Group)
	})

	t.Run("nothing", func(t *testing.T) {
		f, err := Resolve(Args{})
		require.NoError(t, err)
		assert.Equal(t, Filter{Kind: KindLatest, Limit: 1, Desc: true}, f)
	})

	t.Run("last n", func(t *testing.T) {
		f, err := Resolve(Args{Last: 5})
		require.NoError(t, err)
		assert.Equal(t, 5, f.Limit)
		assert.True(t, f.Desc)
	})
}

func TestResolve_InvalidRange(t *testing.T) {
	for _, args := range []Args{
		{Date: "15-03-2024", Date2: "tomorrow"},
		{Date: "clientA", Date2: "20-03-2024"},
		{Date: "15-03-2024", Date2: "31-02-2024", Group: "acme"},
	} {
		_, err := Resolve(args)
		assert.ErrorIs(t, err, ErrInvalidDate)
	}

	_, err := Resolve(Args{Last: -1})
	assert.Error(t, err)
}

func TestFilter_Matches(t *testing.T) {
	f, err := Resolve(Args{Date: "15-03-2024", Date2: "16-03-2024", Group: "acme"})
	require.NoError(t, err)

	at := func(ts time.Time, group string) models.Session {
		return models.Session{StartTime: models.NewTimestamp(ts), Group: group}
	}

	assert.True(t, f.Matches(at(day(15, 3, 2024), "acme")))
	assert.True(t, f.Matches(at(day(16, 3, 2024).Add(23*time.Hour+59*time.Minute), "acme")))
	assert.False(t, f.Matches(at(day(17, 3, 2024), "acme")))
	assert.False(t, f.Matches(at(day(14, 3, 2024).Add(23*time.Hour), "acme")))
	assert.False(t, f.Matches(at(day(15, 3, 2024), "other")))
}

func TestFilter_Describe(t *testing.T) {
	tests := []struct {
		args Args
		want string
	}{
		{Args{}, "Last timer:"},
		{Args{Last: 3}, "Last 3 timers:"},
		{Args{Date: "15-03-2024"}, "Timers on 15-03-2024:"},
		{Args{Date: "15-03-2024", Date2: "20-03-2024"}, "Timers from 15-03-2024 to 20-03-2024:"},
		{Args{Date: "15-03-2024", Date2: "20-03-2024", Group: "a"}, `Timers from 15-03-2024 to 20-03-2024 in group "a":`},
		{Args{Date: "acme"}, `Timers in group "acme":`},
	}
	for _, tt := range tests {
		f, err := Resolve(tt.args)
		require.NoError(t, err)
		assert.Equal(t, tt.want, f.Describe())
	}
}

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Query(ctx context.Context, f Filter) ([]models.Session, error) {
	args := m.Called(ctx, f)
	sessions, _ := args.Get(0).([]models.Session)
	return sessions, args.Error(1)
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	src := &mockSource{}
	want := []models.Session{{ID: 7, Description: "Design review"}}

	src.On("Query", ctx, mock.MatchedBy(func(f Filter) bool {
		return f.Kind == KindDateAsGroup && *f.Group == "clientA"
	})).Return(want, nil).Once()

	result, err := Run(ctx, src, Args{Date: "clientA"})
	require.NoError(t, err)
	assert.Equal(t, want, result.Sessions)
	assert.Equal(t, KindDateAsGroup, result.Filter.Kind)
	src.AssertExpectations(t)
}

func TestRun_Errors(t *testing.T) {
	ctx := context.Background()
	src := &mockSource{}

	_, err := Run(ctx, src, Args{Date: "15-03-2024", Date2: "nope"})
	assert.ErrorIs(t, err, ErrInvalidDate)
	src.AssertNotCalled(t, "Query", mock.Anything, mock.Anything)

	boom := errors.New("disk gone")
	src.On("Query", ctx, mock.Anything).Return(nil, boom).Once()
	_, err = Run(ctx, src, Args{})
	assert.ErrorIs(t, err, boom)
}
