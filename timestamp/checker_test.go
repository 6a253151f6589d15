package timestamp

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"xdao.co/ledgertrust/clock"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestChecker(tol time.Duration) *Checker {
	return NewChecker(WithClock(clock.NewManual(now)), WithTolerance(tol))
}

func TestNewChecker_Defaults(t *testing.T) {
	ch := NewChecker()
	assert.Equal(t, DefaultTolerance, ch.Tolerance())
	assert.True(t, ch.IsValid(OnlyBefore(time.Now())))

	assert.Zero(t, NewChecker(WithTolerance(-time.Second)).Tolerance())
}

func TestChecker_BeforeBound(t *testing.T) {
	const tol = 30 * time.Second
	ch := newTestChecker(tol)

	tests := []struct {
		name   string
		before time.Time
		ok     bool
	}{
		{"in the future", now.Add(time.Hour), true},
		{"equal to now", now, true},
		{"exactly tolerance ago", now.Add(-tol), true},
		{"one nanosecond past tolerance", now.Add(-tol - time.Nanosecond), false},
		{"long ago", now.Add(-24 * time.Hour), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := OnlyBefore(tt.before)
			assert.Equal(t, tt.ok, ch.IsValid(cmd))
			err := ch.Check(cmd)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrTooLate)
			}
		})
	}
}

func TestChecker_AfterBound(t *testing.T) {
	const tol = 30 * time.Second
	ch := newTestChecker(tol)

	tests := []struct {
		name  string
		after time.Time
		ok    bool
	}{
		{"in the past", now.Add(-time.Hour), true},
		{"equal to now", now, true},
		{"exactly tolerance ahead", now.Add(tol), true},
		{"one nanosecond past tolerance", now.Add(tol + time.Nanosecond), false},
		{"far future", now.Add(24 * time.Hour), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := OnlyAfter(tt.after)
			assert.Equal(t, tt.ok, ch.IsValid(cmd))
			err := ch.Check(cmd)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrTooEarly)
			}
		})
	}
}

func TestChecker_BothBoundsIndependent(t *testing.T) {
	ch := newTestChecker(10 * time.Second)

	inside, err := Between(now.Add(-5*time.Second), now.Add(5*time.Second))
	require.NoError(t, err)
	assert.True(t, ch.IsValid(inside))

	// Each bound is judged on its own side of now only.
	past, err := Between(now.Add(-8*time.Second), now.Add(-7*time.Second))
	require.NoError(t, err)
	assert.True(t, ch.IsValid(past))
	future, err := Between(now.Add(7*time.Second), now.Add(8*time.Second))
	require.NoError(t, err)
	assert.True(t, ch.IsValid(future))

	stale, err := Between(now.Add(-11*time.Second), now.Add(time.Second))
	require.NoError(t, err)
	assert.ErrorIs(t, ch.Check(stale), ErrTooLate)

	early, err := Between(now.Add(-time.Second), now.Add(11*time.Second))
	require.NoError(t, err)
	assert.ErrorIs(t, ch.Check(early), ErrTooEarly)

	wide, err := Between(now.Add(-time.Minute), now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, ch.IsValid(wide))
}

func TestChecker_ZeroTolerance(t *testing.T) {
	ch := newTestChecker(0)
	assert.True(t, ch.IsValid(Around(now, 0)))
	assert.False(t, ch.IsValid(OnlyBefore(now.Add(-time.Nanosecond))))
	assert.False(t, ch.IsValid(OnlyAfter(now.Add(time.Nanosecond))))
}

func TestChecker_FollowsClock(t *testing.T) {
	c := clock.NewManual(now)
	ch := NewChecker(WithClock(c), WithTolerance(time.Second))
	cmd := OnlyBefore(now)

	assert.True(t, ch.IsValid(cmd))
	c.Advance(time.Second)
	assert.True(t, ch.IsValid(cmd))
	c.Advance(time.Nanosecond)
	assert.False(t, ch.IsValid(cmd))
}

func TestChecker_Concurrent(t *testing.T) {
	ch := newTestChecker(DefaultTolerance)
	good := Around(now, time.Second)
	bad := OnlyBefore(now.Add(-time.Hour))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if !ch.IsValid(good) || ch.IsValid(bad) {
					t.Error("inconsistent verdict")
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestChecker_IsValidDoesNotAllocate(t *testing.T) {
	ch := newTestChecker(DefaultTolerance)
	good := Around(now, time.Second)
	bad := OnlyAfter(now.Add(time.Hour))

	allocs := testing.AllocsPerRun(100, func() {
		_ = ch.IsValid(good)
		_ = ch.IsValid(bad)
	})
	assert.Zero(t, allocs)
}

func TestChecker_LogsRejections(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ch := NewChecker(
		WithClock(clock.NewManual(now)),
		WithTolerance(time.Second),
		WithLogger(zap.New(core)),
	)

	assert.True(t, ch.IsValid(OnlyBefore(now)))
	assert.Zero(t, logs.Len())

	assert.False(t, ch.IsValid(OnlyAfter(now.Add(time.Minute))))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "timestamp rejected", entry.Message)
	assert.Equal(t, "after", entry.ContextMap()["bound"])
}

func TestNewCommand(t *testing.T) {
	a, b := now, now.Add(time.Minute)

	_, err := NewCommand(nil, nil)
	assert.ErrorIs(t, err, ErrInvalidCommand)

	_, err = NewCommand(&b, &a)
	assert.ErrorIs(t, err, ErrInvalidCommand, "before later than after")

	_, err = NewCommand(&a, &b)
	require.NoError(t, err)

	cmd, err := NewCommand(&a, &a)
	require.NoError(t, err)
	mid, ok := cmd.Midpoint()
	require.True(t, ok)
	assert.Equal(t, a, mid)

	cmd, err = NewCommand(&a, nil)
	require.NoError(t, err)
	before, ok := cmd.Before()
	assert.True(t, ok)
	assert.Equal(t, a, before)
	_, ok = cmd.After()
	assert.False(t, ok)
	_, ok = cmd.Midpoint()
	assert.False(t, ok)

	// The command keeps its own copy of the bounds.
	a = a.Add(time.Hour)
	before, _ = cmd.Before()
	assert.Equal(t, now, before)
}

func TestAround(t *testing.T) {
	cmd := Around(now, -time.Minute)
	before, _ := cmd.Before()
	after, _ := cmd.After()
	assert.Equal(t, now.Add(-time.Minute), before)
	assert.Equal(t, now.Add(time.Minute), after)
	mid, ok := cmd.Midpoint()
	require.True(t, ok)
	assert.Equal(t, now, mid)
	assert.Equal(t, "[2024-03-01T11:59:00Z, 2024-03-01T12:01:00Z]", cmd.String())
	assert.Equal(t, "[-, 2024-03-01T12:00:00Z]", OnlyAfter(now).String())
}
