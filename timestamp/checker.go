// Package timestamp validates the time window a transaction command claims
// against a trusted clock.
package timestamp

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"xdao.co/ledgertrust/clock"
)

// DefaultTolerance is how far a claimed bound may stray from the checker's
// clock before the command is rejected.
const DefaultTolerance = 30 * time.Second

var (
	// ErrInvalidCommand reports a window with no bounds or with before later
	// than after.
	ErrInvalidCommand = errors.New("timestamp: invalid command")
	// ErrTooLate means more than the tolerance has elapsed since Before.
	ErrTooLate = errors.New("timestamp: before bound is too far in the past")
	// ErrTooEarly means After lies more than the tolerance in the future.
	ErrTooEarly = errors.New("timestamp: after bound is too far in the future")
)

// Checker decides whether a command's window is acceptable "now".
// It holds only immutable configuration and is safe for concurrent use.
type Checker struct {
	clock     clock.Clock
	tolerance time.Duration
	logger    *zap.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithClock sets the trusted clock. A nil clock is ignored.
func WithClock(c clock.Clock) Option {
	return func(ch *Checker) {
		if c != nil {
			ch.clock = c
		}
	}
}

// WithTolerance sets the allowed drift. Negative values are clamped to zero.
func WithTolerance(d time.Duration) Option {
	return func(ch *Checker) {
		if d < 0 {
			d = 0
		}
		ch.tolerance = d
	}
}

// WithLogger sets the logger for rejections, written at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(ch *Checker) {
		if l != nil {
			ch.logger = l
		}
	}
}

// NewChecker returns a checker on the system clock with DefaultTolerance,
// adjusted by opts.
func NewChecker(opts ...Option) *Checker {
	ch := &Checker{
		clock:     clock.System(),
		tolerance: DefaultTolerance,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ch)
	}
	return ch
}

// Tolerance returns the allowed drift.
func (ch *Checker) Tolerance() time.Duration { return ch.tolerance }

// IsValid reports whether cmd is acceptable at the clock's current instant.
// It reads the clock once and does not allocate.
func (ch *Checker) IsValid(cmd Command) bool {
	_, v := ch.evaluate(cmd)
	return v.ok()
}

// Check is IsValid with the reason for a rejection: ErrTooLate when
// now - Before exceeds the tolerance, ErrTooEarly when After - now does.
func (ch *Checker) Check(cmd Command) error {
	now, v := ch.evaluate(cmd)
	switch v.side {
	case sideBefore:
		return fmt.Errorf("%w: %s elapsed since %s at %s, tolerance %s",
			ErrTooLate, v.gap, v.bound.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano), ch.tolerance)
	case sideAfter:
		return fmt.Errorf("%w: %s is %s ahead of %s, tolerance %s",
			ErrTooEarly, v.bound.Format(time.RFC3339Nano), v.gap, now.Format(time.RFC3339Nano), ch.tolerance)
	default:
		return nil
	}
}

type side int

const (
	sideNone side = iota
	sideBefore
	sideAfter
)

type violation struct {
	side  side
	bound time.Time
	gap   time.Duration
}

func (v violation) ok() bool { return v.side == sideNone }

// evaluate applies both bounds independently with a strict comparison, so a
// gap exactly equal to the tolerance passes. The command's own invariants
// are trusted and not re-validated.
func (ch *Checker) evaluate(cmd Command) (time.Time, violation) {
	now := ch.clock.Now()

	if before, ok := cmd.Before(); ok {
		if gap := now.Sub(before); gap > ch.tolerance {
			v := violation{side: sideBefore, bound: before, gap: gap}
			ch.logRejection(now, v)
			return now, v
		}
	}
	if after, ok := cmd.After(); ok {
		if gap := after.Sub(now); gap > ch.tolerance {
			v := violation{side: sideAfter, bound: after, gap: gap}
			ch.logRejection(now, v)
			return now, v
		}
	}
	return now, violation{}
}

func (ch *Checker) logRejection(now time.Time, v violation) {
	ce := ch.logger.Check(zap.DebugLevel, "timestamp rejected")
	if ce == nil {
		return
	}
	bound := "before"
	if v.side == sideAfter {
		bound = "after"
	}
	ce.Write(
		zap.String("bound", bound),
		zap.Time("now", now),
		zap.Time("claimed", v.bound),
		zap.Duration("gap", v.gap),
		zap.Duration("tolerance", ch.tolerance),
	)
}
