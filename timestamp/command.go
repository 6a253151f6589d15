package timestamp

import (
	"fmt"
	"time"
)

// Command asserts that the true time lies within [Before, After]. Either
// bound may be absent, meaning no constraint on that side.
//
// The checker compares each bound with its clock independently: Before must
// not lie more than the tolerance in the past and After must not lie more
// than the tolerance in the future.
type Command struct {
	before *time.Time
	after  *time.Time
}

// NewCommand builds a window. At least one bound is required, and when both
// are present before must not be later than after.
func NewCommand(before, after *time.Time) (Command, error) {
	if before == nil && after == nil {
		return Command{}, fmt.Errorf("%w: at least one bound is required", ErrInvalidCommand)
	}
	if before != nil && after != nil && before.After(*after) {
		return Command{}, fmt.Errorf("%w: before %s is later than after %s",
			ErrInvalidCommand, before.Format(time.RFC3339Nano), after.Format(time.RFC3339Nano))
	}
	var c Command
	if before != nil {
		b := *before
		c.before = &b
	}
	if after != nil {
		a := *after
		c.after = &a
	}
	return c, nil
}

// Between is NewCommand with both bounds present.
func Between(before, after time.Time) (Command, error) {
	return NewCommand(&before, &after)
}

// OnlyBefore is a window with only a Before bound.
func OnlyBefore(t time.Time) Command {
	return Command{before: &t}
}

// OnlyAfter is a window with only an After bound.
func OnlyAfter(t time.Time) Command {
	return Command{after: &t}
}

// Around is the window [t-tolerance, t+tolerance]. A negative tolerance is
// treated as its absolute value.
func Around(t time.Time, tolerance time.Duration) Command {
	if tolerance < 0 {
		tolerance = -tolerance
	}
	before, after := t.Add(-tolerance), t.Add(tolerance)
	return Command{before: &before, after: &after}
}

// Before returns the Before bound, if present.
func (c Command) Before() (time.Time, bool) {
	if c.before == nil {
		return time.Time{}, false
	}
	return *c.before, true
}

// After returns the After bound, if present.
func (c Command) After() (time.Time, bool) {
	if c.after == nil {
		return time.Time{}, false
	}
	return *c.after, true
}

// Midpoint returns the centre of a two-sided window.
func (c Command) Midpoint() (time.Time, bool) {
	if c.before == nil || c.after == nil {
		return time.Time{}, false
	}
	return c.before.Add(c.after.Sub(*c.before) / 2), true
}

// String renders the window as [before, after], with "-" for a missing bound.
func (c Command) String() string {
	format := func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.Format(time.RFC3339Nano)
	}
	return "[" + format(c.before) + ", " + format(c.after) + "]"
}
