/*
Package clock provides the source of "now" for the punch clock engine.

PURPOSE:
  Validation (future-timestamp and proxy-window checks) and aggregation
  (is an open day still in progress?) both depend on the current instant.
  Reading time.Now() inside those components would make them impossible to
  test deterministically and impossible to simulate, so the current time is
  injected through the Clock interface instead.

IMPLEMENTATIONS:
  System: wall clock (production)
  Fixed:  a fixed instant (tests, virtual-time requests in development)

REQUEST SCOPING:
  The HTTP layer may install a Fixed clock for one request (X-Virtual-Time
  header). WithContext / FromContext carry it through the request context.

USAGE:
  v := punch.Validator{Clock: clock.System{}, Location: loc}
  v.Clock = clock.Fixed(time.Date(2025, 3, 10, 9, 0, 0, 0, loc))
*/
package clock

import (
	"context"
	"time"
)

// Clock returns the current instant.
type Clock interface {
	Now() time.Time
}

// System is the wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed always returns the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }

type contextKey struct{}

// WithContext returns a context carrying c.
func WithContext(ctx context.Context, c Clock) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext returns the clock stored in ctx, or fallback when none is set.
func FromContext(ctx context.Context, fallback Clock) Clock {
	if c, ok := ctx.Value(contextKey{}).(Clock); ok && c != nil {
		return c
	}
	return fallback
}

// StartOfDay returns local midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	return StartOfDay(a, loc).Equal(StartOfDay(b, loc))
}
