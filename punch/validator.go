package punch

import (
	"fmt"
	"time"

	"github.com/warp/punchclock/clock"
)

// DefaultProxyWindowDays bounds how many calendar days back a proxy punch
// may be dated.
const DefaultProxyWindowDays = 30

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator decides whether a candidate punch is legal. It is a pure function
// of its inputs and the injected clock, and is safe for concurrent use.
//
// The decision is only sound when the caller validates and inserts against the
// same snapshot of the day (see Recorder).
type Validator struct {
	Clock           clock.Clock
	Location        *time.Location // day boundary; defaults to UTC
	ProxyWindowDays int            // defaults to DefaultProxyWindowDays
}

// NewValidator creates a validator with the default proxy window.
func NewValidator(c clock.Clock, loc *time.Location) *Validator {
	return &Validator{Clock: c, Location: loc, ProxyWindowDays: DefaultProxyWindowDays}
}

// Validate checks candidate against the employee's recorded events.
// existing may span several days; only candidate's calendar day is used.
//
// Returns nil to accept, a *RejectionError to reject, or an error wrapping
// ErrContractViolation / ErrInvalidEvent when the inputs are malformed.
func (v *Validator) Validate(existing []Event, candidate Event) error {
	return v.validate(existing, candidate, false)
}

// ValidateProxy is Validate for punches recorded on someone else's behalf.
// The candidate must also fall within the proxy window ending now.
func (v *Validator) ValidateProxy(existing []Event, candidate Event) error {
	return v.validate(existing, candidate, true)
}

// DayState returns the state the employee is in on day, for UIs that offer
// the next legal punch.
func (v *Validator) DayState(existing []Event, day time.Time) (DayState, error) {
	events, err := v.dayEvents(existing, "", day)
	if err != nil {
		return DayState{}, err
	}
	s, rej := Replay(events)
	if rej != nil {
		return s, fmt.Errorf("%w: recorded punches are not a legal sequence: %v", ErrContractViolation, rej)
	}
	return s, nil
}

func (v *Validator) validate(existing []Event, candidate Event, proxy bool) error {
	if !candidate.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEvent, candidate.Kind)
	}
	if candidate.At.IsZero() {
		return fmt.Errorf("%w: missing timestamp", ErrInvalidEvent)
	}

	now := v.now()
	if candidate.At.After(now) {
		return reject(ReasonFutureTimestamp, candidate.Kind, candidate.At)
	}
	if proxy && candidate.At.Before(v.proxyCutoff(now)) {
		return reject(ReasonProxyWindowExceeded, candidate.Kind, candidate.At)
	}

	day, err := v.dayEvents(existing, candidate.EmployeeID, candidate.At)
	if err != nil {
		return err
	}

	for _, e := range day {
		if e.SameAs(candidate) {
			return reject(ReasonDuplicateEvent, candidate.Kind, candidate.At)
		}
	}

	state, rej := Replay(day)
	if rej != nil {
		return fmt.Errorf("%w: recorded punches are not a legal sequence: %v", ErrContractViolation, rej)
	}
	if _, rej := state.Next(candidate.Kind, candidate.At); rej != nil {
		return rej
	}
	return nil
}

// dayEvents selects the events on at's calendar day, checking the input
// contract: one employee, ascending timestamps.
func (v *Validator) dayEvents(existing []Event, employee EmployeeID, at time.Time) ([]Event, error) {
	loc := v.location()
	var day []Event
	for i, e := range existing {
		if employee != "" && e.EmployeeID != employee {
			return nil, fmt.Errorf("%w: event %s belongs to %s, not %s", ErrContractViolation, e.ID, e.EmployeeID, employee)
		}
		if i > 0 && e.At.Before(existing[i-1].At) {
			return nil, fmt.Errorf("%w: events not in chronological order at index %d", ErrContractViolation, i)
		}
		if clock.SameDay(e.At, at, loc) {
			day = append(day, e)
		}
	}
	return day, nil
}

func (v *Validator) now() time.Time {
	if v.Clock == nil {
		return clock.System{}.Now()
	}
	return v.Clock.Now()
}

func (v *Validator) location() *time.Location {
	if v.Location == nil {
		return time.UTC
	}
	return v.Location
}

// proxyCutoff is the earliest instant a proxy punch may carry: now's wall
// clock time the configured number of calendar days back, so a DST change in
// between does not shorten the window.
func (v *Validator) proxyCutoff(now time.Time) time.Time {
	days := v.ProxyWindowDays
	if days <= 0 {
		days = DefaultProxyWindowDays
	}
	return now.In(v.location()).AddDate(0, 0, -days)
}
