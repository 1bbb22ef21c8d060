/*
Package punch holds the clock event model and the per-day clock state machine.

PURPOSE:
  An employee's working day is recorded as a sequence of immutable punch
  events (clock in, break start, break end, clock out). This package decides
  whether a new event is legal given the events already recorded for that
  employee on that calendar day, and provides the write path that validates
  and appends atomically.

KEY CONCEPTS:
  - Event: one recorded clock action. Never mutated, only superseded.
  - DayState: NotStarted | Working | OnBreak | Finished, plus the instants the
    ordering rules need. Built by replaying the day's events through Next.
  - Validator: pure decision function (accept, or reject with a Reason).
  - Recorder: load-validate-append inside Store.WithTx.

UNIQUENESS:
  No two events for the same employee share (Kind, At). A resubmitted event
  is rejected with DUPLICATE_EVENT, which retrying callers treat as success.

SEE ALSO:
  - state.go: transition table
  - validator.go: check ordering (future, proxy window, duplicate, state)
  - recorder.go: atomic validate-and-append
  - attendance/: turns event sequences into worked minutes
*/
package punch

import (
	"fmt"
	"time"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type EventID string

// =============================================================================
// EVENT KIND
// =============================================================================

type Kind string

const (
	ClockIn    Kind = "clock_in"
	ClockOut   Kind = "clock_out"
	BreakStart Kind = "break_start"
	BreakEnd   Kind = "break_end"
)

// Kinds lists every event kind in state-machine order.
var Kinds = []Kind{ClockIn, BreakStart, BreakEnd, ClockOut}

func (k Kind) Valid() bool {
	switch k {
	case ClockIn, ClockOut, BreakStart, BreakEnd:
		return true
	}
	return false
}

// ParseKind accepts the canonical names and the short legacy names
// ("in", "out", "break_in", "break_out").
func ParseKind(s string) (Kind, error) {
	switch s {
	case "clock_in", "in":
		return ClockIn, nil
	case "clock_out", "out":
		return ClockOut, nil
	case "break_start", "break_in":
		return BreakStart, nil
	case "break_end", "break_out":
		return BreakEnd, nil
	}
	return "", fmt.Errorf("unknown punch kind %q", s)
}

// =============================================================================
// EVENT
// =============================================================================

// Event is one recorded clock action.
type Event struct {
	ID         EventID
	EmployeeID EmployeeID
	Kind       Kind
	At         time.Time
	Note       string
	Device     string

	// Set only when someone other than the employee recorded the event.
	ProxyBy     string
	ProxyReason string

	CreatedAt time.Time
}

// IsProxy reports whether the event was recorded on the employee's behalf.
func (e Event) IsProxy() bool { return e.ProxyBy != "" }

// SameAs reports whether e and o are the same punch: same employee, kind and
// instant. IDs are ignored so retried submissions compare equal.
func (e Event) SameAs(o Event) bool {
	return e.EmployeeID == o.EmployeeID && e.Kind == o.Kind && e.At.Equal(o.At)
}

// IdempotencyKey is the natural key enforcing the uniqueness invariant.
func (e Event) IdempotencyKey() string {
	return fmt.Sprintf("%s|%s|%s", e.EmployeeID, e.Kind, e.At.UTC().Format(time.RFC3339Nano))
}
