/*
errors.go - Rejection reasons and error types for punch validation

ERROR CATEGORIES:
  1. Validation rejections - the punch is well formed but illegal now.
     Recoverable by choosing another kind or timestamp.
  2. Conflict - exact duplicate of a recorded punch (DUPLICATE_EVENT).
     Retrying callers treat it as success.
  3. Contract violations - the caller passed events for another employee or
     out of chronological order. Programming errors; never silently fixed.

USAGE:
  if err := v.Validate(existing, ev); err != nil {
      if punch.IsConflict(err) {
          // already recorded
      }
      if reason, ok := punch.ReasonOf(err); ok {
          // localize reason, e.g. offer to clock out instead
      }
  }
*/
package punch

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// REASON CODES - Closed set, stable across releases
// =============================================================================

type Reason string

const (
	ReasonAlreadyClockedIn    Reason = "ALREADY_CLOCKED_IN"
	ReasonNotClockedIn        Reason = "NOT_CLOCKED_IN"
	ReasonAlreadyClockedOut   Reason = "ALREADY_CLOCKED_OUT"
	ReasonBreakAlreadyOpen    Reason = "BREAK_ALREADY_OPEN"
	ReasonNoOpenBreak         Reason = "NO_OPEN_BREAK"
	ReasonOutOfOrderTimestamp Reason = "OUT_OF_ORDER_TIMESTAMP"
	ReasonDuplicateEvent      Reason = "DUPLICATE_EVENT"
	ReasonFutureTimestamp     Reason = "FUTURE_TIMESTAMP"
	ReasonProxyWindowExceeded Reason = "PROXY_WINDOW_EXCEEDED"
)

var reasonMessages = map[Reason]string{
	ReasonAlreadyClockedIn:    "already clocked in today",
	ReasonNotClockedIn:        "no clock-in recorded",
	ReasonAlreadyClockedOut:   "already clocked out today",
	ReasonBreakAlreadyOpen:    "a break is already open",
	ReasonNoOpenBreak:         "no open break to end",
	ReasonOutOfOrderTimestamp: "timestamp is not after the previous punch",
	ReasonDuplicateEvent:      "the same punch is already recorded",
	ReasonFutureTimestamp:     "punch timestamp is in the future",
	ReasonProxyWindowExceeded: "proxy punches are limited to the last 30 days",
}

// Message returns the default English message for r.
func (r Reason) Message() string {
	if m, ok := reasonMessages[r]; ok {
		return m
	}
	return string(r)
}

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrRejected matches every *RejectionError via errors.Is.
	ErrRejected = errors.New("punch rejected")

	// ErrContractViolation is returned when the caller hands the validator
	// events that break its input contract.
	ErrContractViolation = errors.New("punch: caller contract violation")

	// ErrInvalidEvent is returned for malformed events (unknown kind, zero time).
	ErrInvalidEvent = errors.New("punch: invalid event")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// RejectionError is a refused punch. Reason is the stable code.
type RejectionError struct {
	Reason Reason
	Kind   Kind
	At     time.Time
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s rejected at %s: %s", e.Kind, e.At.Format(time.RFC3339), e.Reason.Message())
}

func (e *RejectionError) Unwrap() error { return ErrRejected }

// Is matches another *RejectionError with the same Reason, so callers can
// write errors.Is(err, punch.Rejection(punch.ReasonNoOpenBreak)).
func (e *RejectionError) Is(target error) bool {
	var t *RejectionError
	if errors.As(target, &t) {
		return t.Reason == e.Reason
	}
	return false
}

// Rejection returns a comparison target for errors.Is.
func Rejection(r Reason) error { return &RejectionError{Reason: r} }

func reject(r Reason, kind Kind, at time.Time) *RejectionError {
	return &RejectionError{Reason: r, Kind: kind, At: at}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// ReasonOf extracts the rejection reason from err.
func ReasonOf(err error) (Reason, bool) {
	var re *RejectionError
	if errors.As(err, &re) {
		return re.Reason, true
	}
	return "", false
}

// IsConflict reports whether err is a duplicate-punch conflict.
func IsConflict(err error) bool {
	r, ok := ReasonOf(err)
	return ok && r == ReasonDuplicateEvent
}

// IsRejection reports whether err is a validation rejection (not a conflict).
func IsRejection(err error) bool {
	r, ok := ReasonOf(err)
	return ok && r != ReasonDuplicateEvent
}
