/*
validator_test.go - Tests for punch validation

Covers:
- every (phase, kind) pair of the transition table
- check ordering (future, proxy window, duplicate, state)
- strict timestamp ordering within a day
- caller contract violations
*/
package punch_test

import (
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/punchclock/clock"
	"github.com/warp/punchclock/punch"
)

// =============================================================================
// TEST INFRASTRUCTURE
// =============================================================================

var jst = time.FixedZone("JST", 9*60*60)

// at returns 2025-03-10 hh:mm in JST.
func at(hh, mm int) time.Time {
	return time.Date(2025, time.March, 10, hh, mm, 0, 0, jst)
}

func ev(kind punch.Kind, t time.Time) punch.Event {
	return punch.Event{EmployeeID: "emp-1", Kind: kind, At: t}
}

func newValidator(now time.Time) *punch.Validator {
	return punch.NewValidator(clock.Fixed(now), jst)
}

func requireReason(t *testing.T, err error, want punch.Reason) {
	t.Helper()
	require.Error(t, err)
	got, ok := punch.ReasonOf(err)
	require.True(t, ok, "expected a rejection, got %v", err)
	assert.Equal(t, want, got)
}

// Day prefixes reaching each phase.
var (
	dayNotStarted = []punch.Event{}
	dayWorking    = []punch.Event{ev(punch.ClockIn, at(9, 0))}
	dayOnBreak    = []punch.Event{ev(punch.ClockIn, at(9, 0)), ev(punch.BreakStart, at(12, 0))}
	dayFinished   = []punch.Event{ev(punch.ClockIn, at(9, 0)), ev(punch.ClockOut, at(18, 0))}
)

// =============================================================================
// TRANSITION TABLE
// =============================================================================

func TestValidate_TransitionTable(t *testing.T) {
	v := newValidator(at(23, 0))
	candidateAt := at(20, 0)

	const accept punch.Reason = ""

	tests := []struct {
		name     string
		existing []punch.Event
		kind     punch.Kind
		want     punch.Reason
	}{
		{"not started + clock_in", dayNotStarted, punch.ClockIn, accept},
		{"not started + clock_out", dayNotStarted, punch.ClockOut, punch.ReasonNotClockedIn},
		{"not started + break_start", dayNotStarted, punch.BreakStart, punch.ReasonNotClockedIn},
		{"not started + break_end", dayNotStarted, punch.BreakEnd, punch.ReasonNotClockedIn},

		{"working + clock_in", dayWorking, punch.ClockIn, punch.ReasonAlreadyClockedIn},
		{"working + clock_out", dayWorking, punch.ClockOut, accept},
		{"working + break_start", dayWorking, punch.BreakStart, accept},
		{"working + break_end", dayWorking, punch.BreakEnd, punch.ReasonNoOpenBreak},

		{"on break + clock_in", dayOnBreak, punch.ClockIn, punch.ReasonAlreadyClockedIn},
		{"on break + clock_out", dayOnBreak, punch.ClockOut, punch.ReasonBreakAlreadyOpen},
		{"on break + break_start", dayOnBreak, punch.BreakStart, punch.ReasonBreakAlreadyOpen},
		{"on break + break_end", dayOnBreak, punch.BreakEnd, accept},

		{"finished + clock_in", dayFinished, punch.ClockIn, punch.ReasonAlreadyClockedIn},
		{"finished + clock_out", dayFinished, punch.ClockOut, punch.ReasonAlreadyClockedOut},
		{"finished + break_start", dayFinished, punch.BreakStart, punch.ReasonAlreadyClockedOut},
		{"finished + break_end", dayFinished, punch.BreakEnd, punch.ReasonAlreadyClockedOut},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.existing, ev(tt.kind, candidateAt))
			if tt.want == accept {
				assert.NoError(t, err)
				return
			}
			requireReason(t, err, tt.want)
			assert.True(t, punch.IsRejection(err))
			assert.False(t, punch.IsConflict(err))
		})
	}
}

func TestValidate_FullDaySequenceAccepted(t *testing.T) {
	// GIVEN: an empty day
	v := newValidator(at(23, 0))
	seq := []punch.Event{
		ev(punch.ClockIn, at(9, 0)),
		ev(punch.BreakStart, at(12, 0)),
		ev(punch.BreakEnd, at(13, 0)),
		ev(punch.BreakStart, at(15, 0)),
		ev(punch.BreakEnd, at(15, 10)),
		ev(punch.ClockOut, at(18, 0)),
	}

	// WHEN: each punch is validated against the ones before it
	// THEN: every punch is accepted
	for i, e := range seq {
		assert.NoError(t, v.Validate(seq[:i], e), "punch %d (%s)", i, e.Kind)
	}
}

// =============================================================================
// TIMESTAMP ORDERING
// =============================================================================

func TestValidate_OutOfOrderTimestamp(t *testing.T) {
	v := newValidator(at(23, 0))

	tests := []struct {
		name     string
		existing []punch.Event
		cand     punch.Event
	}{
		{"clock_out before clock_in", dayWorking, ev(punch.ClockOut, at(8, 0))},
		{"clock_out equal to clock_in", dayWorking, ev(punch.ClockOut, at(9, 0))},
		{"break_start before clock_in", dayWorking, ev(punch.BreakStart, at(8, 59))},
		{"break_end before break_start", dayOnBreak, ev(punch.BreakEnd, at(11, 0))},
		{"break_end equal to break_start", dayOnBreak, ev(punch.BreakEnd, at(12, 0))},
		{
			"clock_out before last break_end",
			[]punch.Event{
				ev(punch.ClockIn, at(9, 0)),
				ev(punch.BreakStart, at(12, 0)),
				ev(punch.BreakEnd, at(13, 0)),
			},
			ev(punch.ClockOut, at(12, 30)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireReason(t, v.Validate(tt.existing, tt.cand), punch.ReasonOutOfOrderTimestamp)
		})
	}
}

func TestValidate_OtherDaysIgnored(t *testing.T) {
	// GIVEN: a finished previous day
	v := newValidator(at(23, 0))
	yesterday := []punch.Event{
		ev(punch.ClockIn, at(9, 0).AddDate(0, 0, -1)),
		ev(punch.ClockOut, at(18, 0).AddDate(0, 0, -1)),
	}

	// WHEN: clocking in today
	err := v.Validate(yesterday, ev(punch.ClockIn, at(9, 0)))

	// THEN: accepted, the day boundary resets the state
	assert.NoError(t, err)
}

// =============================================================================
// FUTURE / PROXY WINDOW / DUPLICATE
// =============================================================================

func TestValidate_FutureTimestampRejected(t *testing.T) {
	now := at(9, 0)
	v := newValidator(now)

	requireReason(t, v.Validate(nil, ev(punch.ClockIn, now.Add(time.Second))), punch.ReasonFutureTimestamp)
	assert.NoError(t, v.Validate(nil, ev(punch.ClockIn, now)))
}

func TestValidate_FutureCheckedBeforeState(t *testing.T) {
	// GIVEN: a finished day
	v := newValidator(at(19, 0))

	// WHEN: a clock_in is sent for later today
	err := v.Validate(dayFinished, ev(punch.ClockIn, at(20, 0)))

	// THEN: the future check wins over ALREADY_CLOCKED_IN
	requireReason(t, err, punch.ReasonFutureTimestamp)
}

func TestValidateProxy_Window(t *testing.T) {
	now := at(12, 0)
	v := newValidator(now)

	// 30 days back is inside the window.
	inside := ev(punch.ClockIn, now.AddDate(0, 0, -30))
	assert.NoError(t, v.ValidateProxy(nil, inside))

	// 31 days back is not.
	outside := ev(punch.ClockIn, now.AddDate(0, 0, -31))
	requireReason(t, v.ValidateProxy(nil, outside), punch.ReasonProxyWindowExceeded)

	// The window does not apply to self punches.
	assert.NoError(t, v.Validate(nil, outside))
}

func TestValidateProxy_WindowCountsCalendarDaysAcrossDST(t *testing.T) {
	// GIVEN: a zone that leaves daylight saving time inside the window
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	now := time.Date(2025, time.November, 20, 12, 0, 0, 0, ny)
	v := punch.NewValidator(clock.Fixed(now), ny)

	// WHEN: a proxy punch is dated exactly 30 calendar days back, which is
	// 721 elapsed hours because of the November clock change
	inside := ev(punch.ClockIn, now.AddDate(0, 0, -30))
	require.Equal(t, 721*time.Hour, now.Sub(inside.At))

	// THEN: it is still inside the window
	assert.NoError(t, v.ValidateProxy(nil, inside))

	// AND: one minute earlier is not
	outside := ev(punch.ClockIn, inside.At.Add(-time.Minute))
	requireReason(t, v.ValidateProxy(nil, outside), punch.ReasonProxyWindowExceeded)
}

func TestValidate_DuplicateIsConflict(t *testing.T) {
	// GIVEN: a recorded clock_in
	v := newValidator(at(23, 0))

	// WHEN: the same clock_in is submitted again
	err := v.Validate(dayWorking, ev(punch.ClockIn, at(9, 0)))

	// THEN: DUPLICATE_EVENT, a conflict rather than a rejection
	requireReason(t, err, punch.ReasonDuplicateEvent)
	assert.True(t, punch.IsConflict(err))
	assert.False(t, punch.IsRejection(err))
	assert.True(t, errors.Is(err, punch.ErrRejected))
	assert.True(t, errors.Is(err, punch.Rejection(punch.ReasonDuplicateEvent)))
}

func TestValidate_AcceptThenResubmitIsDuplicate(t *testing.T) {
	v := newValidator(at(23, 0))
	first := ev(punch.ClockIn, at(9, 0))

	require.NoError(t, v.Validate(nil, first))
	requireReason(t, v.Validate([]punch.Event{first}, first), punch.ReasonDuplicateEvent)

	// A retry under a fresh ID is still the same punch.
	first.ID = "e-recorded"
	retry := ev(punch.ClockIn, at(9, 0))
	retry.ID = "e-retry"
	requireReason(t, v.Validate([]punch.Event{first}, retry), punch.ReasonDuplicateEvent)
}

// =============================================================================
// CONTRACT VIOLATIONS
// =============================================================================

func TestValidate_ContractViolations(t *testing.T) {
	v := newValidator(at(23, 0))

	t.Run("other employee", func(t *testing.T) {
		other := punch.Event{EmployeeID: "emp-2", Kind: punch.ClockIn, At: at(9, 0)}
		err := v.Validate([]punch.Event{other}, ev(punch.ClockOut, at(18, 0)))
		assert.ErrorIs(t, err, punch.ErrContractViolation)
		_, isRejection := punch.ReasonOf(err)
		assert.False(t, isRejection)
	})

	t.Run("not chronological", func(t *testing.T) {
		existing := []punch.Event{ev(punch.BreakStart, at(12, 0)), ev(punch.ClockIn, at(9, 0))}
		err := v.Validate(existing, ev(punch.ClockOut, at(18, 0)))
		assert.ErrorIs(t, err, punch.ErrContractViolation)
	})

	t.Run("illegal recorded sequence", func(t *testing.T) {
		existing := []punch.Event{ev(punch.ClockOut, at(9, 0))}
		err := v.Validate(existing, ev(punch.ClockIn, at(10, 0)))
		assert.ErrorIs(t, err, punch.ErrContractViolation)
	})
}

func TestValidate_InvalidEvent(t *testing.T) {
	v := newValidator(at(23, 0))

	assert.ErrorIs(t, v.Validate(nil, ev("lunch", at(9, 0))), punch.ErrInvalidEvent)
	assert.ErrorIs(t, v.Validate(nil, ev(punch.ClockIn, time.Time{})), punch.ErrInvalidEvent)
}

func TestDayState_ReportsPhase(t *testing.T) {
	v := newValidator(at(23, 0))

	s, err := v.DayState(dayOnBreak, at(0, 0))
	require.NoError(t, err)
	assert.Equal(t, punch.OnBreak, s.Phase)
	assert.Equal(t, "on_break", s.Phase.String())

	s, err = v.DayState(dayFinished, at(0, 0).AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, punch.NotStarted, s.Phase)
}

func TestParseKind_AcceptsLegacyNames(t *testing.T) {
	for in, want := range map[string]punch.Kind{
		"in": punch.ClockIn, "out": punch.ClockOut,
		"break_in": punch.BreakStart, "break_out": punch.BreakEnd,
		"clock_in": punch.ClockIn, "break_end": punch.BreakEnd,
	} {
		got, err := punch.ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := punch.ParseKind("lunch")
	assert.Error(t, err)
}
