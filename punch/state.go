package punch

import "time"

// =============================================================================
// DAY STATE - Clock state machine for one employee-day
// =============================================================================

// Phase is the tag of DayState.
type Phase int

const (
	NotStarted Phase = iota
	Working
	OnBreak
	Finished
)

func (p Phase) String() string {
	switch p {
	case NotStarted:
		return "not_started"
	case Working:
		return "working"
	case OnBreak:
		return "on_break"
	case Finished:
		return "finished"
	}
	return "unknown"
}

// DayState is the state of one employee-day. Phase decides which transitions
// exist; the instants carry what the ordering rules need.
//
//	NotStarted --clock_in--> Working --break_start--> OnBreak
//	OnBreak --break_end--> Working --clock_out--> Finished
type DayState struct {
	Phase Phase

	ClockIn      time.Time // set from Working on
	BreakOpened  time.Time // set only while OnBreak
	LastBreakEnd time.Time // zero until the first break closes
	ClockOut     time.Time // set only when Finished
	Last         time.Time // latest accepted punch of the day
}

// Next applies one punch. It returns the new state, or the rejection for an
// illegal transition. Every (phase, kind) pair has exactly one outcome.
func (s DayState) Next(kind Kind, at time.Time) (DayState, *RejectionError) {
	switch s.Phase {
	case NotStarted:
		if kind == ClockIn {
			return DayState{Phase: Working, ClockIn: at, Last: at}, nil
		}
		return s, reject(ReasonNotClockedIn, kind, at)

	case Working:
		switch kind {
		case ClockIn:
			return s, reject(ReasonAlreadyClockedIn, kind, at)
		case BreakEnd:
			return s, reject(ReasonNoOpenBreak, kind, at)
		}
		if !at.After(s.Last) {
			return s, reject(ReasonOutOfOrderTimestamp, kind, at)
		}
		next := s
		next.Last = at
		if kind == BreakStart {
			next.Phase = OnBreak
			next.BreakOpened = at
			return next, nil
		}
		next.Phase = Finished
		next.ClockOut = at
		return next, nil

	case OnBreak:
		switch kind {
		case ClockIn:
			return s, reject(ReasonAlreadyClockedIn, kind, at)
		case ClockOut, BreakStart:
			return s, reject(ReasonBreakAlreadyOpen, kind, at)
		}
		if !at.After(s.BreakOpened) || !at.After(s.LastBreakEnd) {
			return s, reject(ReasonOutOfOrderTimestamp, kind, at)
		}
		next := s
		next.Phase = Working
		next.BreakOpened = time.Time{}
		next.LastBreakEnd = at
		next.Last = at
		return next, nil

	case Finished:
		if kind == ClockIn {
			return s, reject(ReasonAlreadyClockedIn, kind, at)
		}
		return s, reject(ReasonAlreadyClockedOut, kind, at)
	}
	return s, reject(ReasonNotClockedIn, kind, at)
}

// Replay folds a day's events, in order, into a DayState. The first illegal
// event stops the replay and is returned with its rejection.
func Replay(events []Event) (DayState, *RejectionError) {
	var s DayState
	for _, e := range events {
		next, rej := s.Next(e.Kind, e.At)
		if rej != nil {
			return s, rej
		}
		s = next
	}
	return s, nil
}
