package attendance

import (
	"fmt"
	"time"

	"github.com/warp/punchclock/clock"
	"github.com/warp/punchclock/punch"
)

// =============================================================================
// AGGREGATOR
// =============================================================================

// Aggregator derives attendance from punch events. Safe for concurrent use.
type Aggregator struct {
	Rules    Rules
	Location *time.Location // day boundary; defaults to UTC
	Clock    clock.Clock    // marks today's open day as in progress
}

func NewAggregator(rules Rules, loc *time.Location, c clock.Clock) *Aggregator {
	return &Aggregator{Rules: rules, Location: loc, Clock: c}
}

// Aggregate summarises one employee's events over period.
//
// events must belong to a single employee and be ascending by At; violations
// return ErrMixedEmployees / ErrEventsOutOfOrder. Events outside period are
// ignored. Zero events in the period yield an empty result, not an error.
func (a *Aggregator) Aggregate(events []punch.Event, period Period) (PeriodAttendance, error) {
	if err := period.Validate(); err != nil {
		return PeriodAttendance{}, err
	}
	if err := checkContract(events); err != nil {
		return PeriodAttendance{}, err
	}

	loc := a.location()
	period = NewPeriod(period.Start, period.End, loc)
	pa := PeriodAttendance{Period: period}
	if len(events) > 0 {
		pa.EmployeeID = events[0].EmployeeID
	}

	var day []punch.Event
	flush := func() {
		if len(day) == 0 {
			return
		}
		d := a.Day(day)
		pa.Daily = append(pa.Daily, d)
		pa.Totals.Add(d)
		pa.PunchCount += d.PunchCount
		day = day[:0]
	}

	for _, e := range events {
		if !period.Contains(e.At) {
			continue
		}
		if len(day) > 0 && !clock.SameDay(day[0].At, e.At, loc) {
			flush()
		}
		day = append(day, e)
	}
	flush()

	return pa, nil
}

// Day summarises the punches of one local date. events must be non-empty,
// ascending and on the same date.
func (a *Aggregator) Day(events []punch.Event) DailyAttendance {
	loc := a.location()
	d := DailyAttendance{
		Date:       clock.StartOfDay(events[0].At, loc),
		PunchCount: len(events),
	}

	var (
		in, out   time.Time
		openBreak time.Time
		breaks    time.Duration
	)
	for _, e := range events {
		switch e.Kind {
		case punch.ClockIn:
			if in.IsZero() {
				in = e.At
			}
		case punch.ClockOut:
			out = e.At
		case punch.BreakStart:
			openBreak = e.At
		case punch.BreakEnd:
			if !openBreak.IsZero() && e.At.After(openBreak) {
				breaks += e.At.Sub(openBreak)
			}
			openBreak = time.Time{}
		}
	}

	if !in.IsZero() {
		d.ClockIn = &in
	}
	if !out.IsZero() {
		d.ClockOut = &out
	}
	d.BreakMinutes = int(breaks / time.Minute)

	if in.IsZero() {
		return d
	}
	if out.IsZero() {
		d.Open = true
		d.InProgress = clock.SameDay(d.Date, a.now(), loc)
		return d
	}

	worked := out.Sub(in) - breaks
	if worked < 0 {
		worked = 0
	}
	d.WorkedMinutes = int(worked / time.Minute)
	d.ScheduledMinutes = a.Rules.ScheduledMinutesPerDay
	d.OvertimeMinutes = max(0, d.WorkedMinutes-a.Rules.OvertimeThresholdMinutes)
	d.NightMinutes = min(NightMinutes(in, out, a.Rules, loc), d.WorkedMinutes)

	start := wallClock(d.Date, a.Rules.ScheduledStart)
	if in.After(start.Add(a.Rules.LateGrace)) {
		d.Late = true
		d.LateMinutes = int(in.Sub(start) / time.Minute)
	}
	end := wallClock(d.Date, a.Rules.ScheduledEnd)
	if out.Before(end.Add(-a.Rules.EarlyLeaveGrace)) {
		d.EarlyLeave = true
		d.EarlyLeaveMinutes = int(end.Sub(out) / time.Minute)
	}
	return d
}

func checkContract(events []punch.Event) error {
	for i := 1; i < len(events); i++ {
		if events[i].EmployeeID != events[0].EmployeeID {
			return fmt.Errorf("%w: %s and %s", ErrMixedEmployees, events[0].EmployeeID, events[i].EmployeeID)
		}
		if events[i].At.Before(events[i-1].At) {
			return fmt.Errorf("%w: index %d", ErrEventsOutOfOrder, i)
		}
	}
	return nil
}

func (a *Aggregator) location() *time.Location {
	if a.Location == nil {
		return time.UTC
	}
	return a.Location
}

func (a *Aggregator) now() time.Time {
	if a.Clock == nil {
		return clock.System{}.Now()
	}
	return a.Clock.Now()
}
