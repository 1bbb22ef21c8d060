/*
Package attendance turns punch event sequences into per-day and per-period
work-time summaries.

PURPOSE:
  Payroll and reporting never look at raw punches. They consume the
  PeriodAttendance produced here, which is the single place where worked,
  overtime, night and break minutes are derived.

KEY CONCEPTS:
  - DailyAttendance: one local calendar date with at least one punch.
  - Open day: clock-in without clock-out. Contributes zero worked minutes
    and is flagged, never guessed.
  - Complete day: both clock-in and clock-out. Only complete days carry
    late / early-leave flags and scheduled minutes.
  - Night window: [NightStart on date D, NightEnd on date D+1]. A shift is
    checked against every window it touches.

PURITY:
  Aggregate does no I/O. The current instant (for "in progress" marking)
  comes from the injected clock.

SEE ALSO:
  - rules.go: thresholds and schedule
  - night.go: night-window overlap
  - payroll/: consumes Totals
*/
package attendance

import (
	"time"

	"github.com/warp/punchclock/punch"
)

// =============================================================================
// DAILY ATTENDANCE
// =============================================================================

// DailyAttendance summarises one employee-date.
type DailyAttendance struct {
	Date     time.Time // local midnight
	ClockIn  *time.Time
	ClockOut *time.Time

	BreakMinutes     int
	WorkedMinutes    int
	OvertimeMinutes  int
	NightMinutes     int
	ScheduledMinutes int // non-zero on complete days only

	Late              bool
	LateMinutes       int
	EarlyLeave        bool
	EarlyLeaveMinutes int

	Open       bool // clocked in, not clocked out
	InProgress bool // open and the date is today
	PunchCount int
}

// Complete reports whether the day has both clock-in and clock-out.
func (d DailyAttendance) Complete() bool {
	return d.ClockIn != nil && d.ClockOut != nil
}

// =============================================================================
// PERIOD ATTENDANCE
// =============================================================================

// Totals are period sums over the daily records.
type Totals struct {
	WorkedMinutes    int
	OvertimeMinutes  int
	NightMinutes     int
	ScheduledMinutes int
	BreakMinutes     int
	LateCount        int
	EarlyLeaveCount  int
	WorkDays         int
	OpenDays         int
}

// Add accumulates one day into t.
func (t *Totals) Add(d DailyAttendance) {
	t.WorkedMinutes += d.WorkedMinutes
	t.OvertimeMinutes += d.OvertimeMinutes
	t.NightMinutes += d.NightMinutes
	t.BreakMinutes += d.BreakMinutes
	if d.Late {
		t.LateCount++
	}
	if d.EarlyLeave {
		t.EarlyLeaveCount++
	}
	if d.Complete() {
		t.WorkDays++
		t.ScheduledMinutes += d.ScheduledMinutes
	}
	if d.Open {
		t.OpenDays++
	}
}

// PeriodAttendance is the aggregate for one employee over one period.
type PeriodAttendance struct {
	EmployeeID punch.EmployeeID
	Period     Period
	Daily      []DailyAttendance // ascending by Date, only dates with punches
	Totals     Totals
	PunchCount int
}

// Empty reports whether no punches fell within the period.
func (pa PeriodAttendance) Empty() bool {
	return pa.PunchCount == 0
}
