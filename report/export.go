package report

import (
	"time"

	"github.com/warp/punchclock/attendance"
	"github.com/warp/punchclock/clock"
	"github.com/warp/punchclock/punch"
)

// Reduced-fidelity constants. They are fixed, not taken from attendance.Rules,
// so the export stays comparable across rule changes.
const (
	firstLastBreakMinutes     = 60
	firstLastOvertimeMinutes  = 480
	firstLastLateAfter        = 9*time.Hour + 15*time.Minute
	firstLastEarlyLeaveBefore = 17*time.Hour + 45*time.Minute
)

// Fidelity selects how export rows are derived.
type Fidelity string

const (
	FullFidelity Fidelity = "full"
	FirstLast    Fidelity = "first_last"
)

// ExportRow is one employee-date line of an attendance export.
type ExportRow struct {
	EmployeeCode    string
	Date            time.Time
	ClockIn         *time.Time
	ClockOut        *time.Time
	BreakMinutes    int
	WorkedMinutes   int
	OvertimeMinutes int
	Late            bool
	EarlyLeave      bool
}

// ExportTable is an attendance export.
type ExportTable struct {
	Fidelity Fidelity
	Rows     []ExportRow
}

// ExportFull derives export rows from the full daily records.
func ExportFull(rows []EmployeeAttendance) ExportTable {
	t := ExportTable{Fidelity: FullFidelity}
	for _, ea := range rows {
		for _, d := range ea.Attendance.Daily {
			t.Rows = append(t.Rows, ExportRow{
				EmployeeCode:    ea.Code,
				Date:            d.Date,
				ClockIn:         d.ClockIn,
				ClockOut:        d.ClockOut,
				BreakMinutes:    d.BreakMinutes,
				WorkedMinutes:   d.WorkedMinutes,
				OvertimeMinutes: d.OvertimeMinutes,
				Late:            d.Late,
				EarlyLeave:      d.EarlyLeave,
			})
		}
	}
	return t
}

// =============================================================================
// REDUCED FIDELITY - first in / last out only
// =============================================================================

// FirstLastRecord is the earliest clock-in and latest clock-out of one
// employee-date. Date is local midnight.
type FirstLastRecord struct {
	EmployeeCode string
	Date         time.Time
	FirstIn      *time.Time
	LastOut      *time.Time
}

// FirstLastRecords reduces an employee's events to one record per date in
// period.
func FirstLastRecords(code string, events []punch.Event, period attendance.Period) []FirstLastRecord {
	loc := period.Location()
	var out []FirstLastRecord
	for _, e := range events {
		if !period.Contains(e.At) {
			continue
		}
		date := clock.StartOfDay(e.At, loc)
		if len(out) == 0 || !out[len(out)-1].Date.Equal(date) {
			out = append(out, FirstLastRecord{EmployeeCode: code, Date: date})
		}
		r := &out[len(out)-1]
		at := e.At
		switch e.Kind {
		case punch.ClockIn:
			if r.FirstIn == nil || at.Before(*r.FirstIn) {
				r.FirstIn = &at
			}
		case punch.ClockOut:
			if r.LastOut == nil || at.After(*r.LastOut) {
				r.LastOut = &at
			}
		}
	}
	return out
}

// ExportFirstLast derives rows from first-in / last-out alone: a flat 60
// minute break when both ends exist, overtime past 480 minutes, late after
// 09:15 and early leave before 17:45. Breaks actually taken are invisible
// here, so worked minutes can differ from the summary report.
func ExportFirstLast(records []FirstLastRecord) ExportTable {
	t := ExportTable{Fidelity: FirstLast}
	for _, rec := range records {
		row := ExportRow{
			EmployeeCode: rec.EmployeeCode,
			Date:         rec.Date,
			ClockIn:      rec.FirstIn,
			ClockOut:     rec.LastOut,
		}
		if rec.FirstIn != nil && rec.LastOut != nil {
			row.BreakMinutes = firstLastBreakMinutes
			span := int(rec.LastOut.Sub(*rec.FirstIn) / time.Minute)
			row.WorkedMinutes = max(0, span-firstLastBreakMinutes)
			row.OvertimeMinutes = max(0, row.WorkedMinutes-firstLastOvertimeMinutes)
		}
		if rec.FirstIn != nil && rec.FirstIn.After(wallClock(rec.Date, firstLastLateAfter)) {
			row.Late = true
		}
		if rec.LastOut != nil && rec.LastOut.Before(wallClock(rec.Date, firstLastEarlyLeaveBefore)) {
			row.EarlyLeave = true
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// wallClock returns the local time-of-day offset on date's calendar day, so
// cut-offs keep their wall time on days with a DST change.
func wallClock(date time.Time, offset time.Duration) time.Time {
	h := int(offset / time.Hour)
	m := int(offset % time.Hour / time.Minute)
	return time.Date(date.Year(), date.Month(), date.Day(), h, m, 0, 0, date.Location())
}
