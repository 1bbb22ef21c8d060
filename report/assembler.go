/*
Package report builds tabular attendance reports.

PURPOSE:
  Summary reports re-bucket the per-day records produced by attendance into
  days, weeks, months or the whole requested period. Exports are per-day
  rows meant for spreadsheets and payroll hand-off.

FIDELITY:
  Summary and full exports come from attendance.DailyAttendance and agree
  with payroll to the minute. ExportFirstLast is a deliberately reduced
  path that only sees the first clock-in and last clock-out of each date and
  assumes a flat break; its figures can differ from the summary.

OUTPUT:
  Table and ExportTable both satisfy Tabular and are written with WriteCSV
  or WriteXLSX.

SEE ALSO:
  - attendance/: daily and period figures
  - api/reports.go: HTTP entry points
*/
package report

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/punchclock/attendance"
	"github.com/warp/punchclock/punch"
)

// =============================================================================
// GRANULARITY
// =============================================================================

type Granularity string

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
	Whole   Granularity = "period"
)

// ParseGranularity defaults to Monthly for the empty string.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(s); g {
	case "":
		return Monthly, nil
	case Daily, Weekly, Monthly, Whole:
		return g, nil
	}
	return "", fmt.Errorf("unknown granularity %q", s)
}

// =============================================================================
// INPUT / OUTPUT
// =============================================================================

// EmployeeAttendance is one employee's attendance with display fields.
type EmployeeAttendance struct {
	EmployeeID punch.EmployeeID
	Code       string
	Name       string
	Department string
	Attendance attendance.PeriodAttendance
}

// Row is one line of a summary report.
type Row struct {
	EmployeeID   punch.EmployeeID
	EmployeeCode string
	EmployeeName string
	Department   string

	Start time.Time
	End   time.Time

	// Daily rows only.
	ClockIn  *time.Time
	ClockOut *time.Time

	WorkedMinutes    int
	ScheduledMinutes int
	OvertimeMinutes  int
	NightMinutes     int
	BreakMinutes     int

	WorkedHours    decimal.Decimal
	ScheduledHours decimal.Decimal
	OvertimeHours  decimal.Decimal
	NightHours     decimal.Decimal
	Utilization    decimal.Decimal // worked / scheduled, zero when nothing scheduled

	LateCount       int
	EarlyLeaveCount int
	WorkDays        int
	OpenDays        int
}

// Table is a summary report.
type Table struct {
	Granularity Granularity
	Rows        []Row
}

// =============================================================================
// ASSEMBLY
// =============================================================================

// AssembleReport builds a summary table. Rows follow the order of rows, then
// bucket start. Daily tables list only dates with punches; other
// granularities list every bucket of the period, zero-filled.
func AssembleReport(rows []EmployeeAttendance, g Granularity) Table {
	t := Table{Granularity: g}
	for _, ea := range rows {
		if g == Daily {
			for _, d := range ea.Attendance.Daily {
				t.Rows = append(t.Rows, dailyRow(ea, d))
			}
			continue
		}
		t.Rows = append(t.Rows, bucketRows(ea, g)...)
	}
	return t
}

func dailyRow(ea EmployeeAttendance, d attendance.DailyAttendance) Row {
	var totals attendance.Totals
	totals.Add(d)
	r := newRow(ea, d.Date, d.Date, totals)
	r.ClockIn = d.ClockIn
	r.ClockOut = d.ClockOut
	return r
}

func bucketRows(ea EmployeeAttendance, g Granularity) []Row {
	period := ea.Attendance.Period
	buckets := Buckets(period, g)

	totals := make([]attendance.Totals, len(buckets))
	for _, d := range ea.Attendance.Daily {
		for i, b := range buckets {
			if b.Contains(d.Date) {
				totals[i].Add(d)
				break
			}
		}
	}

	rows := make([]Row, len(buckets))
	for i, b := range buckets {
		rows[i] = newRow(ea, b.Start, b.End, totals[i])
	}
	return rows
}

func newRow(ea EmployeeAttendance, start, end time.Time, t attendance.Totals) Row {
	return Row{
		EmployeeID:       ea.EmployeeID,
		EmployeeCode:     ea.Code,
		EmployeeName:     ea.Name,
		Department:       ea.Department,
		Start:            start,
		End:              end,
		WorkedMinutes:    t.WorkedMinutes,
		ScheduledMinutes: t.ScheduledMinutes,
		OvertimeMinutes:  t.OvertimeMinutes,
		NightMinutes:     t.NightMinutes,
		BreakMinutes:     t.BreakMinutes,
		WorkedHours:      Hours(t.WorkedMinutes),
		ScheduledHours:   Hours(t.ScheduledMinutes),
		OvertimeHours:    Hours(t.OvertimeMinutes),
		NightHours:       Hours(t.NightMinutes),
		Utilization:      Utilization(t.WorkedMinutes, t.ScheduledMinutes),
		LateCount:        t.LateCount,
		EarlyLeaveCount:  t.EarlyLeaveCount,
		WorkDays:         t.WorkDays,
		OpenDays:         t.OpenDays,
	}
}

// Buckets splits period into consecutive sub-periods. Weeks start on Monday;
// the first and last bucket are clipped to the period.
func Buckets(period attendance.Period, g Granularity) []attendance.Period {
	if g == Whole {
		return []attendance.Period{period}
	}

	var out []attendance.Period
	for start := period.Start; !start.After(period.End); {
		var end time.Time
		switch g {
		case Daily:
			end = start
		case Weekly:
			offset := (int(start.Weekday()) + 6) % 7
			end = start.AddDate(0, 0, 6-offset)
		default:
			end = time.Date(start.Year(), start.Month()+1, 0, 0, 0, 0, 0, start.Location())
		}
		if end.After(period.End) {
			end = period.End
		}
		out = append(out, attendance.Period{Start: start, End: end})
		start = end.AddDate(0, 0, 1)
	}
	return out
}

var sixty = decimal.NewFromInt(60)

// Hours converts minutes to hours rounded to one decimal.
func Hours(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(sixty).Round(1)
}

// Utilization is worked / scheduled rounded to three decimals.
func Utilization(worked, scheduled int) decimal.Decimal {
	if scheduled <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(worked)).Div(decimal.NewFromInt(int64(scheduled))).Round(3)
}
