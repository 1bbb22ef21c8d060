package report_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/punchclock/attendance"
	"github.com/warp/punchclock/clock"
	"github.com/warp/punchclock/punch"
	"github.com/warp/punchclock/report"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// TEST INFRASTRUCTURE
// =============================================================================

var jst = time.FixedZone("JST", 9*60*60)

func on(day, hh, mm int) time.Time {
	return time.Date(2025, time.March, day, hh, mm, 0, 0, jst)
}

func ev(kind punch.Kind, t time.Time) punch.Event {
	return punch.Event{EmployeeID: "emp-1", Kind: kind, At: t}
}

// marchAttendance has a 9h day with lunch on Mon 3rd and Mon 10th, and a
// late 10:00-18:00 day on Fri 14th.
func marchAttendance(t *testing.T) (report.EmployeeAttendance, []punch.Event) {
	t.Helper()
	var events []punch.Event
	for _, day := range []int{3, 10} {
		events = append(events,
			ev(punch.ClockIn, on(day, 9, 0)),
			ev(punch.BreakStart, on(day, 12, 0)),
			ev(punch.BreakEnd, on(day, 12, 30)),
			ev(punch.ClockOut, on(day, 18, 0)),
		)
	}
	events = append(events, ev(punch.ClockIn, on(14, 10, 0)), ev(punch.ClockOut, on(14, 18, 0)))

	agg := attendance.NewAggregator(attendance.DefaultRules(), jst, clock.Fixed(on(31, 23, 0)))
	pa, err := agg.Aggregate(events, attendance.MonthPeriod(2025, time.March, jst))
	require.NoError(t, err)

	return report.EmployeeAttendance{
		EmployeeID: "emp-1", Code: "E001", Name: "Sato", Department: "Ops", Attendance: pa,
	}, events
}

// =============================================================================
// SUMMARY
// =============================================================================

func TestAssembleReport_Monthly(t *testing.T) {
	ea, _ := marchAttendance(t)

	table := report.AssembleReport([]report.EmployeeAttendance{ea}, report.Monthly)

	require.Len(t, table.Rows, 1)
	r := table.Rows[0]
	assert.Equal(t, 510+510+480, r.WorkedMinutes)
	assert.Equal(t, 3*480, r.ScheduledMinutes)
	assert.True(t, r.WorkedHours.Equal(decimal.RequireFromString("25")))
	assert.True(t, r.Utilization.Equal(decimal.RequireFromString("1.042")), r.Utilization.String())
	assert.Equal(t, 60, r.OvertimeMinutes)
	assert.Equal(t, 1, r.LateCount)
	assert.Equal(t, 3, r.WorkDays)
}

func TestAssembleReport_WeeklyBucketsStartMonday(t *testing.T) {
	ea, _ := marchAttendance(t)

	table := report.AssembleReport([]report.EmployeeAttendance{ea}, report.Weekly)

	// March 2025 starts on a Saturday: [1-2], [3-9], [10-16], [17-23], [24-30], [31].
	require.Len(t, table.Rows, 6)
	assert.Equal(t, on(1, 0, 0), table.Rows[0].Start)
	assert.Equal(t, on(2, 0, 0), table.Rows[0].End)
	assert.Equal(t, on(31, 0, 0), table.Rows[5].Start)

	assert.Equal(t, 0, table.Rows[0].WorkedMinutes)
	assert.Equal(t, 510, table.Rows[1].WorkedMinutes)
	assert.Equal(t, 510+480, table.Rows[2].WorkedMinutes)
	assert.True(t, table.Rows[0].Utilization.IsZero())
}

func TestAssembleReport_DailyListsPunchedDates(t *testing.T) {
	ea, _ := marchAttendance(t)

	table := report.AssembleReport([]report.EmployeeAttendance{ea}, report.Daily)

	require.Len(t, table.Rows, 3)
	assert.Equal(t, on(14, 0, 0), table.Rows[2].Start)
	require.NotNil(t, table.Rows[2].ClockIn)
	assert.Equal(t, on(14, 10, 0), *table.Rows[2].ClockIn)
	assert.Equal(t, 1, table.Rows[2].LateCount)
}

func TestHours_RoundsToOneDecimal(t *testing.T) {
	assert.Equal(t, "8.5", report.Hours(510).String())
	assert.Equal(t, "0.1", report.Hours(5).String())
	assert.Equal(t, "0", report.Hours(2).String())
}

func TestParseGranularity(t *testing.T) {
	g, err := report.ParseGranularity("")
	require.NoError(t, err)
	assert.Equal(t, report.Monthly, g)

	_, err = report.ParseGranularity("hourly")
	assert.Error(t, err)
}

// =============================================================================
// EXPORT
// =============================================================================

func TestExportFirstLast_ReducedFidelity(t *testing.T) {
	ea, events := marchAttendance(t)

	records := report.FirstLastRecords("E001", events, ea.Attendance.Period)
	table := report.ExportFirstLast(records)

	require.Len(t, table.Rows, 3)

	// Actual break was 30 minutes; the reduced path assumes 60.
	r := table.Rows[0]
	assert.Equal(t, 60, r.BreakMinutes)
	assert.Equal(t, 480, r.WorkedMinutes)
	assert.Equal(t, 0, r.OvertimeMinutes)
	assert.False(t, r.Late)

	assert.True(t, table.Rows[2].Late)

	full := report.ExportFull([]report.EmployeeAttendance{ea})
	assert.Equal(t, 510, full.Rows[0].WorkedMinutes)
}

func TestExportFirstLast_MissingEnds(t *testing.T) {
	in := on(5, 9, 20)
	out := on(6, 17, 30)
	table := report.ExportFirstLast([]report.FirstLastRecord{
		{EmployeeCode: "E001", Date: on(5, 0, 0), FirstIn: &in},
		{EmployeeCode: "E001", Date: on(6, 0, 0), LastOut: &out},
	})

	assert.Equal(t, 0, table.Rows[0].WorkedMinutes)
	assert.Equal(t, 0, table.Rows[0].BreakMinutes)
	assert.True(t, table.Rows[0].Late)
	assert.True(t, table.Rows[1].EarlyLeave)
}

func TestExportFirstLast_CutoffsKeepWallTimeOnDSTChange(t *testing.T) {
	// GIVEN: the day New York springs forward, so midnight plus 9h15 is 10:15
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	date := time.Date(2025, time.March, 9, 0, 0, 0, 0, ny)
	in := time.Date(2025, time.March, 9, 9, 30, 0, 0, ny)
	out := time.Date(2025, time.March, 9, 18, 0, 0, 0, ny)

	// WHEN: the reduced export judges a 09:30-18:00 day
	table := report.ExportFirstLast([]report.FirstLastRecord{
		{EmployeeCode: "E001", Date: date, FirstIn: &in, LastOut: &out},
	})

	// THEN: 09:30 is after the 09:15 cut-off and 18:00 is not before 17:45
	require.Len(t, table.Rows, 1)
	assert.True(t, table.Rows[0].Late)
	assert.False(t, table.Rows[0].EarlyLeave)
}

// =============================================================================
// WRITERS
// =============================================================================

func TestWriteCSV(t *testing.T) {
	ea, _ := marchAttendance(t)
	table := report.AssembleReport([]report.EmployeeAttendance{ea}, report.Monthly)

	var buf bytes.Buffer
	require.NoError(t, report.WriteCSV(&buf, table))

	lines, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "employee_code", lines[0][0])
	assert.Equal(t, "E001", lines[1][0])
	assert.Equal(t, "2025-03-01", lines[1][3])
	assert.Equal(t, "1500", lines[1][5])
	assert.Equal(t, "25", lines[1][6])
}

func TestWriteXLSX(t *testing.T) {
	ea, events := marchAttendance(t)
	table := report.ExportFirstLast(report.FirstLastRecords("E001", events, ea.Attendance.Period))

	var buf bytes.Buffer
	require.NoError(t, report.WriteXLSX(&buf, table))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Attendance"}, f.GetSheetList())
	rows, err := f.GetRows("Attendance")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "employee_code", rows[0][0])
	assert.Equal(t, "2025-03-03", rows[1][1])
	assert.Equal(t, "480", rows[1][5])
}
