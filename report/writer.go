package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Tabular is anything that renders as a header plus rows of cells. Cells are
// string, int, bool or decimal.Decimal.
type Tabular interface {
	SheetName() string
	Header() []string
	Records() [][]any
}

// =============================================================================
// SUMMARY TABLE
// =============================================================================

func (t Table) SheetName() string { return "Summary" }

func (t Table) Header() []string {
	h := []string{"employee_code", "employee_name", "department", "start", "end"}
	if t.Granularity == Daily {
		h = append(h, "clock_in", "clock_out")
	}
	return append(h,
		"work_minutes", "work_hours",
		"scheduled_minutes", "scheduled_hours",
		"overtime_minutes", "overtime_hours",
		"night_minutes", "night_hours",
		"break_minutes", "utilization",
		"late_count", "early_leave_count", "work_days", "open_days",
	)
}

func (t Table) Records() [][]any {
	out := make([][]any, 0, len(t.Rows))
	for _, r := range t.Rows {
		rec := []any{r.EmployeeCode, r.EmployeeName, r.Department, date(r.Start), date(r.End)}
		if t.Granularity == Daily {
			rec = append(rec, clockTime(r.ClockIn), clockTime(r.ClockOut))
		}
		rec = append(rec,
			r.WorkedMinutes, r.WorkedHours,
			r.ScheduledMinutes, r.ScheduledHours,
			r.OvertimeMinutes, r.OvertimeHours,
			r.NightMinutes, r.NightHours,
			r.BreakMinutes, r.Utilization,
			r.LateCount, r.EarlyLeaveCount, r.WorkDays, r.OpenDays,
		)
		out = append(out, rec)
	}
	return out
}

// =============================================================================
// EXPORT TABLE
// =============================================================================

func (t ExportTable) SheetName() string { return "Attendance" }

func (t ExportTable) Header() []string {
	return []string{
		"employee_code", "date", "clock_in", "clock_out",
		"break_minutes", "work_minutes", "overtime_minutes", "late", "early_leave",
	}
}

func (t ExportTable) Records() [][]any {
	out := make([][]any, 0, len(t.Rows))
	for _, r := range t.Rows {
		out = append(out, []any{
			r.EmployeeCode, date(r.Date), clockTime(r.ClockIn), clockTime(r.ClockOut),
			r.BreakMinutes, r.WorkedMinutes, r.OvertimeMinutes, flag(r.Late), flag(r.EarlyLeave),
		})
	}
	return out
}

func date(t time.Time) string { return t.Format(time.DateOnly) }

func clockTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateTime)
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

// =============================================================================
// WRITERS
// =============================================================================

// WriteCSV writes t as RFC 4180 CSV with a header line.
func WriteCSV(w io.Writer, t Tabular) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range t.Records() {
		line := make([]string, len(rec))
		for i, v := range rec {
			line[i] = csvCell(v)
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvCell(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case decimal.Decimal:
		return v.String()
	}
	return fmt.Sprint(v)
}

// WriteXLSX writes t as a single-sheet workbook.
func WriteXLSX(w io.Writer, t Tabular) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := t.SheetName()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := make([]any, len(t.Header()))
	for i, h := range t.Header() {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, rec := range t.Records() {
		row := make([]any, len(rec))
		for j, v := range rec {
			if d, ok := v.(decimal.Decimal); ok {
				row[j] = d.InexactFloat64()
				continue
			}
			row[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
