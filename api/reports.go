package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/warp/punchclock/attendance"
	"github.com/warp/punchclock/punch"
	"github.com/warp/punchclock/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// GetSummaryReport returns every active employee's attendance over ?from&to
// bucketed by ?granularity (daily, weekly, monthly, period).
func (h *Handler) GetSummaryReport(w http.ResponseWriter, r *http.Request) {
	period, err := h.periodQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}
	g, err := report.ParseGranularity(r.URL.Query().Get("granularity"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid granularity", err)
		return
	}

	rows, _, err := h.employeeAttendance(r.Context(), period)
	if err != nil {
		h.internalError(w, r, "Failed to aggregate attendance", err)
		return
	}

	writeJSON(w, http.StatusOK, toReportDTO(report.AssembleReport(rows, g), period, h.Location))
}

// ExportReport streams per-day attendance rows as CSV or XLSX.
//
//	?format=csv|xlsx (default csv)
//	?fidelity=full|first_last (default full)
func (h *Handler) ExportReport(w http.ResponseWriter, r *http.Request) {
	period, err := h.periodQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}

	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown format %q (use csv or xlsx)", format), nil)
		return
	}
	fidelity := report.Fidelity(q.Get("fidelity"))
	if fidelity == "" {
		fidelity = report.FullFidelity
	}
	if fidelity != report.FullFidelity && fidelity != report.FirstLast {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown fidelity %q (use full or first_last)", fidelity), nil)
		return
	}

	rows, events, err := h.employeeAttendance(r.Context(), period)
	if err != nil {
		h.internalError(w, r, "Failed to aggregate attendance", err)
		return
	}

	var table report.ExportTable
	if fidelity == report.FirstLast {
		var records []report.FirstLastRecord
		for _, ea := range rows {
			records = append(records, report.FirstLastRecords(ea.Code, events[ea.EmployeeID], period)...)
		}
		table = report.ExportFirstLast(records)
	} else {
		table = report.ExportFull(rows)
	}

	// Buffer so a write failure can still become a 500.
	var buf bytes.Buffer
	contentType := "text/csv; charset=utf-8"
	if format == "xlsx" {
		contentType = xlsxContentType
		err = report.WriteXLSX(&buf, table)
	} else {
		err = report.WriteCSV(&buf, table)
	}
	if err != nil {
		h.internalError(w, r, "Failed to write export", err)
		return
	}

	filename := fmt.Sprintf("attendance_%s_%s.%s", formatDate(period.Start), formatDate(period.End), format)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// employeeAttendance aggregates every active employee over period. The raw
// events are returned too, keyed by employee, for the first/last export.
func (h *Handler) employeeAttendance(ctx context.Context, period attendance.Period) ([]report.EmployeeAttendance, map[punch.EmployeeID][]punch.Event, error) {
	employees, err := h.Store.ListEmployees(ctx, true)
	if err != nil {
		return nil, nil, fmt.Errorf("list employees: %w", err)
	}

	agg := h.aggregator(ctx)
	from, to := period.Bounds()
	rows := make([]report.EmployeeAttendance, 0, len(employees))
	events := make(map[punch.EmployeeID][]punch.Event, len(employees))

	for _, emp := range employees {
		id := punch.EmployeeID(emp.ID)
		evs, err := h.Store.LoadRange(ctx, id, from, to)
		if err != nil {
			return nil, nil, fmt.Errorf("load punches for %s: %w", id, err)
		}
		pa, err := agg.Aggregate(evs, period)
		if err != nil {
			return nil, nil, fmt.Errorf("aggregate %s: %w", id, err)
		}
		pa.EmployeeID = id

		events[id] = evs
		rows = append(rows, report.EmployeeAttendance{
			EmployeeID: id,
			Code:       emp.Code,
			Name:       emp.Name,
			Department: emp.Department,
			Attendance: pa,
		})
	}
	return rows, events, nil
}
