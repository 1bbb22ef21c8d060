package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/warp/punchclock/attendance"
	"github.com/warp/punchclock/punch"
	"github.com/warp/punchclock/timesheet"
)

// =============================================================================
// TIMESHEET HANDLERS
// =============================================================================

// CreateTimesheet opens a draft timesheet for the employee and month.
func (h *Handler) CreateTimesheet(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.requireEmployee(w, r)
	if !ok {
		return
	}

	var req CreateTimesheetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	period, err := attendance.ParseMonth(req.Period, h.Location)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period (use YYYY-MM)", err)
		return
	}

	ts, err := h.openTimesheet(r.Context(), punch.EmployeeID(emp.ID), period)
	if err != nil {
		h.writeTimesheetError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTimesheetDTO(ts, h.Location))
}

// ListTimesheets returns timesheets filtered by ?employee_id and ?status.
func (h *Handler) ListTimesheets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := timesheet.Filter{
		EmployeeID: punch.EmployeeID(q.Get("employee_id")),
		Status:     timesheet.Status(q.Get("status")),
	}
	if f.Status != "" && !f.Status.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid status", nil)
		return
	}

	list, err := h.Store.ListTimesheets(r.Context(), f)
	if err != nil {
		h.internalError(w, r, "Failed to list timesheets", err)
		return
	}

	dtos := make([]TimesheetDTO, len(list))
	for i, ts := range list {
		dtos[i] = toTimesheetDTO(ts, h.Location)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetTimesheet returns a single timesheet.
func (h *Handler) GetTimesheet(w http.ResponseWriter, r *http.Request) {
	ts, err := h.Store.GetTimesheet(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeTimesheetError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTimesheetDTO(ts, h.Location))
}

// SubmitTimesheet re-aggregates a draft's totals and submits it.
func (h *Handler) SubmitTimesheet(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(ctx context.Context, ts *timesheet.Timesheet) error {
		pa, err := h.attendanceFor(ctx, ts.EmployeeID, ts.Period)
		if err != nil {
			return err
		}
		now := h.now(ctx)
		if err := ts.Refresh(pa.Totals, now); err != nil {
			return err
		}
		return ts.Submit(now)
	})
}

// ApproveTimesheet approves a submitted timesheet.
func (h *Handler) ApproveTimesheet(w http.ResponseWriter, r *http.Request) {
	var req ApproveTimesheetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Approver == "" {
		writeError(w, http.StatusBadRequest, "approver is required", nil)
		return
	}
	h.transition(w, r, func(ctx context.Context, ts *timesheet.Timesheet) error {
		return ts.Approve(req.Approver, h.now(ctx))
	})
}

// RejectTimesheet rejects a submitted timesheet with a reason.
func (h *Handler) RejectTimesheet(w http.ResponseWriter, r *http.Request) {
	var req RejectTimesheetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.transition(w, r, func(ctx context.Context, ts *timesheet.Timesheet) error {
		return ts.Reject(req.Reviewer, req.Reason, h.now(ctx))
	})
}

// transition loads the {id} timesheet, applies fn and persists the result.
func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(context.Context, *timesheet.Timesheet) error) {
	ctx := r.Context()

	ts, err := h.Store.GetTimesheet(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeTimesheetError(w, r, err)
		return
	}
	if err := fn(ctx, &ts); err != nil {
		h.writeTimesheetError(w, r, err)
		return
	}
	if err := h.Store.UpdateTimesheet(ctx, ts); err != nil {
		h.writeTimesheetError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTimesheetDTO(ts, h.Location))
}

// openTimesheet aggregates the period and stores a new draft. It returns
// timesheet.ErrAlreadyExists when the employee already has one.
func (h *Handler) openTimesheet(ctx context.Context, employeeID punch.EmployeeID, period attendance.Period) (timesheet.Timesheet, error) {
	pa, err := h.attendanceFor(ctx, employeeID, period)
	if err != nil {
		return timesheet.Timesheet{}, err
	}
	ts := timesheet.New(pa, employeeID, h.now(ctx))
	if err := h.Store.CreateTimesheet(ctx, ts); err != nil {
		return timesheet.Timesheet{}, err
	}
	return ts, nil
}

func (h *Handler) writeTimesheetError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, timesheet.ErrNotFound):
		writeError(w, http.StatusNotFound, "Timesheet not found", nil)
	case errors.Is(err, timesheet.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "Timesheet already exists for this period", err)
	case errors.Is(err, timesheet.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "Invalid status transition", err)
	case errors.Is(err, timesheet.ErrReasonRequired):
		writeError(w, http.StatusBadRequest, "Rejection reason is required", err)
	default:
		h.internalError(w, r, "Timesheet operation failed", err)
	}
}
