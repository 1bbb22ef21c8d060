package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/punchclock/attendance"
	"github.com/warp/punchclock/clock"
	"github.com/warp/punchclock/punch"
)

// =============================================================================
// PUNCH HANDLERS
// =============================================================================

// RecordPunch records a punch made by the employee in the URL.
func (h *Handler) RecordPunch(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.requireEmployee(w, r)
	if !ok {
		return
	}

	var req PunchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	kind, err := punch.ParseKind(req.Kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid kind", err)
		return
	}

	at := h.now(r.Context())
	if req.At != nil {
		if at, err = parseInstant(*req.At, h.Location); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid at", err)
			return
		}
	}

	ev, err := h.Recorder.Record(r.Context(), punch.Event{
		EmployeeID: punch.EmployeeID(emp.ID),
		Kind:       kind,
		At:         at,
		Note:       req.Note,
		Device:     req.Device,
	})
	if err != nil {
		h.writePunchError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toPunchDTO(ev, h.Location))
}

// RecordProxyPunch records a punch on an employee's behalf.
func (h *Handler) RecordProxyPunch(w http.ResponseWriter, r *http.Request) {
	var req ProxyPunchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.EmployeeID == "" || req.ProxyBy == "" || req.At == "" {
		writeError(w, http.StatusBadRequest, "employee_id, at and proxy_by are required", nil)
		return
	}

	emp, err := h.Store.GetEmployee(r.Context(), req.EmployeeID)
	if err != nil {
		h.internalError(w, r, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	kind, err := punch.ParseKind(req.Kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid kind", err)
		return
	}
	at, err := parseInstant(req.At, h.Location)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid at", err)
		return
	}

	ev, err := h.Recorder.RecordProxy(r.Context(), punch.Event{
		EmployeeID:  punch.EmployeeID(emp.ID),
		Kind:        kind,
		At:          at,
		Note:        req.Note,
		ProxyBy:     req.ProxyBy,
		ProxyReason: req.Reason,
	})
	if err != nil {
		h.writePunchError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toPunchDTO(ev, h.Location))
}

// ListPunches returns the recorded events in ?from&to.
func (h *Handler) ListPunches(w http.ResponseWriter, r *http.Request) {
	id := punch.EmployeeID(chi.URLParam(r, "id"))

	period, err := h.periodQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}

	from, to := period.Bounds()
	events, err := h.Store.LoadRange(r.Context(), id, from, to)
	if err != nil {
		h.internalError(w, r, "Failed to load punches", err)
		return
	}

	dtos := make([]PunchDTO, len(events))
	for i, e := range events {
		dtos[i] = toPunchDTO(e, h.Location)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetDayState returns where the employee stands on ?date (default today) and
// which punch kinds are legal next.
func (h *Handler) GetDayState(w http.ResponseWriter, r *http.Request) {
	id := punch.EmployeeID(chi.URLParam(r, "id"))

	day := clock.StartOfDay(h.now(r.Context()), h.Location)
	if s := r.URL.Query().Get("date"); s != "" {
		d, err := time.ParseInLocation(time.DateOnly, s, h.Location)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
			return
		}
		day = d
	}

	events, err := h.Store.LoadRange(r.Context(), id, day, day.AddDate(0, 0, 1))
	if err != nil {
		h.internalError(w, r, "Failed to load punches", err)
		return
	}

	state, err := h.Validator.DayState(events, day)
	if err != nil {
		h.internalError(w, r, "Recorded punches are inconsistent", err)
		return
	}

	writeJSON(w, http.StatusOK, toDayStateDTO(id, day, state, h.Location))
}

// =============================================================================
// ATTENDANCE AND PAYROLL HANDLERS
// =============================================================================

// GetAttendance returns daily records and totals for ?from&to.
func (h *Handler) GetAttendance(w http.ResponseWriter, r *http.Request) {
	id := punch.EmployeeID(chi.URLParam(r, "id"))

	period, err := h.periodQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}

	pa, err := h.attendanceFor(r.Context(), id, period)
	if err != nil {
		h.internalError(w, r, "Failed to aggregate attendance", err)
		return
	}

	writeJSON(w, http.StatusOK, toAttendanceDTO(pa, h.Location))
}

// GetPayslip computes the payslip for {period} (YYYY-MM). A month without
// punches yields 204 No Content.
func (h *Handler) GetPayslip(w http.ResponseWriter, r *http.Request) {
	id := punch.EmployeeID(chi.URLParam(r, "id"))

	period, err := attendance.ParseMonth(chi.URLParam(r, "period"), h.Location)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period (use YYYY-MM)", err)
		return
	}

	profile, err := h.Store.FetchCompensationProfile(r.Context(), id)
	if err != nil {
		h.internalError(w, r, "Failed to get compensation profile", err)
		return
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, "Compensation profile not found", nil)
		return
	}

	pa, err := h.attendanceFor(r.Context(), id, period)
	if err != nil {
		h.internalError(w, r, "Failed to aggregate attendance", err)
		return
	}

	slip, ok := h.Calculator.ComputePayslip(pa, *profile)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, toPayslipDTO(slip))
}
