/*
handlers.go - HTTP API handlers for the punch clock engine

PURPOSE:
  Exposes punch recording, attendance, payroll, reports and timesheets via
  a REST API. Handles HTTP request/response, JSON serialization, and
  delegates to the domain packages.

ENDPOINTS:
  Employees:
    GET    /api/employees                          List employees (?active=true)
    POST   /api/employees                          Create or update employee
    GET    /api/employees/{id}                     Get employee details
    PUT    /api/employees/{id}/compensation        Set pay terms
    GET    /api/employees/{id}/compensation        Get pay terms

  Punches (punches.go):
    POST   /api/employees/{id}/punches             Record own punch
    POST   /api/punches/proxy                      Record punch on behalf
    GET    /api/employees/{id}/punches?from&to     Recorded events
    GET    /api/employees/{id}/state?date          Day state, next legal kinds

  Attendance and payroll (punches.go):
    GET    /api/employees/{id}/attendance?from&to  Daily records and totals
    GET    /api/employees/{id}/payslips/{period}   Monthly payslip (YYYY-MM)

  Reports (reports.go):
    GET    /api/reports/summary?from&to&granularity
    GET    /api/reports/export?from&to&format&fidelity

  Timesheets (timesheets.go):
    POST   /api/employees/{id}/timesheets          Open draft for a month
    GET    /api/timesheets                         List (?employee_id&status)
    GET    /api/timesheets/{id}                    Get timesheet
    POST   /api/timesheets/{id}/submit|approve|reject

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access
  - Recorder: atomic validate-and-append for punches
  - Rules, Location: attendance rules and the zone defining calendar days
  - Clock: fallback when the request carries no virtual time

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Duplicate punch, duplicate timesheet, illegal status transition
  - 422: Punch rejected by the clock rules ("code" carries the reason)
  - 500: Internal errors and caller contract violations

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/warp/punchclock/attendance"
	"github.com/warp/punchclock/clock"
	"github.com/warp/punchclock/payroll"
	"github.com/warp/punchclock/punch"
	"github.com/warp/punchclock/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	Store      *sqlite.Store
	Recorder   *punch.Recorder
	Validator  *punch.Validator
	Calculator *payroll.Calculator
	Rules      attendance.Rules
	Location   *time.Location
	Clock      clock.Clock
	Logger     *slog.Logger
}

// NewHandler creates a new handler on the system clock.
func NewHandler(store *sqlite.Store, rules attendance.Rules, loc *time.Location, logger *slog.Logger) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := clock.System{}
	v := punch.NewValidator(c, loc)
	return &Handler{
		Store:      store,
		Recorder:   punch.NewRecorder(store, v),
		Validator:  v,
		Calculator: payroll.NewCalculator(),
		Rules:      rules,
		Location:   loc,
		Clock:      c,
		Logger:     logger,
	}
}

// requestClock returns the request's clock: virtual time when installed, else h.Clock.
func (h *Handler) requestClock(ctx context.Context) clock.Clock {
	return clock.FromContext(ctx, h.Clock)
}

func (h *Handler) now(ctx context.Context) time.Time {
	return h.requestClock(ctx).Now()
}

func (h *Handler) aggregator(ctx context.Context) *attendance.Aggregator {
	return attendance.NewAggregator(h.Rules, h.Location, h.requestClock(ctx))
}

// attendanceFor loads and aggregates one employee's punches over period.
func (h *Handler) attendanceFor(ctx context.Context, employeeID punch.EmployeeID, period attendance.Period) (attendance.PeriodAttendance, error) {
	from, to := period.Bounds()
	events, err := h.Store.LoadRange(ctx, employeeID, from, to)
	if err != nil {
		return attendance.PeriodAttendance{}, fmt.Errorf("load punches: %w", err)
	}
	pa, err := h.aggregator(ctx).Aggregate(events, period)
	if err != nil {
		return attendance.PeriodAttendance{}, err
	}
	pa.EmployeeID = employeeID
	return pa, nil
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	employees, err := h.Store.ListEmployees(r.Context(), activeOnly)
	if err != nil {
		h.internalError(w, r, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.requireEmployee(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// CreateEmployee creates an employee, or updates it when the ID exists.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Code) == "" || strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "code and name are required", nil)
		return
	}

	hireDate, err := time.ParseInLocation(time.DateOnly, req.HireDate, h.Location)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid hire_date format (use YYYY-MM-DD)", err)
		return
	}

	emp := sqlite.Employee{
		ID:         req.ID,
		Code:       req.Code,
		Name:       req.Name,
		Email:      req.Email,
		Department: req.Department,
		HireDate:   hireDate,
		Active:     true,
	}
	if emp.ID == "" {
		emp.ID = uuid.New().String()
	}

	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		if errors.Is(err, sqlite.ErrDuplicateEmployeeCode) {
			writeError(w, http.StatusConflict, "Employee code already in use", err)
			return
		}
		h.internalError(w, r, "Failed to create employee", err)
		return
	}

	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// PutCompensation sets an employee's pay terms.
func (h *Handler) PutCompensation(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.requireEmployee(w, r)
	if !ok {
		return
	}

	var req CompensationDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	profile := req.toProfile(punch.EmployeeID(emp.ID))
	if err := profile.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid compensation profile", err)
		return
	}
	if err := h.Store.SaveCompensationProfile(r.Context(), profile); err != nil {
		h.internalError(w, r, "Failed to save compensation profile", err)
		return
	}

	writeJSON(w, http.StatusOK, toCompensationDTO(profile))
}

// GetCompensation returns an employee's pay terms.
func (h *Handler) GetCompensation(w http.ResponseWriter, r *http.Request) {
	id := punch.EmployeeID(chi.URLParam(r, "id"))

	profile, err := h.Store.FetchCompensationProfile(r.Context(), id)
	if err != nil {
		h.internalError(w, r, "Failed to get compensation profile", err)
		return
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, "Compensation profile not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toCompensationDTO(*profile))
}

// requireEmployee loads the employee named by the {id} URL parameter, writing
// 404 when absent.
func (h *Handler) requireEmployee(w http.ResponseWriter, r *http.Request) (*sqlite.Employee, bool) {
	id := chi.URLParam(r, "id")

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		h.internalError(w, r, "Failed to get employee", err)
		return nil, false
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return nil, false
	}
	return emp, true
}

// =============================================================================
// QUERY PARSING
// =============================================================================

// periodQuery reads ?from&to as an inclusive date range. Both default to the
// current month.
func (h *Handler) periodQuery(r *http.Request) (attendance.Period, error) {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	if from == "" && to == "" {
		return attendance.MonthOf(h.now(r.Context()), h.Location), nil
	}
	if from == "" || to == "" {
		return attendance.Period{}, errors.New("from and to must be given together")
	}
	return attendance.ParseRange(from, to, h.Location)
}

// parseInstant accepts RFC 3339, with or without fractional seconds.
func parseInstant(s string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q (use RFC 3339)", s)
	}
	return t.In(loc), nil
}

// =============================================================================
// HELPERS
// =============================================================================

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// internalError logs err and writes a 500.
func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, message string, err error) {
	h.Logger.ErrorContext(r.Context(), message, slog.String("path", r.URL.Path), slog.Any("error", err))
	writeError(w, http.StatusInternalServerError, message, err)
}

// writePunchError maps the punch error categories onto HTTP statuses.
func (h *Handler) writePunchError(w http.ResponseWriter, r *http.Request, err error) {
	var rej *punch.RejectionError
	switch {
	case errors.As(err, &rej):
		status := http.StatusUnprocessableEntity
		if rej.Reason == punch.ReasonDuplicateEvent {
			status = http.StatusConflict
		}
		h.Logger.InfoContext(r.Context(), "punch rejected",
			slog.String("reason", string(rej.Reason)),
			slog.String("kind", string(rej.Kind)),
			slog.Time("at", rej.At),
		)
		writeJSON(w, status, ErrorResponse{Error: rej.Reason.Message(), Code: string(rej.Reason)})
	case errors.Is(err, punch.ErrInvalidEvent):
		writeError(w, http.StatusBadRequest, "Invalid punch", err)
	case errors.Is(err, punch.ErrContractViolation):
		h.internalError(w, r, "Recorded punches are inconsistent", err)
	default:
		h.internalError(w, r, "Failed to record punch", err)
	}
}
