/*
dto.go - Data Transfer Objects for API requests/responses

PURPOSE:
  Defines the JSON structures for API communication. These are separate
  from domain types so the wire format can stay stable while the domain
  evolves.

CONVENTIONS:
  - JSON field names use snake_case
  - Instants are RFC 3339 strings in the configured zone
  - Dates are YYYY-MM-DD strings
  - Money and hours are decimal strings ("315000", "7.5")
  - Optional fields use pointers with omitempty

SEE ALSO:
  - handlers.go: Uses these DTOs
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/punchclock/attendance"
	"github.com/warp/punchclock/payroll"
	"github.com/warp/punchclock/punch"
	"github.com/warp/punchclock/report"
	"github.com/warp/punchclock/store/sqlite"
	"github.com/warp/punchclock/timesheet"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Department string `json:"department,omitempty"`
	HireDate   string `json:"hire_date"`
	Active     bool   `json:"active"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// CreateEmployeeRequest is the request to create an employee.
type CreateEmployeeRequest struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
	HireDate   string `json:"hire_date"`
}

// CompensationDTO is an employee's pay terms. On PUT, omitted rates keep the
// standard defaults.
type CompensationDTO struct {
	EmployeeID           string           `json:"employee_id,omitempty"`
	BaseSalary           decimal.Decimal  `json:"base_salary"`
	StandardMonthlyHours *decimal.Decimal `json:"standard_monthly_hours,omitempty"`
	CommutingAllowance   decimal.Decimal  `json:"commuting_allowance"`
	ResidentTax          decimal.Decimal  `json:"resident_tax"`

	HealthInsuranceRate     *decimal.Decimal `json:"health_insurance_rate,omitempty"`
	PensionRate             *decimal.Decimal `json:"pension_rate,omitempty"`
	EmploymentInsuranceRate *decimal.Decimal `json:"employment_insurance_rate,omitempty"`
	IncomeTaxRate           *decimal.Decimal `json:"income_tax_rate,omitempty"`
	OvertimeMultiplier      *decimal.Decimal `json:"overtime_multiplier,omitempty"`
	NightPremium            *decimal.Decimal `json:"night_premium,omitempty"`
}

// =============================================================================
// PUNCHES
// =============================================================================

// PunchRequest records a punch for the employee in the URL. At defaults to
// the server's current time.
type PunchRequest struct {
	Kind   string  `json:"kind"`
	At     *string `json:"at,omitempty"`
	Note   string  `json:"note,omitempty"`
	Device string  `json:"device,omitempty"`
}

// ProxyPunchRequest records a punch on someone else's behalf. At is required.
type ProxyPunchRequest struct {
	EmployeeID string `json:"employee_id"`
	Kind       string `json:"kind"`
	At         string `json:"at"`
	ProxyBy    string `json:"proxy_by"`
	Reason     string `json:"reason"`
	Note       string `json:"note,omitempty"`
}

// PunchDTO represents a recorded punch.
type PunchDTO struct {
	ID          string `json:"id"`
	EmployeeID  string `json:"employee_id"`
	Kind        string `json:"kind"`
	At          string `json:"at"`
	Note        string `json:"note,omitempty"`
	Device      string `json:"device,omitempty"`
	ProxyBy     string `json:"proxy_by,omitempty"`
	ProxyReason string `json:"proxy_reason,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// DayStateDTO is where an employee stands on one date and which punches are
// legal next.
type DayStateDTO struct {
	EmployeeID string   `json:"employee_id"`
	Date       string   `json:"date"`
	Phase      string   `json:"phase"`
	ClockIn    *string  `json:"clock_in,omitempty"`
	ClockOut   *string  `json:"clock_out,omitempty"`
	Allowed    []string `json:"allowed"`
}

// =============================================================================
// ATTENDANCE
// =============================================================================

// DailyAttendanceDTO is one employee-date.
type DailyAttendanceDTO struct {
	Date              string  `json:"date"`
	ClockIn           *string `json:"clock_in,omitempty"`
	ClockOut          *string `json:"clock_out,omitempty"`
	BreakMinutes      int     `json:"break_minutes"`
	WorkedMinutes     int     `json:"worked_minutes"`
	OvertimeMinutes   int     `json:"overtime_minutes"`
	NightMinutes      int     `json:"night_minutes"`
	ScheduledMinutes  int     `json:"scheduled_minutes"`
	Late              bool    `json:"late"`
	LateMinutes       int     `json:"late_minutes"`
	EarlyLeave        bool    `json:"early_leave"`
	EarlyLeaveMinutes int     `json:"early_leave_minutes"`
	Open              bool    `json:"open"`
	InProgress        bool    `json:"in_progress"`
	PunchCount        int     `json:"punch_count"`
}

// TotalsDTO are period sums.
type TotalsDTO struct {
	WorkedMinutes    int `json:"worked_minutes"`
	OvertimeMinutes  int `json:"overtime_minutes"`
	NightMinutes     int `json:"night_minutes"`
	ScheduledMinutes int `json:"scheduled_minutes"`
	BreakMinutes     int `json:"break_minutes"`
	LateCount        int `json:"late_count"`
	EarlyLeaveCount  int `json:"early_leave_count"`
	WorkDays         int `json:"work_days"`
	OpenDays         int `json:"open_days"`
}

// AttendanceDTO is one employee's attendance over a period.
type AttendanceDTO struct {
	EmployeeID string               `json:"employee_id"`
	From       string               `json:"from"`
	To         string               `json:"to"`
	Daily      []DailyAttendanceDTO `json:"daily"`
	Totals     TotalsDTO            `json:"totals"`
	PunchCount int                  `json:"punch_count"`
}

// =============================================================================
// PAYROLL
// =============================================================================

// LineItemDTO is one payment or deduction.
type LineItemDTO struct {
	Code      string           `json:"code"`
	Name      string           `json:"name"`
	Quantity  *decimal.Decimal `json:"quantity,omitempty"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	Amount    decimal.Decimal  `json:"amount"`
}

// PayslipDTO is one employee's pay for one month.
type PayslipDTO struct {
	EmployeeID     string          `json:"employee_id"`
	Period         string          `json:"period"`
	From           string          `json:"from"`
	To             string          `json:"to"`
	PaymentDate    string          `json:"payment_date"`
	Payments       []LineItemDTO   `json:"payments"`
	Deductions     []LineItemDTO   `json:"deductions"`
	GrossTotal     decimal.Decimal `json:"gross_total"`
	DeductionTotal decimal.Decimal `json:"deduction_total"`
	NetTotal       decimal.Decimal `json:"net_total"`
	Attendance     TotalsDTO       `json:"attendance"`
}

// =============================================================================
// REPORTS
// =============================================================================

// ReportRowDTO is one summary line.
type ReportRowDTO struct {
	EmployeeID      string          `json:"employee_id"`
	EmployeeCode    string          `json:"employee_code"`
	EmployeeName    string          `json:"employee_name"`
	Department      string          `json:"department,omitempty"`
	Start           string          `json:"start"`
	End             string          `json:"end"`
	ClockIn         *string         `json:"clock_in,omitempty"`
	ClockOut        *string         `json:"clock_out,omitempty"`
	WorkedMinutes   int             `json:"worked_minutes"`
	WorkedHours     decimal.Decimal `json:"worked_hours"`
	ScheduledHours  decimal.Decimal `json:"scheduled_hours"`
	OvertimeHours   decimal.Decimal `json:"overtime_hours"`
	NightHours      decimal.Decimal `json:"night_hours"`
	BreakMinutes    int             `json:"break_minutes"`
	Utilization     decimal.Decimal `json:"utilization"`
	LateCount       int             `json:"late_count"`
	EarlyLeaveCount int             `json:"early_leave_count"`
	WorkDays        int             `json:"work_days"`
	OpenDays        int             `json:"open_days"`
}

// ReportDTO is a summary report.
type ReportDTO struct {
	From        string         `json:"from"`
	To          string         `json:"to"`
	Granularity string         `json:"granularity"`
	Rows        []ReportRowDTO `json:"rows"`
}

// =============================================================================
// TIMESHEETS
// =============================================================================

// CreateTimesheetRequest opens a draft for a month (YYYY-MM).
type CreateTimesheetRequest struct {
	Period string `json:"period"`
}

// ApproveTimesheetRequest names the approver.
type ApproveTimesheetRequest struct {
	Approver string `json:"approver"`
}

// RejectTimesheetRequest names the reviewer and why.
type RejectTimesheetRequest struct {
	Reviewer string `json:"reviewer"`
	Reason   string `json:"reason"`
}

// TimesheetDTO represents a timesheet.
type TimesheetDTO struct {
	ID              string    `json:"id"`
	EmployeeID      string    `json:"employee_id"`
	From            string    `json:"from"`
	To              string    `json:"to"`
	Status          string    `json:"status"`
	Totals          TotalsDTO `json:"totals"`
	SubmittedAt     *string   `json:"submitted_at,omitempty"`
	ApprovedBy      string    `json:"approved_by,omitempty"`
	ApprovedAt      *string   `json:"approved_at,omitempty"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	CreatedAt       string    `json:"created_at"`
	UpdatedAt       string    `json:"updated_at"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func formatInstant(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(time.RFC3339)
}

func formatOptInstant(t *time.Time, loc *time.Location) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := formatInstant(*t, loc)
	return &s
}

func formatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

func toEmployeeDTO(e sqlite.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:         e.ID,
		Code:       e.Code,
		Name:       e.Name,
		Email:      e.Email,
		Department: e.Department,
		HireDate:   formatDate(e.HireDate),
		Active:     e.Active,
	}
	if !e.CreatedAt.IsZero() {
		dto.CreatedAt = e.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toCompensationDTO(p payroll.CompensationProfile) CompensationDTO {
	return CompensationDTO{
		EmployeeID:              string(p.EmployeeID),
		BaseSalary:              p.BaseSalary,
		StandardMonthlyHours:    &p.StandardMonthlyHours,
		CommutingAllowance:      p.CommutingAllowance,
		ResidentTax:             p.ResidentTax,
		HealthInsuranceRate:     &p.HealthInsuranceRate,
		PensionRate:             &p.PensionRate,
		EmploymentInsuranceRate: &p.EmploymentInsuranceRate,
		IncomeTaxRate:           &p.IncomeTaxRate,
		OvertimeMultiplier:      &p.OvertimeMultiplier,
		NightPremium:            &p.NightPremium,
	}
}

// toProfile applies req over the default profile for employeeID.
func (req CompensationDTO) toProfile(employeeID punch.EmployeeID) payroll.CompensationProfile {
	p := payroll.DefaultProfile(employeeID, req.BaseSalary, req.CommutingAllowance, req.ResidentTax)
	overrides := []struct {
		src *decimal.Decimal
		dst *decimal.Decimal
	}{
		{req.StandardMonthlyHours, &p.StandardMonthlyHours},
		{req.HealthInsuranceRate, &p.HealthInsuranceRate},
		{req.PensionRate, &p.PensionRate},
		{req.EmploymentInsuranceRate, &p.EmploymentInsuranceRate},
		{req.IncomeTaxRate, &p.IncomeTaxRate},
		{req.OvertimeMultiplier, &p.OvertimeMultiplier},
		{req.NightPremium, &p.NightPremium},
	}
	for _, o := range overrides {
		if o.src != nil {
			*o.dst = *o.src
		}
	}
	return p
}

func toPunchDTO(e punch.Event, loc *time.Location) PunchDTO {
	dto := PunchDTO{
		ID:          string(e.ID),
		EmployeeID:  string(e.EmployeeID),
		Kind:        string(e.Kind),
		At:          formatInstant(e.At, loc),
		Note:        e.Note,
		Device:      e.Device,
		ProxyBy:     e.ProxyBy,
		ProxyReason: e.ProxyReason,
	}
	if !e.CreatedAt.IsZero() {
		dto.CreatedAt = formatInstant(e.CreatedAt, loc)
	}
	return dto
}

func toDayStateDTO(employeeID punch.EmployeeID, day time.Time, s punch.DayState, loc *time.Location) DayStateDTO {
	dto := DayStateDTO{
		EmployeeID: string(employeeID),
		Date:       formatDate(day),
		Phase:      s.Phase.String(),
		ClockIn:    formatOptInstant(&s.ClockIn, loc),
		ClockOut:   formatOptInstant(&s.ClockOut, loc),
		Allowed:    []string{},
	}
	for _, k := range punch.Kinds {
		if _, rej := s.Next(k, s.Last.Add(time.Minute)); rej == nil {
			dto.Allowed = append(dto.Allowed, string(k))
		}
	}
	return dto
}

func toTotalsDTO(t attendance.Totals) TotalsDTO {
	return TotalsDTO{
		WorkedMinutes:    t.WorkedMinutes,
		OvertimeMinutes:  t.OvertimeMinutes,
		NightMinutes:     t.NightMinutes,
		ScheduledMinutes: t.ScheduledMinutes,
		BreakMinutes:     t.BreakMinutes,
		LateCount:        t.LateCount,
		EarlyLeaveCount:  t.EarlyLeaveCount,
		WorkDays:         t.WorkDays,
		OpenDays:         t.OpenDays,
	}
}

func toAttendanceDTO(pa attendance.PeriodAttendance, loc *time.Location) AttendanceDTO {
	dto := AttendanceDTO{
		EmployeeID: string(pa.EmployeeID),
		From:       formatDate(pa.Period.Start),
		To:         formatDate(pa.Period.End),
		Daily:      make([]DailyAttendanceDTO, len(pa.Daily)),
		Totals:     toTotalsDTO(pa.Totals),
		PunchCount: pa.PunchCount,
	}
	for i, d := range pa.Daily {
		dto.Daily[i] = DailyAttendanceDTO{
			Date:              formatDate(d.Date),
			ClockIn:           formatOptInstant(d.ClockIn, loc),
			ClockOut:          formatOptInstant(d.ClockOut, loc),
			BreakMinutes:      d.BreakMinutes,
			WorkedMinutes:     d.WorkedMinutes,
			OvertimeMinutes:   d.OvertimeMinutes,
			NightMinutes:      d.NightMinutes,
			ScheduledMinutes:  d.ScheduledMinutes,
			Late:              d.Late,
			LateMinutes:       d.LateMinutes,
			EarlyLeave:        d.EarlyLeave,
			EarlyLeaveMinutes: d.EarlyLeaveMinutes,
			Open:              d.Open,
			InProgress:        d.InProgress,
			PunchCount:        d.PunchCount,
		}
	}
	return dto
}

func toLineItemDTOs(items []payroll.LineItem) []LineItemDTO {
	out := make([]LineItemDTO, len(items))
	for i, li := range items {
		out[i] = LineItemDTO{
			Code:      li.Code,
			Name:      li.Name,
			Quantity:  li.Quantity,
			UnitPrice: li.UnitPrice,
			Amount:    li.Amount,
		}
	}
	return out
}

func toPayslipDTO(p payroll.Payslip) PayslipDTO {
	return PayslipDTO{
		EmployeeID:     string(p.EmployeeID),
		Period:         p.Period.Month(),
		From:           formatDate(p.Period.Start),
		To:             formatDate(p.Period.End),
		PaymentDate:    formatDate(p.PaymentDate),
		Payments:       toLineItemDTOs(p.Payments),
		Deductions:     toLineItemDTOs(p.Deductions),
		GrossTotal:     p.GrossTotal,
		DeductionTotal: p.DeductionTotal,
		NetTotal:       p.NetTotal,
		Attendance:     toTotalsDTO(p.Attendance),
	}
}

func toReportDTO(t report.Table, period attendance.Period, loc *time.Location) ReportDTO {
	dto := ReportDTO{
		From:        formatDate(period.Start),
		To:          formatDate(period.End),
		Granularity: string(t.Granularity),
		Rows:        make([]ReportRowDTO, len(t.Rows)),
	}
	for i, r := range t.Rows {
		dto.Rows[i] = ReportRowDTO{
			EmployeeID:      string(r.EmployeeID),
			EmployeeCode:    r.EmployeeCode,
			EmployeeName:    r.EmployeeName,
			Department:      r.Department,
			Start:           formatDate(r.Start),
			End:             formatDate(r.End),
			ClockIn:         formatOptInstant(r.ClockIn, loc),
			ClockOut:        formatOptInstant(r.ClockOut, loc),
			WorkedMinutes:   r.WorkedMinutes,
			WorkedHours:     r.WorkedHours,
			ScheduledHours:  r.ScheduledHours,
			OvertimeHours:   r.OvertimeHours,
			NightHours:      r.NightHours,
			BreakMinutes:    r.BreakMinutes,
			Utilization:     r.Utilization,
			LateCount:       r.LateCount,
			EarlyLeaveCount: r.EarlyLeaveCount,
			WorkDays:        r.WorkDays,
			OpenDays:        r.OpenDays,
		}
	}
	return dto
}

func toTimesheetDTO(t timesheet.Timesheet, loc *time.Location) TimesheetDTO {
	return TimesheetDTO{
		ID:              t.ID,
		EmployeeID:      string(t.EmployeeID),
		From:            formatDate(t.Period.Start),
		To:              formatDate(t.Period.End),
		Status:          string(t.Status),
		Totals:          toTotalsDTO(t.Totals),
		SubmittedAt:     formatOptInstant(t.SubmittedAt, loc),
		ApprovedBy:      t.ApprovedBy,
		ApprovedAt:      formatOptInstant(t.ApprovedAt, loc),
		RejectionReason: t.RejectionReason,
		CreatedAt:       formatInstant(t.CreatedAt, loc),
		UpdatedAt:       formatInstant(t.UpdatedAt, loc),
	}
}
