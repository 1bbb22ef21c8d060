/*
Package timesheet implements the monthly timesheet approval workflow.

PURPOSE:
  A timesheet freezes an employee's attendance totals for one period and
  carries them through review:

    draft --Submit--> submitted --Approve--> approved
                               \--Reject---> rejected

  Only drafts can be refreshed or submitted. Only submitted timesheets can
  be approved or rejected. Approved and rejected are terminal; a rejected
  period is corrected by creating a new draft.

  Transitions are methods on the value; persistence is the Store's concern.

SEE ALSO:
  - attendance/: source of Totals
  - api/scheduler.go: creates drafts when a month closes
*/
package timesheet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/warp/punchclock/attendance"
	"github.com/warp/punchclock/punch"
)

// =============================================================================
// STATUS
// =============================================================================

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrNotFound          = errors.New("timesheet not found")
	ErrAlreadyExists     = errors.New("timesheet already exists for period")
	ErrInvalidTransition = errors.New("invalid timesheet status transition")
	ErrReasonRequired    = errors.New("rejection reason is required")
)

// =============================================================================
// TIMESHEET
// =============================================================================

type Timesheet struct {
	ID         string
	EmployeeID punch.EmployeeID
	Period     attendance.Period
	Status     Status
	Totals     attendance.Totals

	SubmittedAt     *time.Time
	ApprovedBy      string
	ApprovedAt      *time.Time
	RejectionReason string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// New creates a draft from pa's totals.
func New(pa attendance.PeriodAttendance, employeeID punch.EmployeeID, now time.Time) Timesheet {
	return Timesheet{
		ID:         uuid.New().String(),
		EmployeeID: employeeID,
		Period:     pa.Period,
		Status:     StatusDraft,
		Totals:     pa.Totals,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Refresh replaces a draft's totals with a new aggregate.
func (t *Timesheet) Refresh(totals attendance.Totals, now time.Time) error {
	if err := t.expect(StatusDraft, "refresh"); err != nil {
		return err
	}
	t.Totals = totals
	t.UpdatedAt = now
	return nil
}

func (t *Timesheet) Submit(now time.Time) error {
	if err := t.expect(StatusDraft, "submit"); err != nil {
		return err
	}
	t.Status = StatusSubmitted
	t.SubmittedAt = &now
	t.UpdatedAt = now
	return nil
}

func (t *Timesheet) Approve(approver string, now time.Time) error {
	if err := t.expect(StatusSubmitted, "approve"); err != nil {
		return err
	}
	t.Status = StatusApproved
	t.ApprovedBy = approver
	t.ApprovedAt = &now
	t.UpdatedAt = now
	return nil
}

func (t *Timesheet) Reject(reviewer, reason string, now time.Time) error {
	if err := t.expect(StatusSubmitted, "reject"); err != nil {
		return err
	}
	if strings.TrimSpace(reason) == "" {
		return ErrReasonRequired
	}
	t.Status = StatusRejected
	t.ApprovedBy = reviewer
	t.RejectionReason = reason
	t.UpdatedAt = now
	return nil
}

func (t *Timesheet) expect(want Status, action string) error {
	if t.Status != want {
		return fmt.Errorf("%w: cannot %s a %s timesheet", ErrInvalidTransition, action, t.Status)
	}
	return nil
}

// =============================================================================
// STORE
// =============================================================================

// Filter narrows List. Zero fields match everything.
type Filter struct {
	EmployeeID punch.EmployeeID
	Status     Status
}

type Store interface {
	// CreateTimesheet returns ErrAlreadyExists if the employee already has a
	// timesheet starting on the same date.
	CreateTimesheet(ctx context.Context, t Timesheet) error
	UpdateTimesheet(ctx context.Context, t Timesheet) error
	GetTimesheet(ctx context.Context, id string) (Timesheet, error)
	FindTimesheet(ctx context.Context, employeeID punch.EmployeeID, period attendance.Period) (Timesheet, error)
	ListTimesheets(ctx context.Context, f Filter) ([]Timesheet, error)
}
