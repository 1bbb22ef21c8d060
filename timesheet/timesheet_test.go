package timesheet_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/punchclock/attendance"
	"github.com/warp/punchclock/timesheet"
)

var (
	jst = time.FixedZone("JST", 9*60*60)
	now = time.Date(2025, time.April, 1, 10, 0, 0, 0, jst)
)

func draft() timesheet.Timesheet {
	pa := attendance.PeriodAttendance{
		Period: attendance.MonthPeriod(2025, time.March, jst),
		Totals: attendance.Totals{WorkedMinutes: 9600, WorkDays: 20},
	}
	return timesheet.New(pa, "emp-1", now)
}

func TestTimesheet_ApprovalFlow(t *testing.T) {
	// GIVEN: a fresh draft
	ts := draft()
	assert.Equal(t, timesheet.StatusDraft, ts.Status)
	assert.NotEmpty(t, ts.ID)
	assert.Equal(t, 9600, ts.Totals.WorkedMinutes)

	// WHEN: submitted then approved
	require.NoError(t, ts.Submit(now.Add(time.Hour)))
	require.NoError(t, ts.Approve("mgr-1", now.Add(2*time.Hour)))

	// THEN: approval metadata is recorded
	assert.Equal(t, timesheet.StatusApproved, ts.Status)
	assert.Equal(t, "mgr-1", ts.ApprovedBy)
	require.NotNil(t, ts.SubmittedAt)
	require.NotNil(t, ts.ApprovedAt)
	assert.True(t, ts.ApprovedAt.After(*ts.SubmittedAt))
}

func TestTimesheet_RejectNeedsReason(t *testing.T) {
	ts := draft()
	require.NoError(t, ts.Submit(now))

	assert.ErrorIs(t, ts.Reject("mgr-1", "  ", now), timesheet.ErrReasonRequired)
	assert.Equal(t, timesheet.StatusSubmitted, ts.Status)

	require.NoError(t, ts.Reject("mgr-1", "missing punches on 3/14", now))
	assert.Equal(t, timesheet.StatusRejected, ts.Status)
	assert.Equal(t, "missing punches on 3/14", ts.RejectionReason)
}

func TestTimesheet_InvalidTransitions(t *testing.T) {
	ts := draft()
	assert.ErrorIs(t, ts.Approve("mgr-1", now), timesheet.ErrInvalidTransition)
	assert.ErrorIs(t, ts.Reject("mgr-1", "x", now), timesheet.ErrInvalidTransition)

	require.NoError(t, ts.Submit(now))
	assert.ErrorIs(t, ts.Submit(now), timesheet.ErrInvalidTransition)
	assert.ErrorIs(t, ts.Refresh(attendance.Totals{}, now), timesheet.ErrInvalidTransition)

	require.NoError(t, ts.Approve("mgr-1", now))
	assert.ErrorIs(t, ts.Reject("mgr-1", "late", now), timesheet.ErrInvalidTransition)
}

func TestTimesheet_RefreshDraft(t *testing.T) {
	ts := draft()
	later := now.Add(24 * time.Hour)

	require.NoError(t, ts.Refresh(attendance.Totals{WorkedMinutes: 100}, later))
	assert.Equal(t, 100, ts.Totals.WorkedMinutes)
	assert.Equal(t, later, ts.UpdatedAt)
}
