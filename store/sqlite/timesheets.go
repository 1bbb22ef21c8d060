package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/warp/punchclock/attendance"
	"github.com/warp/punchclock/punch"
	"github.com/warp/punchclock/timesheet"
)

// =============================================================================
// TIMESHEET STORE (timesheet.Store interface)
// =============================================================================

var _ timesheet.Store = (*Store)(nil)

const timesheetColumns = `id, employee_id, period_start, period_end, status, totals_json,
	submitted_at, approved_by, approved_at, rejection_reason, created_at, updated_at`

// totalsJSON is the stored shape of attendance.Totals.
type totalsJSON struct {
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

func (s *Store) CreateTimesheet(ctx context.Context, t timesheet.Timesheet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	totals, err := json.Marshal(totalsJSON(t.Totals))
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO timesheets (`+timesheetColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.EmployeeID,
		t.Period.Start.Format(time.DateOnly), t.Period.End.Format(time.DateOnly),
		t.Status, string(totals),
		formatNullTime(t.SubmittedAt), nullString(t.ApprovedBy), formatNullTime(t.ApprovedAt),
		nullString(t.RejectionReason),
		formatTime(t.CreatedAt), formatTime(t.UpdatedAt),
	)
	if isUniqueConstraintError(err) {
		return timesheet.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to create timesheet: %w", err)
	}
	return nil
}

func (s *Store) UpdateTimesheet(ctx context.Context, t timesheet.Timesheet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	totals, err := json.Marshal(totalsJSON(t.Totals))
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE timesheets SET
			status = ?, totals_json = ?, submitted_at = ?, approved_by = ?,
			approved_at = ?, rejection_reason = ?, updated_at = ?
		WHERE id = ?`,
		t.Status, string(totals),
		formatNullTime(t.SubmittedAt), nullString(t.ApprovedBy), formatNullTime(t.ApprovedAt),
		nullString(t.RejectionReason), formatTime(t.UpdatedAt),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update timesheet: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return timesheet.ErrNotFound
	}
	return nil
}

func (s *Store) GetTimesheet(ctx context.Context, id string) (timesheet.Timesheet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `SELECT `+timesheetColumns+` FROM timesheets WHERE id = ?`, id)
	return scanTimesheet(row, s.loc)
}

func (s *Store) FindTimesheet(ctx context.Context, employeeID punch.EmployeeID, period attendance.Period) (timesheet.Timesheet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT `+timesheetColumns+` FROM timesheets
		WHERE employee_id = ? AND period_start = ?`,
		employeeID, period.Start.Format(time.DateOnly))
	return scanTimesheet(row, s.loc)
}

func (s *Store) ListTimesheets(ctx context.Context, f timesheet.Filter) ([]timesheet.Timesheet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + timesheetColumns + ` FROM timesheets WHERE 1 = 1`
	var args []any
	if f.EmployeeID != "" {
		query += " AND employee_id = ?"
		args = append(args, f.EmployeeID)
	}
	if f.Status != "" {
		query += " AND status = ?"
		args = append(args, f.Status)
	}
	query += " ORDER BY period_start DESC, employee_id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []timesheet.Timesheet
	for rows.Next() {
		t, err := scanTimesheet(rows, s.loc)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTimesheet(row scanner, loc *time.Location) (timesheet.Timesheet, error) {
	var (
		t                      timesheet.Timesheet
		periodStart, periodEnd string
		totals                 string
		submittedAt            sql.NullString
		approvedBy             sql.NullString
		approvedAt             sql.NullString
		rejectionReason        sql.NullString
		createdAt, updatedAt   string
	)

	err := row.Scan(&t.ID, &t.EmployeeID, &periodStart, &periodEnd, &t.Status, &totals,
		&submittedAt, &approvedBy, &approvedAt, &rejectionReason, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return t, timesheet.ErrNotFound
	}
	if err != nil {
		return t, fmt.Errorf("failed to scan timesheet: %w", err)
	}

	start, _ := time.ParseInLocation(time.DateOnly, periodStart, loc)
	end, _ := time.ParseInLocation(time.DateOnly, periodEnd, loc)
	t.Period = attendance.Period{Start: start, End: end}

	var tj totalsJSON
	if err := json.Unmarshal([]byte(totals), &tj); err != nil {
		return t, fmt.Errorf("corrupt timesheet totals %s: %w", t.ID, err)
	}
	t.Totals = attendance.Totals(tj)

	t.SubmittedAt = parseNullTime(submittedAt)
	t.ApprovedBy = approvedBy.String
	t.ApprovedAt = parseNullTime(approvedAt)
	t.RejectionReason = rejectionReason.String
	t.CreatedAt, _ = parseTime(createdAt)
	t.UpdatedAt, _ = parseTime(updatedAt)
	return t, nil
}
