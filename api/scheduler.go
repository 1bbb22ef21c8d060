/*
scheduler.go - Month-end timesheet scheduler

PURPOSE:
  Periodically opens draft timesheets for the month that just closed, one
  per employee with punches in that month, so approvers find them waiting.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Runs once immediately on start
  - Idempotent: an existing timesheet for the employee and month is skipped
    (the unique index on timesheets makes a concurrent double-create fail
    with timesheet.ErrAlreadyExists)

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour, SCHEDULER_INTERVAL)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewTimesheetScheduler(handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - timesheets.go: CreateTimesheet endpoint (manual draft)
  - timesheet/: workflow rules
*/
package api

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/warp/punchclock/attendance"
	"github.com/warp/punchclock/timesheet"
)

// TimesheetScheduler opens month-end draft timesheets.
type TimesheetScheduler struct {
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// RunResult counts what one pass did.
type RunResult struct {
	Period  attendance.Period
	Created int
	Skipped int
	Failed  int
}

// NewTimesheetScheduler creates a new scheduler.
func NewTimesheetScheduler(handler *Handler) *TimesheetScheduler {
	return &TimesheetScheduler{
		Handler:       handler,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan struct{}),
	}
}

// Start begins the scheduler.
func (ts *TimesheetScheduler) Start() {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	logger := ts.Handler.Logger
	if !ts.Enabled {
		logger.Info("timesheet scheduler disabled, not starting")
		return
	}

	ts.ticker = time.NewTicker(ts.CheckInterval)
	ts.wg.Add(1)

	go ts.run()

	logger.Info("timesheet scheduler started", slog.Duration("interval", ts.CheckInterval))
}

// Stop stops the scheduler and waits for an in-flight pass.
func (ts *TimesheetScheduler) Stop() {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.ticker != nil {
		ts.ticker.Stop()
		close(ts.stop)
		ts.wg.Wait()
		ts.ticker = nil
		ts.Handler.Logger.Info("timesheet scheduler stopped")
	}
}

func (ts *TimesheetScheduler) run() {
	defer ts.wg.Done()

	// Run immediately on start
	ts.RunNow(context.Background())

	for {
		select {
		case <-ts.ticker.C:
			ts.RunNow(context.Background())
		case <-ts.stop:
			return
		}
	}
}

// RunNow opens drafts for the month before the current one. A clock in ctx
// (clock.WithContext) decides what "current" is.
func (ts *TimesheetScheduler) RunNow(ctx context.Context) RunResult {
	h := ts.Handler
	period := attendance.MonthOf(h.now(ctx), h.Location).PreviousMonth()
	res := RunResult{Period: period}

	from, to := period.Bounds()
	employees, err := h.Store.EmployeesWithPunches(ctx, from, to)
	if err != nil {
		h.Logger.ErrorContext(ctx, "timesheet scheduler: listing employees failed",
			slog.String("period", period.Month()), slog.Any("error", err))
		return res
	}

	for _, id := range employees {
		_, err := h.openTimesheet(ctx, id, period)
		switch {
		case err == nil:
			res.Created++
		case errors.Is(err, timesheet.ErrAlreadyExists):
			res.Skipped++
		default:
			res.Failed++
			h.Logger.ErrorContext(ctx, "timesheet scheduler: opening draft failed",
				slog.String("employee_id", string(id)),
				slog.String("period", period.Month()),
				slog.Any("error", err))
		}
	}

	if res.Created > 0 || res.Failed > 0 {
		h.Logger.InfoContext(ctx, "timesheet scheduler pass completed",
			slog.String("period", period.Month()),
			slog.Int("created", res.Created),
			slog.Int("skipped", res.Skipped),
			slog.Int("failed", res.Failed))
	}
	return res
}
