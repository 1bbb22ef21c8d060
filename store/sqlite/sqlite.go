/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Persists punch events, employees, compensation profiles and timesheets.
  The punch clock engine itself is pure; this package is the plumbing that
  loads its inputs and stores its outputs.

INTERFACES IMPLEMENTED:
  punch.TxStore:   Append-only punch event log
  timesheet.Store: Timesheet workflow records

APPEND-ONLY ENFORCEMENT:
  There are no UPDATE statements on punch_events and the only DELETE is
  Reset. A wrong punch is corrected by recording another one.

KEY TABLES:
  punch_events:          Immutable clock events
  employees:             Employee master data
  compensation_profiles: Pay terms, one row per employee
  timesheets:            Monthly approval records

INDEXES:
  - idx_punch_events_unique: (employee_id, kind, occurred_at) enforces the
    no-duplicate-punch rule even when two writers race
  - idx_punch_events_employee_time: day and period loads (hot path)
  - idx_timesheets_employee_period: one timesheet per employee and period

TIMESTAMPS:
  Instants are stored as fixed-width UTC text so that string order is time
  order and equal instants compare equal in the unique index.

CONCURRENCY:
  One connection (SQLite has a single writer) guarded by sync.RWMutex.
  WithTx holds the write lock for the whole callback, so a punch is
  validated and inserted against the same snapshot.

USAGE:
  store, err := sqlite.New("./data/punchclock.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  recorder := punch.NewRecorder(store, validator)

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - punch/store.go: Interface definitions
  - punch/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/punchclock/punch"
)

// timeLayout is fixed width so lexical order matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

var _ punch.TxStore = (*Store)(nil)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	loc *time.Location // zone of stored calendar dates
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: a second one to ":memory:" would be a different database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db, loc: time.UTC}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// SetLocation sets the zone calendar dates (hire dates, timesheet periods)
// are returned in. Defaults to UTC.
func (s *Store) SetLocation(loc *time.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loc = loc
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Employees
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		email TEXT,
		department TEXT,
		hire_date TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL
	);

	-- Punch events (append-only)
	CREATE TABLE IF NOT EXISTS punch_events (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		kind TEXT NOT NULL,
		occurred_at TEXT NOT NULL,
		note TEXT,
		device TEXT,
		proxy_by TEXT,
		proxy_reason TEXT,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_punch_events_unique
		ON punch_events(employee_id, kind, occurred_at);

	CREATE INDEX IF NOT EXISTS idx_punch_events_employee_time
		ON punch_events(employee_id, occurred_at);

	-- Compensation profiles (money as decimal text)
	CREATE TABLE IF NOT EXISTS compensation_profiles (
		employee_id TEXT PRIMARY KEY REFERENCES employees(id),
		base_salary TEXT NOT NULL,
		standard_monthly_hours TEXT NOT NULL,
		commuting_allowance TEXT NOT NULL,
		resident_tax TEXT NOT NULL,
		health_insurance_rate TEXT NOT NULL,
		pension_rate TEXT NOT NULL,
		employment_insurance_rate TEXT NOT NULL,
		income_tax_rate TEXT NOT NULL,
		overtime_multiplier TEXT NOT NULL,
		night_premium TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Timesheets (approval workflow)
	CREATE TABLE IF NOT EXISTS timesheets (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'draft',
		totals_json TEXT NOT NULL,
		submitted_at TEXT,
		approved_by TEXT,
		approved_at TEXT,
		rejection_reason TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_timesheets_employee_period
		ON timesheets(employee_id, period_start);
	CREATE INDEX IF NOT EXISTS idx_timesheets_status
		ON timesheets(status);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PUNCH STORE (punch.Store interface)
// =============================================================================

// Append adds an event to the log.
func (s *Store) Append(ctx context.Context, ev punch.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.appendEvent(ctx, s.db, ev)
}

func (s *Store) appendEvent(ctx context.Context, db querier, ev punch.Event) error {
	query := `
		INSERT INTO punch_events
		(id, employee_id, kind, occurred_at, note, device, proxy_by, proxy_reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	createdAt := ev.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := db.ExecContext(ctx, query,
		ev.ID,
		ev.EmployeeID,
		ev.Kind,
		formatTime(ev.At),
		nullString(ev.Note),
		nullString(ev.Device),
		nullString(ev.ProxyBy),
		nullString(ev.ProxyReason),
		formatTime(createdAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) && contains(err.Error(), "punch_events.employee_id") {
			return punch.ErrDuplicateEvent
		}
		return fmt.Errorf("failed to append punch event: %w", err)
	}
	return nil
}

// LoadRange returns the employee's events with from <= occurred_at < to.
func (s *Store) LoadRange(ctx context.Context, employeeID punch.EmployeeID, from, to time.Time) ([]punch.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loadRange(ctx, s.db, employeeID, from, to)
}

func (s *Store) loadRange(ctx context.Context, db querier, employeeID punch.EmployeeID, from, to time.Time) ([]punch.Event, error) {
	query := `
		SELECT id, employee_id, kind, occurred_at, note, device, proxy_by, proxy_reason, created_at
		FROM punch_events
		WHERE employee_id = ?
		  AND occurred_at >= ? AND occurred_at < ?
		ORDER BY occurred_at ASC, created_at ASC
	`

	rows, err := db.QueryContext(ctx, query, employeeID, formatTime(from), formatTime(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query punch events: %w", err)
	}
	defer rows.Close()

	var events []punch.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func scanEvent(rows *sql.Rows) (punch.Event, error) {
	var (
		ev          punch.Event
		occurredAt  string
		note        sql.NullString
		device      sql.NullString
		proxyBy     sql.NullString
		proxyReason sql.NullString
		createdAt   string
	)

	err := rows.Scan(
		&ev.ID, &ev.EmployeeID, &ev.Kind, &occurredAt,
		&note, &device, &proxyBy, &proxyReason, &createdAt,
	)
	if err != nil {
		return ev, fmt.Errorf("failed to scan punch event: %w", err)
	}

	if ev.At, err = parseTime(occurredAt); err != nil {
		return ev, err
	}
	if ev.CreatedAt, err = parseTime(createdAt); err != nil {
		return ev, err
	}
	ev.Note = note.String
	ev.Device = device.String
	ev.ProxyBy = proxyBy.String
	ev.ProxyReason = proxyReason.String
	return ev, nil
}

// EmployeesWithPunches lists employees with at least one event in [from, to).
func (s *Store) EmployeesWithPunches(ctx context.Context, from, to time.Time) ([]punch.EmployeeID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT employee_id FROM punch_events
		WHERE occurred_at >= ? AND occurred_at < ?
		ORDER BY employee_id
	`, formatTime(from), formatTime(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []punch.EmployeeID
	for rows.Next() {
		var id punch.EmployeeID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// =============================================================================
// TRANSACTIONAL STORE (punch.TxStore interface)
// =============================================================================

// WithTx executes a function within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store punch.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx, parent: s}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

type txStore struct {
	tx     *sql.Tx
	parent *Store
}

func (ts *txStore) Append(ctx context.Context, ev punch.Event) error {
	return ts.parent.appendEvent(ctx, ts.tx, ev)
}

func (ts *txStore) LoadRange(ctx context.Context, employeeID punch.EmployeeID, from, to time.Time) ([]punch.Event, error) {
	return ts.parent.loadRange(ctx, ts.tx, employeeID, from, to)
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"timesheets", "punch_events", "compensation_profiles", "employees"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored time %q: %w", s, err)
	}
	return t, nil
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseNullTime(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil
	}
	return &t
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && contains(err.Error(), "UNIQUE constraint failed")
}

func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}

