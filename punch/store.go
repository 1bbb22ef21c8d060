/*
store.go - Persistence interface for punch events

PURPOSE:
  Defines the boundary between the punch write path and the database.
  Events are append-only: there is no Update and no Delete. A wrong punch
  is corrected by an administrator recording the right one, never by
  rewriting history.

UNIQUENESS:
  Implementations MUST refuse a second event with the same
  (EmployeeID, Kind, At) and report it as ErrDuplicateEvent. The validator
  catches duplicates within a snapshot; the storage constraint catches the
  race between two concurrent writers.

IMPLEMENTATIONS:
  - punch/store/memory.go: in-memory, for tests and development
  - store/sqlite/sqlite.go: SQLite with a unique index

SEE ALSO:
  - recorder.go: the only caller that writes
*/
package punch

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateEvent is returned by a Store when the (employee, kind, at)
// key already exists.
var ErrDuplicateEvent = errors.New("punch: duplicate event")

// Store persists punch events.
type Store interface {
	// Append persists one event. Returns ErrDuplicateEvent if the natural
	// key exists.
	Append(ctx context.Context, ev Event) error

	// LoadRange returns the employee's events with from <= At < to,
	// ascending by At.
	LoadRange(ctx context.Context, employeeID EmployeeID, from, to time.Time) ([]Event, error)
}

// TxStore wraps Store with transaction support.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}
