package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/punchclock/punch"
	"github.com/warp/punchclock/punch/store"
)

func event(kind punch.Kind, hh int) punch.Event {
	return punch.Event{
		ID:         punch.EventID(string(kind) + "-" + time.Duration(hh).String()),
		EmployeeID: "emp-1",
		Kind:       kind,
		At:         time.Date(2025, time.March, 10, hh, 0, 0, 0, time.UTC),
	}
}

func TestMemory_LoadRangeIsSortedAndHalfOpen(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	require.NoError(t, m.Append(ctx, event(punch.ClockOut, 18)))
	require.NoError(t, m.Append(ctx, event(punch.ClockIn, 9)))
	require.NoError(t, m.Append(ctx, event(punch.BreakStart, 12)))

	from := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	to := time.Date(2025, time.March, 10, 18, 0, 0, 0, time.UTC)
	got, err := m.LoadRange(ctx, "emp-1", from, to)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, punch.ClockIn, got[0].Kind)
	assert.Equal(t, punch.BreakStart, got[1].Kind)
}

func TestMemory_DuplicateKeyRejected(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	e := event(punch.ClockIn, 9)
	require.NoError(t, m.Append(ctx, e))

	e.ID = "other-id"
	assert.ErrorIs(t, m.Append(ctx, e), punch.ErrDuplicateEvent)
}

func TestTxMemory_RollbackOnError(t *testing.T) {
	// GIVEN: a transaction that appends and then fails
	ctx := context.Background()
	m := store.NewTxMemory()
	boom := errors.New("boom")

	err := m.WithTx(ctx, func(tx punch.Store) error {
		if err := tx.Append(ctx, event(punch.ClockIn, 9)); err != nil {
			return err
		}
		return boom
	})

	// THEN: the error surfaces and nothing is persisted
	assert.ErrorIs(t, err, boom)
	day := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	got, err := m.LoadRange(ctx, "emp-1", day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Empty(t, got)

	// AND: the key is free again
	assert.NoError(t, m.Append(ctx, event(punch.ClockIn, 9)))
}
