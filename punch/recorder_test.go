package punch_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/punchclock/clock"
	"github.com/warp/punchclock/punch"
	"github.com/warp/punchclock/punch/store"
)

func newRecorder(now time.Time) (*punch.Recorder, *store.TxMemory) {
	mem := store.NewTxMemory()
	return punch.NewRecorder(mem, newValidator(now)), mem
}

func dayRange(t time.Time) (time.Time, time.Time) {
	from := clock.StartOfDay(t, jst)
	return from, from.AddDate(0, 0, 1)
}

func TestRecorder_RecordsAndAssignsID(t *testing.T) {
	ctx := context.Background()
	rec, mem := newRecorder(at(23, 0))

	got, err := rec.Record(ctx, ev(punch.ClockIn, at(9, 0)))
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.True(t, got.CreatedAt.Equal(at(23, 0)))

	from, to := dayRange(at(9, 0))
	stored, err := mem.LoadRange(ctx, "emp-1", from, to)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, got.ID, stored[0].ID)
}

func TestRecorder_RejectionLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	rec, mem := newRecorder(at(23, 0))

	_, err := rec.Record(ctx, ev(punch.ClockOut, at(18, 0)))
	requireReason(t, err, punch.ReasonNotClockedIn)

	from, to := dayRange(at(9, 0))
	stored, _ := mem.LoadRange(ctx, "emp-1", from, to)
	assert.Empty(t, stored)
}

func TestRecorder_ResubmissionIsConflict(t *testing.T) {
	ctx := context.Background()
	rec, _ := newRecorder(at(23, 0))

	_, err := rec.Record(ctx, ev(punch.ClockIn, at(9, 0)))
	require.NoError(t, err)

	_, err = rec.Record(ctx, ev(punch.ClockIn, at(9, 0)))
	assert.True(t, punch.IsConflict(err))
}

func TestRecorder_ProxyRequiresProxyBy(t *testing.T) {
	rec, _ := newRecorder(at(23, 0))

	_, err := rec.RecordProxy(context.Background(), ev(punch.ClockIn, at(9, 0)))
	assert.ErrorIs(t, err, punch.ErrInvalidEvent)
}

func TestRecorder_ProxyWindowUsesContextClock(t *testing.T) {
	// GIVEN: a recorder whose own clock is 2025-03-10
	rec, _ := newRecorder(at(23, 0))
	e := ev(punch.ClockIn, at(9, 0))
	e.ProxyBy = "mgr-1"
	e.ProxyReason = "forgot badge"

	// WHEN: the request runs under a virtual clock 40 days later
	ctx := clock.WithContext(context.Background(), clock.Fixed(at(9, 0).AddDate(0, 0, 40)))
	_, err := rec.RecordProxy(ctx, e)

	// THEN: the proxy window is measured from the virtual now
	requireReason(t, err, punch.ReasonProxyWindowExceeded)

	got, err := rec.RecordProxy(context.Background(), e)
	require.NoError(t, err)
	assert.True(t, got.IsProxy())
}

func TestRecorder_ConcurrentClockInsAcceptExactlyOne(t *testing.T) {
	// GIVEN: many concurrent clock-ins for the same employee and day
	ctx := context.Background()
	rec, mem := newRecorder(at(23, 0))

	const n = 20
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = rec.Record(ctx, ev(punch.ClockIn, at(9, i)))
		}(i)
	}
	wg.Wait()

	// THEN: exactly one is accepted, the rest see ALREADY_CLOCKED_IN
	accepted := 0
	for _, err := range errs {
		if err == nil {
			accepted++
			continue
		}
		requireReason(t, err, punch.ReasonAlreadyClockedIn)
	}
	assert.Equal(t, 1, accepted)

	from, to := dayRange(at(9, 0))
	stored, _ := mem.LoadRange(ctx, "emp-1", from, to)
	assert.Len(t, stored, 1)
}
