package punch

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/warp/punchclock/clock"
)

// =============================================================================
// RECORDER - Atomic validate-and-append
// =============================================================================

// Recorder is the write path for punches. It loads the candidate's day,
// validates against it and appends, all inside one Store transaction, so two
// concurrent requests for the same employee cannot both pass validation.
type Recorder struct {
	Store     TxStore
	Validator *Validator
}

func NewRecorder(store TxStore, v *Validator) *Recorder {
	return &Recorder{Store: store, Validator: v}
}

// Record validates and appends a punch made by the employee. The returned
// event carries its assigned ID and CreatedAt.
//
// A clock installed in ctx (clock.WithContext) replaces the validator's clock
// for this call.
func (r *Recorder) Record(ctx context.Context, ev Event) (Event, error) {
	return r.record(ctx, ev, false)
}

// RecordProxy records a punch on the employee's behalf. ev.ProxyBy is
// required and the proxy window applies.
func (r *Recorder) RecordProxy(ctx context.Context, ev Event) (Event, error) {
	if ev.ProxyBy == "" {
		return Event{}, fmt.Errorf("%w: proxy punch without proxy_by", ErrInvalidEvent)
	}
	return r.record(ctx, ev, true)
}

func (r *Recorder) record(ctx context.Context, ev Event, proxy bool) (Event, error) {
	if ev.EmployeeID == "" {
		return Event{}, fmt.Errorf("%w: missing employee", ErrInvalidEvent)
	}

	v := *r.Validator
	v.Clock = clock.FromContext(ctx, r.Validator.Clock)

	if ev.ID == "" {
		ev.ID = EventID(uuid.New().String())
	}
	ev.CreatedAt = v.now()

	err := r.Store.WithTx(ctx, func(tx Store) error {
		from := clock.StartOfDay(ev.At, v.location())
		existing, err := tx.LoadRange(ctx, ev.EmployeeID, from, from.AddDate(0, 0, 1))
		if err != nil {
			return fmt.Errorf("load day: %w", err)
		}

		if proxy {
			err = v.ValidateProxy(existing, ev)
		} else {
			err = v.Validate(existing, ev)
		}
		if err != nil {
			return err
		}

		if err := tx.Append(ctx, ev); err != nil {
			if errors.Is(err, ErrDuplicateEvent) {
				return reject(ReasonDuplicateEvent, ev.Kind, ev.At)
			}
			return fmt.Errorf("append event: %w", err)
		}
		return nil
	})
	if err != nil {
		return Event{}, err
	}
	return ev, nil
}
