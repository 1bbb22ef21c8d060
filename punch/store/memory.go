// Package store provides in-memory punch.Store implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/punchclock/punch"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu     sync.RWMutex
	events map[punch.EmployeeID][]punch.Event
	keys   map[string]bool
}

func NewMemory() *Memory {
	return &Memory{
		events: make(map[punch.EmployeeID][]punch.Event),
		keys:   make(map[string]bool),
	}
}

// Append adds a single event. Append-only.
func (m *Memory) Append(_ context.Context, ev punch.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendLocked(ev)
}

func (m *Memory) appendLocked(ev punch.Event) error {
	key := ev.IdempotencyKey()
	if m.keys[key] {
		return punch.ErrDuplicateEvent
	}

	evs := m.events[ev.EmployeeID]

	// Keep the slice sorted by At; equal instants keep insertion order.
	i := sort.Search(len(evs), func(i int) bool {
		return evs[i].At.After(ev.At)
	})
	evs = append(evs, punch.Event{})
	copy(evs[i+1:], evs[i:])
	evs[i] = ev
	m.events[ev.EmployeeID] = evs

	m.keys[key] = true
	return nil
}

func (m *Memory) LoadRange(_ context.Context, employeeID punch.EmployeeID, from, to time.Time) ([]punch.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loadRangeLocked(employeeID, from, to), nil
}

func (m *Memory) loadRangeLocked(employeeID punch.EmployeeID, from, to time.Time) []punch.Event {
	var result []punch.Event
	for _, ev := range m.events[employeeID] {
		if !ev.At.Before(from) && ev.At.Before(to) {
			result = append(result, ev)
		}
	}
	return result
}

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// TxMemory wraps Memory with transaction support.
type TxMemory struct {
	*Memory
}

func NewTxMemory() *TxMemory {
	return &TxMemory{Memory: NewMemory()}
}

// WithTx executes fn while holding the write lock, so the callback sees and
// changes a stable snapshot. Writes are rolled back if fn fails.
func (tm *TxMemory) WithTx(_ context.Context, fn func(punch.Store) error) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	snapshot := tm.snapshot()
	if err := fn(&txMemoryView{parent: tm}); err != nil {
		tm.restore(snapshot)
		return err
	}
	return nil
}

type memorySnapshot struct {
	events map[punch.EmployeeID][]punch.Event
	keys   map[string]bool
}

func (tm *TxMemory) snapshot() memorySnapshot {
	events := make(map[punch.EmployeeID][]punch.Event, len(tm.events))
	for k, v := range tm.events {
		events[k] = append([]punch.Event(nil), v...)
	}
	keys := make(map[string]bool, len(tm.keys))
	for k, v := range tm.keys {
		keys[k] = v
	}
	return memorySnapshot{events: events, keys: keys}
}

func (tm *TxMemory) restore(s memorySnapshot) {
	tm.events = s.events
	tm.keys = s.keys
}

// txMemoryView runs under the parent's lock.
type txMemoryView struct {
	parent *TxMemory
}

func (tv *txMemoryView) Append(_ context.Context, ev punch.Event) error {
	return tv.parent.appendLocked(ev)
}

func (tv *txMemoryView) LoadRange(_ context.Context, employeeID punch.EmployeeID, from, to time.Time) ([]punch.Event, error) {
	return tv.parent.loadRangeLocked(employeeID, from, to), nil
}
