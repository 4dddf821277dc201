// Package capacity tracks live booked counts against fixed slot capacity.
//
// The tracker is the single serialization point for reservations: Reserve is
// an atomic compare-and-increment per slot, so concurrent callers racing for
// the last unit resolve to exactly one winner. Counters are independent per
// slot; unrelated slots never contend. Nothing here touches I/O.
package capacity

import (
	"errors"
	"sync"
	"sync/atomic"
)

var (
	// ErrSlotNotFound — the slot id was never registered.
	ErrSlotNotFound = errors.New("slot not found")
	// ErrCapacityExceeded — the slot is fully booked; callers should re-fetch
	// availability and retry with a different slot.
	ErrCapacityExceeded = errors.New("slot capacity exceeded")
	// ErrUnderflow — release on a slot with zero booked units. This is a logic
	// error upstream, never a normal outcome.
	ErrUnderflow = errors.New("release would drop booked count below zero")
)

// Usage is a point-in-time snapshot of one slot's counters.
type Usage struct {
	Booked   int
	Capacity int
}

// Remaining returns the unreserved units.
func (u Usage) Remaining() int { return u.Capacity - u.Booked }

type counter struct {
	capacity int64
	booked   atomic.Int64
}

// Tracker holds per-slot booked/capacity counters.
//
// The registry map is written only during startup registration; the RWMutex
// guards map access while all counter mutation goes through per-slot atomics.
type Tracker struct {
	mu    sync.RWMutex
	slots map[string]*counter
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{slots: make(map[string]*counter)}
}

// Register adds a slot with its capacity and current booked count. Called at
// startup while re-seeding from persisted reservations; re-registering an id
// replaces its counters.
func (t *Tracker) Register(slotID string, capacity, booked int) {
	if booked < 0 {
		booked = 0
	}
	if booked > capacity {
		booked = capacity
	}
	c := &counter{capacity: int64(capacity)}
	c.booked.Store(int64(booked))

	t.mu.Lock()
	t.slots[slotID] = c
	t.mu.Unlock()
}

func (t *Tracker) lookup(slotID string) (*counter, error) {
	t.mu.RLock()
	c, ok := t.slots[slotID]
	t.mu.RUnlock()
	if !ok {
		return nil, ErrSlotNotFound
	}
	return c, nil
}

// Reserve claims one unit of the slot's capacity. The compare-and-swap loop
// keeps booked <= capacity observable at every instant.
func (t *Tracker) Reserve(slotID string) error {
	c, err := t.lookup(slotID)
	if err != nil {
		return err
	}

	for {
		cur := c.booked.Load()
		if cur >= c.capacity {
			return ErrCapacityExceeded
		}
		if c.booked.CompareAndSwap(cur, cur+1) {
			return nil
		}
	}
}

// Release returns one unit of the slot's capacity.
func (t *Tracker) Release(slotID string) error {
	c, err := t.lookup(slotID)
	if err != nil {
		return err
	}

	for {
		cur := c.booked.Load()
		if cur <= 0 {
			return ErrUnderflow
		}
		if c.booked.CompareAndSwap(cur, cur-1) {
			return nil
		}
	}
}

// Usage reports the slot's current counters. Best-effort snapshot: a racing
// Reserve may have changed the count by the time the caller looks at it.
func (t *Tracker) Usage(slotID string) (Usage, error) {
	c, err := t.lookup(slotID)
	if err != nil {
		return Usage{}, err
	}
	return Usage{Booked: int(c.booked.Load()), Capacity: int(c.capacity)}, nil
}
