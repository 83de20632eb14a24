// Package clock provides the monotonic timestamp service used to stamp room
// ids, emptiness markers and snapshots.
package clock

import (
	"sync"
	"time"
)

// Clock hands out millisecond timestamps that are strictly increasing across
// successive calls, even when the wall clock is read faster than its
// resolution or steps backwards. This is a monotonic tie-breaker, not a
// real-time guarantee.
type Clock struct {
	mu   sync.Mutex
	last int64
	wall func() int64
}

// New builds a Clock backed by the system wall clock.
func New() *Clock {
	return &Clock{
		wall: func() int64 { return time.Now().UnixMilli() },
	}
}

// NewWithSource builds a Clock reading from a custom millisecond source.
// Tests use this to drive the clock by hand.
func NewWithSource(wall func() int64) *Clock {
	return &Clock{wall: wall}
}

// Now returns the next timestamp. If the wall reading is not strictly
// greater than the last value returned, the previous value is advanced by
// one millisecond instead.
func (c *Clock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	ts := c.wall()
	if ts <= c.last {
		ts = c.last + 1
	}
	c.last = ts

	return ts
}
