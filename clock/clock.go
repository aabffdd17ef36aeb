// Package clock provides Clock implementations for the escrow engine. The
// engine only requires a monotonically non-decreasing integer; the unit is
// opaque to the core.
package clock

import (
	"sync"
	"time"

	"github.com/deedprotocol/escrow-backend/interfaces"
)

// Wall derives timestamps from wall time, counted in whole minutes since a
// fixed epoch. With the default escrow window of 1440 units a transfer stays
// open for one day.
type Wall struct {
	epoch time.Time

	mu   sync.Mutex
	last interfaces.Timestamp
}

// NewWall creates a wall clock counting minutes since the given epoch.
func NewWall(epoch time.Time) *Wall {
	return &Wall{epoch: epoch}
}

// Now returns minutes elapsed since the epoch. The value is clamped so it
// never decreases even if the system clock steps backwards.
func (c *Wall) Now() interfaces.Timestamp {
	now := interfaces.Timestamp(time.Since(c.epoch) / time.Minute)

	c.mu.Lock()
	defer c.mu.Unlock()
	if now < c.last {
		return c.last
	}
	c.last = now
	return now
}

// Manual is a hand-advanced clock for tests and deterministic replays.
type Manual struct {
	mu  sync.Mutex
	now interfaces.Timestamp
}

// NewManual creates a manual clock starting at the given time.
func NewManual(start interfaces.Timestamp) *Manual {
	return &Manual{now: start}
}

// Now returns the current manual time.
func (c *Manual) Now() interfaces.Timestamp {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d units. Negative values are ignored;
// the clock never goes backwards.
func (c *Manual) Advance(d interfaces.Timestamp) {
	if d < 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += d
}

// Set moves the clock to the given time if it is not in the past.
func (c *Manual) Set(t interfaces.Timestamp) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t > c.now {
		c.now = t
	}
}
