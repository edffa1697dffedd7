// Package simclock provides the pipeline's single source of "now".
//
// Every elapsed-time computation in the pipeline goes through a Clock so
// end-to-end tests can fast-forward time deterministically. Nothing else
// in the pipeline may call time.Now directly.
package simclock

import (
	"sync"
	"time"
)

// Clock returns the current time, or an overridden instant when one is set.
// Safe for concurrent use.
type Clock struct {
	mu       sync.RWMutex
	override time.Time
	set      bool
}

// New returns a clock tracking real time until an override is set.
func New() *Clock {
	return &Clock{}
}

// Now returns the overridden instant if set, else the real current time.
func (c *Clock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.set {
		return c.override
	}
	return time.Now()
}

// SetOverride pins the clock to the given instant until ClearOverride.
func (c *Clock) SetOverride(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.override = t
	c.set = true
}

// ClearOverride returns the clock to real time.
func (c *Clock) ClearOverride() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.override = time.Time{}
	c.set = false
}

// DaysElapsed returns floor((Now - since) / 24h), clamped to zero.
// Future timestamps report 0, never a negative count.
func (c *Clock) DaysElapsed(since time.Time) int {
	elapsed := c.Now().Sub(since)
	if elapsed < 0 {
		return 0
	}
	return int(elapsed / (24 * time.Hour))
}

// HasElapsed reports whether at least days full days have passed since.
func (c *Clock) HasElapsed(since time.Time, days int) bool {
	return c.DaysElapsed(since) >= days
}
