package testutil

import (
	"sync"

	"github.com/roach88/tallybook/internal/ir"
)

// DefaultEpoch is the first reading of a new DeterministicClock
// (2024-01-01T00:00:00Z).
const DefaultEpoch ir.Timestamp = 1704067200

// DeterministicClock is a manually driven host clock for tests.
//
// Unlike host.SystemClock, DeterministicClock never reads wall time and can
// be reset for test reuse, so the same scenario produces identical
// timestamps on every run.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu    sync.Mutex
	start ir.Timestamp
	now   ir.Timestamp
}

// NewDeterministicClock creates a clock reading start.
// A zero start uses DefaultEpoch.
func NewDeterministicClock(start ir.Timestamp) *DeterministicClock {
	if start == 0 {
		start = DefaultEpoch
	}
	return &DeterministicClock{start: start, now: start}
}

// Now returns the current reading without advancing it.
//
// Implements host.Clock.
func (c *DeterministicClock) Now() ir.Timestamp {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by seconds and returns the new reading.
// Negative values are ignored.
func (c *DeterministicClock) Advance(seconds int64) ir.Timestamp {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seconds > 0 {
		c.now += ir.Timestamp(seconds)
	}
	return c.now
}

// Set moves the clock to t, including backwards. Tests use it to simulate
// a host whose clock stepped back.
func (c *DeterministicClock) Set(t ir.Timestamp) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Reset returns the clock to its start reading.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.start
}
