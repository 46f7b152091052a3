package host

import (
	"sync/atomic"
	"time"

	"github.com/roach88/tallybook/internal/ir"
)

// Clock is the trusted time source of the runtime. Readings must never
// decrease.
type Clock interface {
	Now() ir.Timestamp
}

// SystemClock reads wall-clock unix seconds and clamps them so that a
// reading is never lower than an earlier one.
//
// Thread-safety: SystemClock is safe for concurrent use (atomic operations).
type SystemClock struct {
	last atomic.Int64
	now  func() time.Time
}

// NewSystemClock returns a clock backed by time.Now.
func NewSystemClock() *SystemClock {
	return &SystemClock{now: time.Now}
}

// Now returns the current unix second, or the last returned value if the
// wall clock stepped backwards.
func (c *SystemClock) Now() ir.Timestamp {
	t := c.now().Unix()
	for {
		prev := c.last.Load()
		if t <= prev {
			return ir.Timestamp(prev)
		}
		if c.last.CompareAndSwap(prev, t) {
			return ir.Timestamp(t)
		}
	}
}
