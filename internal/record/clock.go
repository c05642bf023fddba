package record

import "time"

// Clock is the session time source. Now returns seconds since an arbitrary
// epoch and must be monotonic non-decreasing except where the recorder
// explicitly checks for violations.
type Clock interface {
	Now() float64
}

// SystemClock measures seconds since its creation using the runtime's
// monotonic clock.
type SystemClock struct {
	epoch time.Time
}

// NewSystemClock returns a SystemClock with its epoch set to now.
func NewSystemClock() *SystemClock {
	return &SystemClock{epoch: time.Now()}
}

func (c *SystemClock) Now() float64 {
	return time.Since(c.epoch).Seconds()
}

// ManualClock is a Clock advanced explicitly by the caller. Used by tests
// and by synthetic capture scenarios.
type ManualClock struct {
	now float64
}

func (c *ManualClock) Now() float64 { return c.now }

// Set moves the clock to t. Moving backwards is allowed; the recorder is
// responsible for detecting violations where they matter.
func (c *ManualClock) Set(t float64) { c.now = t }

// Advance moves the clock forward by d seconds.
func (c *ManualClock) Advance(d float64) { c.now += d }
