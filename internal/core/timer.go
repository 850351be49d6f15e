package core

import "time"

// Cadence gates periodic work, such as status logging, to a fixed minimum
// interval.
type Cadence struct {
	every time.Duration
	last  time.Time
}

// NewCadence constructs a gate that fires at most once per interval.
func NewCadence(every time.Duration) *Cadence {
	if every <= 0 {
		every = time.Second
	}
	return &Cadence{every: every}
}

// Ready reports whether the interval has elapsed since the last fire. The
// first call arms the gate and reports false.
func (c *Cadence) Ready() bool {
	now := time.Now()
	if c.last.IsZero() {
		c.last = now
		return false
	}
	if now.Sub(c.last) < c.every {
		return false
	}
	c.last = now
	return true
}
