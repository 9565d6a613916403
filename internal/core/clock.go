package core

import "time"

// Clock provides the monotonic time reading that game timers compare
// against. Readings are offsets from an arbitrary origin and never go back.
type Clock interface {
	Now() time.Duration
}

// MonotonicClock reads the process monotonic clock.
type MonotonicClock struct {
	start time.Time
}

// NewMonotonicClock creates a clock whose origin is the moment of creation.
func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{start: time.Now()}
}

// Now returns the time elapsed since the clock was created.
func (c *MonotonicClock) Now() time.Duration {
	return time.Since(c.start)
}

// ManualClock is a clock that only moves when told to.
// Used by tests and replays for fully deterministic timing.
type ManualClock struct {
	now time.Duration
}

// Now returns the current reading.
func (c *ManualClock) Now() time.Duration {
	return c.now
}

// Advance moves the clock forward by d. Negative values are ignored.
func (c *ManualClock) Advance(d time.Duration) {
	if d > 0 {
		c.now += d
	}
}

// Set jumps the clock to t if t is not in the past.
func (c *ManualClock) Set(t time.Duration) {
	if t > c.now {
		c.now = t
	}
}
