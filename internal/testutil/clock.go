package testutil

import (
	"sync"
	"time"
)

// DeterministicClock is a thread-safe manual clock for tests.
//
// Now() returns the current instant and then advances by a fixed step, so
// consecutive writes get strictly increasing timestamps without any real
// sleeping. Advance and Set give tests direct control when the automatic
// step is not enough.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewDeterministicClock creates a clock starting at the given instant,
// auto-advancing by one millisecond per Now() call.
func NewDeterministicClock(start time.Time) *DeterministicClock {
	return &DeterministicClock{now: start, step: time.Millisecond}
}

// Now returns the current instant and advances the clock by one step.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// Peek returns the current instant without advancing.
func (c *DeterministicClock) Peek() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *DeterministicClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to an absolute instant.
func (c *DeterministicClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
