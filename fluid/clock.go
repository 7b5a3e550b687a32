package fluid

import (
	"sync"
	"time"
)

// Clock reports the current time in milliseconds since the unix epoch.
type Clock interface {
	Now() int64
}

type systemClock struct{}

func (systemClock) Now() int64 {
	return time.Now().UnixMilli()
}

// SystemClock returns the wall clock.
func SystemClock() Clock {
	return systemClock{}
}

// SteppedClock is a manually driven clock for tests. It only moves when
// Advance or Set is called, so stalls and regressions can be replayed exactly.
type SteppedClock struct {
	mu  sync.Mutex
	now int64
}

func NewSteppedClock(now int64) *SteppedClock {
	return &SteppedClock{now: now}
}

func (c *SteppedClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock by delta milliseconds. Negative deltas are allowed
// to simulate clock regression.
func (c *SteppedClock) Advance(delta int64) {
	c.mu.Lock()
	c.now += delta
	c.mu.Unlock()
}

func (c *SteppedClock) Set(now int64) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

// countingClock advances one millisecond per reading. It backs the
// deterministic generator variant, which must not depend on the wall clock.
type countingClock struct {
	mu  sync.Mutex
	now int64
}

func (c *countingClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now++
	return c.now
}
