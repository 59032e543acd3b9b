package util

import (
	"sync"
	"time"
)

// Clock stamps tweets and accounts with their creation time.
type Clock interface {
	NowUtc() time.Time
}

type RealClock struct{}

func NewRealClock() *RealClock {
	return &RealClock{}
}

func (RealClock) NowUtc() time.Time {
	return time.Now().UTC()
}

// StubClock starts at a fixed instant and only moves on Advance, so tests
// can place tweets at the same or later timestamps.
type StubClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewStubClock() *StubClock {
	return &StubClock{now: time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *StubClock) NowUtc() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *StubClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}
