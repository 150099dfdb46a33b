// Package testutil holds small helpers shared by tests.
package testutil

import (
	"sync"
	"time"

	"github.com/apim-labs/punchlist/internal/checklist"
)

// TimestampClock hands out strictly increasing ISO-8601 UTC timestamps.
//
// Swapping it in for the store's wall clock makes update stamping and
// history ordering deterministic across test runs.
//
// Thread-safety: all methods are safe for concurrent use.
type TimestampClock struct {
	mu   sync.Mutex
	next time.Time
	step time.Duration
}

// NewTimestampClock creates a clock whose first Next() returns start,
// advancing by step per call.
func NewTimestampClock(start time.Time, step time.Duration) *TimestampClock {
	return &TimestampClock{next: start, step: step}
}

// Next returns the current timestamp and advances the clock.
func (c *TimestampClock) Next() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	ts := c.next.UTC().Format(checklist.TimestampLayout)
	c.next = c.next.Add(c.step)
	return ts
}
