// Package testutil provides common utility functions for testing.
package testutil

import (
	"context"
	"sync"
	"time"
)

// SteppingClock returns a fixed start time on its first call and advances by
// Step on every call after that.
type SteppingClock struct {
	mu      sync.Mutex
	current time.Time
	Step    time.Duration
	calls   int
}

// NewSteppingClock returns a clock starting at start and advancing by step.
func NewSteppingClock(start time.Time, step time.Duration) *SteppingClock {
	return &SteppingClock{current: start, Step: step}
}

// Now returns the next instant.
func (c *SteppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls > 0 {
		c.current = c.current.Add(c.Step)
	}
	c.calls++
	return c.current
}

// Calls reports how many times Now was called.
func (c *SteppingClock) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// FailingBackend is a string-keyed storage fake whose reads and writes fail
// with the configured errors. With nil errors it behaves as an in-memory map.
type FailingBackend struct {
	mu     sync.Mutex
	Items  map[string]string
	GetErr error
	SetErr error
	Writes int
}

// GetItem returns the stored value or GetErr.
func (b *FailingBackend) GetItem(_ context.Context, key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.GetErr != nil {
		return "", false, b.GetErr
	}
	value, ok := b.Items[key]
	return value, ok, nil
}

// SetItem stores the value or returns SetErr.
func (b *FailingBackend) SetItem(_ context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.SetErr != nil {
		return b.SetErr
	}
	if b.Items == nil {
		b.Items = make(map[string]string)
	}
	b.Items[key] = value
	b.Writes++
	return nil
}

// Close is a no-op.
func (b *FailingBackend) Close() error {
	return nil
}
