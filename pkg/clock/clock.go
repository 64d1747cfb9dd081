// Package clock abstracts the simulated delays of login, checkout and chat.
package clock

import (
	"context"
	"time"
)

type Clock interface {
	After(d time.Duration) <-chan time.Time
}

// System waits on real time
type System struct{}

func (System) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// Instant fires immediately. Useful when delays should be skipped.
type Instant struct{}

func (Instant) After(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Now()
	return ch
}

// Sleep waits d on c, returning early with ctx's error if ctx ends first.
// A nil clock or non-positive d returns immediately.
func Sleep(ctx context.Context, c Clock, d time.Duration) error {
	if c == nil || d <= 0 {
		return ctx.Err()
	}
	select {
	case <-c.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
