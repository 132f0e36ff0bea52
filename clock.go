// clock.go
package main

import (
	"sync"
	"time"
)

// Clock is an interface to abstract time-related functions.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// RealClock implements Clock using the actual time.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// After waits for the duration to elapse and then delivers the current time.
func (RealClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// MockClock implements Clock for testing purposes. Timers armed with After
// fire only when Advance moves the current time past their deadline.
type MockClock struct {
	mu          sync.Mutex
	currentTime time.Time
	timers      []*mockTimer
}

type mockTimer struct {
	deadline time.Time
	ch       chan time.Time
}

// NewMockClock creates a MockClock starting at the given time.
func NewMockClock(start time.Time) *MockClock {
	return &MockClock{currentTime: start}
}

// Now returns the mocked current time.
func (mc *MockClock) Now() time.Time {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.currentTime
}

// After registers a timer that fires once Advance reaches its deadline.
// A non-positive duration fires immediately.
func (mc *MockClock) After(d time.Duration) <-chan time.Time {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	t := &mockTimer{deadline: mc.currentTime.Add(d), ch: make(chan time.Time, 1)}
	if d <= 0 {
		t.ch <- mc.currentTime
		return t.ch
	}
	mc.timers = append(mc.timers, t)
	return t.ch
}

// Advance moves the current time forward by the specified duration and fires
// every timer whose deadline has been reached.
func (mc *MockClock) Advance(d time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.currentTime = mc.currentTime.Add(d)

	remaining := mc.timers[:0]
	for _, t := range mc.timers {
		if !t.deadline.After(mc.currentTime) {
			t.ch <- mc.currentTime
		} else {
			remaining = append(remaining, t)
		}
	}
	mc.timers = remaining
}

// Waiters reports how many timers are currently armed. Tests use it to wait
// until the code under test has started blocking on After.
func (mc *MockClock) Waiters() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return len(mc.timers)
}
