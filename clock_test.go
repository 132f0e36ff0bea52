// clock_test.go
package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockClock_AdvanceFiresAtBoundary(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)

	ch := clock.After(2 * time.Second)
	require.Equal(t, 1, clock.Waiters())

	clock.Advance(1999 * time.Millisecond)
	select {
	case <-ch:
		t.Fatal("timer fired before its deadline")
	default:
	}

	clock.Advance(1 * time.Millisecond)
	select {
	case fired := <-ch:
		assert.Equal(t, start.Add(2*time.Second), fired)
	default:
		t.Fatal("timer did not fire at its deadline")
	}
	assert.Equal(t, 0, clock.Waiters())
}

func TestMockClock_NonPositiveDurationFiresImmediately(t *testing.T) {
	clock := NewMockClock(time.Now())

	select {
	case <-clock.After(0):
	default:
		t.Fatal("zero duration did not fire immediately")
	}

	select {
	case <-clock.After(-time.Second):
	default:
		t.Fatal("negative duration did not fire immediately")
	}
	assert.Equal(t, 0, clock.Waiters())
}

func TestMockClock_AdvanceFiresOnlyDueTimers(t *testing.T) {
	clock := NewMockClock(time.Now())

	short := clock.After(1 * time.Second)
	long := clock.After(10 * time.Second)
	require.Equal(t, 2, clock.Waiters())

	clock.Advance(5 * time.Second)

	select {
	case <-short:
	default:
		t.Fatal("due timer did not fire")
	}
	select {
	case <-long:
		t.Fatal("timer fired ahead of its deadline")
	default:
	}
	assert.Equal(t, 1, clock.Waiters())
}

func TestMockClock_NowTracksAdvance(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)

	clock.Advance(90 * time.Minute)
	assert.Equal(t, start.Add(90*time.Minute), clock.Now())
}
