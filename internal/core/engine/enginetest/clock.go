// Package enginetest provides a manually driven clock for engine tests.
package enginetest

import (
	"sync"
	"time"

	"intervaltimer/internal/core/engine"
)

// Clock is an engine.Clock whose time only moves on Advance. Scheduled
// callbacks run synchronously on the goroutine calling Advance, in due order.
type Clock struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*timer

	// IgnoreStop keeps cancelled timers firing, simulating callbacks that
	// were already queued when they were cancelled.
	IgnoreStop bool
}

type timer struct {
	clock   *Clock
	at      time.Time
	seq     int
	fn      func()
	stopped bool
	fired   bool
}

// NewClock returns a clock starting at a fixed instant.
func NewClock() *Clock {
	return &Clock{now: time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)}
}

// Now returns the current fake time.
func (clock *Clock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

// AfterFunc schedules f to run once the clock has advanced by d.
func (clock *Clock) AfterFunc(d time.Duration, f func()) engine.Timer {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	clock.seq++
	scheduled := &timer{clock: clock, at: clock.now.Add(d), seq: clock.seq, fn: f}
	clock.timers = append(clock.timers, scheduled)
	return scheduled
}

// Pending returns how many timers are still waiting to fire.
func (clock *Clock) Pending() int {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	count := 0
	for _, scheduled := range clock.timers {
		if clock.live(scheduled) {
			count++
		}
	}
	return count
}

// Advance moves time forward by d, firing every timer that falls due.
func (clock *Clock) Advance(d time.Duration) {
	clock.mu.Lock()
	target := clock.now.Add(d)
	clock.mu.Unlock()

	for {
		clock.mu.Lock()
		next := clock.nextDueLocked(target)
		if next == nil {
			clock.now = target
			clock.mu.Unlock()
			return
		}
		clock.now = next.at
		next.fired = true
		clock.mu.Unlock()

		next.fn()
	}
}

func (clock *Clock) nextDueLocked(target time.Time) *timer {
	var next *timer
	live := clock.timers[:0]
	for _, scheduled := range clock.timers {
		if !clock.live(scheduled) {
			continue
		}
		live = append(live, scheduled)
		if scheduled.at.After(target) {
			continue
		}
		if next == nil || scheduled.at.Before(next.at) || (scheduled.at.Equal(next.at) && scheduled.seq < next.seq) {
			next = scheduled
		}
	}
	clock.timers = live
	return next
}

func (clock *Clock) live(scheduled *timer) bool {
	if scheduled.fired {
		return false
	}
	return !scheduled.stopped || clock.IgnoreStop
}

func (scheduled *timer) Stop() bool {
	scheduled.clock.mu.Lock()
	defer scheduled.clock.mu.Unlock()
	active := !scheduled.stopped && !scheduled.fired
	scheduled.stopped = true
	return active
}
