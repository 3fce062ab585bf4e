package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestSubscriberCoalescesTicks(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	sub := newSubscriber(1)
	for i := 1; i <= 100; i++ {
		sub.push(Event{Kind: EventTick, Tick: Tick{SegmentIndex: i}})
	}
	sub.push(Event{Kind: EventStepEnd})
	sub.push(Event{Kind: EventComplete})
	sub.close()
	sub.push(Event{Kind: EventTick})

	var received []Event
	timeout := time.After(2 * time.Second)
	for done := false; !done; {
		select {
		case event, ok := <-sub.out:
			if !ok {
				done = true
				break
			}
			received = append(received, event)
		case <-timeout:
			t.Fatal("subscriber did not close")
		}
	}

	require.GreaterOrEqual(t, len(received), 3)
	assert.LessOrEqual(t, len(received), 102)

	n := len(received)
	assert.Equal(t, EventComplete, received[n-1].Kind)
	assert.Equal(t, EventStepEnd, received[n-2].Kind)
	assert.Equal(t, 100, received[n-3].Tick.SegmentIndex)

	last := 0
	for _, event := range received[:n-2] {
		require.Equal(t, EventTick, event.Kind)
		assert.Greater(t, event.Tick.SegmentIndex, last)
		last = event.Tick.SegmentIndex
	}
}

func TestSubscriberKeepsLifecycleEvents(t *testing.T) {
	sub := newSubscriber(1)
	kinds := []EventKind{EventStepStart, EventCountdown, EventCountdown, EventStepEnd, EventStepStart}
	for _, kind := range kinds {
		sub.push(Event{Kind: kind})
	}
	sub.close()

	var received []EventKind
	for event := range sub.out {
		received = append(received, event.Kind)
	}
	assert.Equal(t, kinds, received)
}

func TestSubscriberAbandon(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	sub := newSubscriber(1)
	sub.push(Event{Kind: EventStepStart})
	sub.push(Event{Kind: EventStepEnd})
	sub.push(Event{Kind: EventComplete})
	sub.abandon()
	sub.abandon()
}
