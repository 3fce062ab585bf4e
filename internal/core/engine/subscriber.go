package engine

import "sync"

// subscriber queues events without bounding the engine on the consumer.
// Lifecycle events are never dropped; an undelivered tick is replaced by a
// newer one.
type subscriber struct {
	mu     sync.Mutex
	wake   *sync.Cond
	queue  []Event
	closed bool
	out    chan Event
	done   chan struct{}
}

func newSubscriber(buffer int) *subscriber {
	sub := &subscriber{
		out:  make(chan Event, buffer),
		done: make(chan struct{}),
	}
	sub.wake = sync.NewCond(&sub.mu)
	go sub.pump()
	return sub
}

func (sub *subscriber) push(event Event) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed {
		return
	}
	if event.Kind == EventTick && len(sub.queue) > 0 && sub.queue[len(sub.queue)-1].Kind == EventTick {
		sub.queue[len(sub.queue)-1] = event
		return
	}
	sub.queue = append(sub.queue, event)
	sub.wake.Signal()
}

// close lets the pump drain what is queued and then close the channel.
func (sub *subscriber) close() {
	sub.mu.Lock()
	sub.closed = true
	sub.wake.Signal()
	sub.mu.Unlock()
}

// abandon drops undelivered events and releases the pump.
func (sub *subscriber) abandon() {
	sub.mu.Lock()
	sub.closed = true
	sub.queue = nil
	select {
	case <-sub.done:
	default:
		close(sub.done)
	}
	sub.wake.Signal()
	sub.mu.Unlock()
}

func (sub *subscriber) pump() {
	defer close(sub.out)
	for {
		sub.mu.Lock()
		for len(sub.queue) == 0 && !sub.closed {
			sub.wake.Wait()
		}
		if len(sub.queue) == 0 {
			sub.mu.Unlock()
			return
		}
		event := sub.queue[0]
		sub.queue[0] = Event{}
		sub.queue = sub.queue[1:]
		sub.mu.Unlock()

		select {
		case sub.out <- event:
		case <-sub.done:
			return
		}
	}
}
