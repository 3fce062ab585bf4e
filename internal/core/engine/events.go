package engine

import (
	"time"

	"intervaltimer/internal/core/model"
)

// State represents the current engine mode.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StatePaused   State = "paused"
	StateComplete State = "complete"
	StateStopped  State = "stopped"
)

// Terminal reports whether no further events can be produced.
func (state State) Terminal() bool {
	return state == StateComplete || state == StateStopped
}

// EventKind defines the type of engine event.
type EventKind string

const (
	EventTick      EventKind = "tick"
	EventCountdown EventKind = "countdown"
	EventStepStart EventKind = "step-start"
	EventStepEnd   EventKind = "step-end"
	EventComplete  EventKind = "complete"
)

// Tick carries display progress for the running segment.
type Tick struct {
	Remaining       time.Duration
	Total           time.Duration
	SegmentIndex    int
	Segment         model.Segment
	OverallProgress float64
}

// Countdown is emitted once per threshold as a segment nears its end.
type Countdown struct {
	SecondsLeft int
}

// StepStart is emitted when a segment begins.
type StepStart struct {
	Segment      model.Segment
	SegmentIndex int
}

// StepEnd is emitted when a segment finishes or is skipped.
type StepEnd struct {
	Segment      model.Segment
	SegmentIndex int
}

// Event is a single engine notification. Only the payload matching Kind is
// set; EventComplete has none.
type Event struct {
	Kind      EventKind
	Tick      Tick
	Countdown Countdown
	StepStart StepStart
	StepEnd   StepEnd
	At        time.Time
}
