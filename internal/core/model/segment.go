package model

import "time"

// Segment is one concrete occurrence of a step within a specific round.
// Segments are produced by the plan flattener and never mutated.
type Segment struct {
	Name        string
	Duration    time.Duration
	Type        StepType
	SetName     string
	SetIndex    int
	Round       int
	TotalRounds int
	StepIndex   int
	TotalSteps  int
}

// IsActive reports whether the segment is a work interval.
func (segment Segment) IsActive() bool {
	return segment.Type == StepActive
}
