// Package plan turns a schema into the flat sequence of segments the timer
// engine executes.
package plan

import (
	"time"

	"intervaltimer/internal/core/model"
)

// SetSummary describes one set for the upcoming-sets overview.
type SetSummary struct {
	Index         int
	Name          string
	Repeats       int
	TotalDuration time.Duration
}

// Flatten expands every set, round and step of the schema into segments, in
// document order. A schema without sets yields an empty plan.
func Flatten(schema model.Schema) []model.Segment {
	segments := make([]model.Segment, 0, schema.TotalSteps())
	for setIndex, set := range schema.Sets {
		for round := 1; round <= set.Repeats; round++ {
			for stepIndex, step := range set.Steps {
				segments = append(segments, model.Segment{
					Name:        step.Name,
					Duration:    step.Seconds(),
					Type:        step.Type,
					SetName:     set.Name,
					SetIndex:    setIndex,
					Round:       round,
					TotalRounds: set.Repeats,
					StepIndex:   stepIndex + 1,
					TotalSteps:  len(set.Steps),
				})
			}
		}
	}
	return segments
}

// TotalDuration sums the durations of all segments.
func TotalDuration(segments []model.Segment) time.Duration {
	var total time.Duration
	for _, segment := range segments {
		total += segment.Duration
	}
	return total
}

// Overview summarizes each set of the schema.
func Overview(schema model.Schema) []SetSummary {
	summaries := make([]SetSummary, 0, len(schema.Sets))
	for index, set := range schema.Sets {
		summaries = append(summaries, SetSummary{
			Index:         index,
			Name:          set.Name,
			Repeats:       set.Repeats,
			TotalDuration: set.TotalDuration(),
		})
	}
	return summaries
}

// Upcoming returns the summaries of the current set and every set after it.
func Upcoming(summaries []SetSummary, currentSet int) []SetSummary {
	upcoming := make([]SetSummary, 0, len(summaries))
	for _, summary := range summaries {
		if summary.Index >= currentSet {
			upcoming = append(upcoming, summary)
		}
	}
	return upcoming
}
