package session

import (
	"fmt"
	"math"
	"time"

	"intervaltimer/internal/core/model"
	"intervaltimer/internal/core/plan"
)

// Phase is the session stage shown to the user.
type Phase string

const (
	PhaseReady    Phase = "ready"
	PhaseLeadIn   Phase = "lead-in"
	PhaseRunning  Phase = "running"
	PhasePaused   Phase = "paused"
	PhaseComplete Phase = "complete"
	PhaseStopped  Phase = "stopped"
)

// Finished reports whether the session has ended.
func (phase Phase) Finished() bool {
	return phase == PhaseComplete || phase == PhaseStopped
}

// Runner selects the sprite drawn during active steps.
type Runner string

const (
	RunnerNone  Runner = ""
	RunnerBrown Runner = "brown"
	RunnerBlack Runner = "black"
)

const warningThreshold = 3 * time.Second

// Update is a display snapshot of a session.
type Update struct {
	Phase      Phase
	SchemaName string

	// Segment is the current segment, or the first one during the lead-in.
	Segment      model.Segment
	SegmentIndex int
	SegmentCount int

	// Remaining is the segment time left, or the lead-in time left.
	Remaining       time.Duration
	OverallProgress float64
	Total           time.Duration
	TotalRemaining  time.Duration

	Upcoming []plan.SetSummary
	Runner   Runner
}

// Warning is set during the last seconds of a segment or lead-in.
func (update Update) Warning() bool {
	switch update.Phase {
	case PhaseLeadIn, PhaseRunning, PhasePaused:
		return update.Remaining > 0 && update.Remaining <= warningThreshold
	default:
		return false
	}
}

// Title is the large heading above the clock.
func (update Update) Title() string {
	switch update.Phase {
	case PhaseReady, PhaseLeadIn:
		return "Ready?"
	case PhaseComplete:
		return "Done!"
	case PhaseStopped:
		return "Stopped"
	default:
		return update.Segment.Name
	}
}

// Info is the line under the title.
func (update Update) Info() string {
	switch update.Phase {
	case PhaseReady, PhaseLeadIn:
		if update.SegmentCount == 0 {
			return ""
		}
		return "Next: " + update.Segment.Name
	case PhaseComplete, PhaseStopped:
		return update.Summary()
	default:
		return Position(update.Segment)
	}
}

// ClockText is the remaining time as shown on the main display.
func (update Update) ClockText() string {
	if update.Phase == PhaseLeadIn {
		return fmt.Sprintf("%d", ceilSeconds(update.Remaining))
	}
	return FormatClock(update.Remaining)
}

// TotalRemainingText is the footer showing the whole session time left.
func (update Update) TotalRemainingText() string {
	return "Total remaining: " + FormatClock(update.TotalRemaining)
}

// Summary is the completion line "<name> — <total> total".
func (update Update) Summary() string {
	return fmt.Sprintf("%s — %s total", update.SchemaName, FormatClock(update.Total))
}

// Position renders "Round r/R — Step s/S".
func Position(segment model.Segment) string {
	return fmt.Sprintf("Round %d/%d — Step %d/%d",
		segment.Round, segment.TotalRounds, segment.StepIndex, segment.TotalSteps)
}

// FormatClock renders a duration as mm:ss, rounding partial seconds up.
// Minutes are not wrapped into hours.
func FormatClock(d time.Duration) string {
	seconds := ceilSeconds(d)
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
