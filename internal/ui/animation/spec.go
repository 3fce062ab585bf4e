package animation

import (
	"time"

	"fyne.io/fyne/v2"
)

// RunSpec defines the sprite cycle shown during active steps.
type RunSpec struct {
	Frames []fyne.Resource
}

// RestSpec defines sprites used for the breathing blink during pauses.
type RestSpec struct {
	Open   fyne.Resource
	Closed fyne.Resource
}

// FrameDuration returns how long each running frame stays on screen.
// Frames speed up as the step nears its end.
func (spec RunSpec) FrameDuration(base time.Duration, remaining time.Duration) time.Duration {
	if remaining > 0 && remaining <= 3*time.Second {
		return base * 2 / 3
	}
	return base
}
