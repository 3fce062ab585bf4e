package timerview

import (
	"image/color"

	"intervaltimer/internal/core/session"
)

type scene int

const (
	sceneNone scene = iota
	sceneRest
	sceneRun
	sceneFreeze
	sceneTrophy
)

// sceneKey identifies when the sprite animation has to be restarted.
type sceneKey struct {
	scene   scene
	segment int
	runner  session.Runner
}

func sceneFor(update session.Update) sceneKey {
	key := sceneKey{segment: update.SegmentIndex, runner: update.Runner}
	switch update.Phase {
	case session.PhaseReady, session.PhaseLeadIn:
		key.scene = sceneRest
		key.segment = -1
	case session.PhaseRunning:
		if update.Segment.IsActive() {
			key.scene = sceneRun
		} else {
			key.scene = sceneRest
		}
	case session.PhasePaused:
		key.scene = sceneFreeze
	case session.PhaseComplete:
		key.scene = sceneTrophy
	default:
		key.scene = sceneNone
	}
	return key
}

var (
	colorActive   = color.NRGBA{R: 0x2E, G: 0x7D, B: 0x32, A: 0xFF}
	colorPause    = color.NRGBA{R: 0x1F, G: 0x5F, B: 0x8B, A: 0xFF}
	colorNeutral  = color.NRGBA{R: 0x26, G: 0x26, B: 0x2E, A: 0xFF}
	colorComplete = color.NRGBA{R: 0x6A, G: 0x4C, B: 0x93, A: 0xFF}
	colorText     = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	colorWarning  = color.NRGBA{R: 0xE8, G: 0xBE, B: 0x42, A: 0xFF}
)

func backgroundFor(update session.Update) color.NRGBA {
	switch update.Phase {
	case session.PhaseRunning, session.PhasePaused:
		if update.Segment.IsActive() {
			return colorActive
		}
		return colorPause
	case session.PhaseComplete:
		return colorComplete
	default:
		return colorNeutral
	}
}

func clockColorFor(update session.Update) color.NRGBA {
	if update.Warning() {
		return colorWarning
	}
	return colorText
}

func pauseLabelFor(phase session.Phase) string {
	if phase == session.PhasePaused {
		return "Resume"
	}
	return "Pause"
}
