package model

import "time"

// SessionConfig contains runtime settings for a training session.
type SessionConfig struct {
	LeadIn         time.Duration
	FrameInterval  time.Duration
	FallbackMargin time.Duration

	SoundEnabled bool
	Volume       float64
	KeepAwake    bool
}
