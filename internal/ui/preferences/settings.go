package preferences

import (
	"time"

	"intervaltimer/internal/core/model"
)

const (
	MinLeadIn    = 0
	MaxLeadIn    = 60 * time.Second
	MinFrameRate = 10
	MaxFrameRate = 120
)

// Settings defines editable user preferences.
type Settings struct {
	LeadIn       time.Duration
	SoundEnabled bool
	Volume       float64
	KeepAwake    bool

	Fullscreen bool
	FrameRate  int
}

// DefaultSettings returns default settings for the interval timer.
func DefaultSettings() Settings {
	return Settings{
		LeadIn:       10 * time.Second,
		SoundEnabled: true,
		Volume:       0.8,
		KeepAwake:    true,
		Fullscreen:   false,
		FrameRate:    60,
	}
}

// SessionConfig converts settings to a SessionConfig.
func (settings Settings) SessionConfig() model.SessionConfig {
	frameRate := settings.FrameRate
	if frameRate < MinFrameRate || frameRate > MaxFrameRate {
		frameRate = DefaultSettings().FrameRate
	}
	return model.SessionConfig{
		LeadIn:         settings.LeadIn,
		FrameInterval:  time.Second / time.Duration(frameRate),
		FallbackMargin: 50 * time.Millisecond,
		SoundEnabled:   settings.SoundEnabled,
		Volume:         settings.Volume,
		KeepAwake:      settings.KeepAwake,
	}
}
