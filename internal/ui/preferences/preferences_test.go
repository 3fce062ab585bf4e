package preferences

import (
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionConfigFromSettings(t *testing.T) {
	config := DefaultSettings().SessionConfig()
	assert.Equal(t, 10*time.Second, config.LeadIn)
	assert.Equal(t, time.Second/60, config.FrameInterval)
	assert.Equal(t, 50*time.Millisecond, config.FallbackMargin)
	assert.True(t, config.SoundEnabled)

	settings := DefaultSettings()
	settings.FrameRate = 1000
	assert.Equal(t, time.Second/60, settings.SessionConfig().FrameInterval)
}

func TestParseIntInRange(t *testing.T) {
	value, ok := parseIntInRange(" 15 ", 0, 60)
	assert.True(t, ok)
	assert.Equal(t, 15, value)

	_, ok = parseIntInRange("61", 0, 60)
	assert.False(t, ok)
	_, ok = parseIntInRange("abc", 0, 60)
	assert.False(t, ok)
}

func TestWindowSave(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	var saved Settings
	prefs := New(app, DefaultSettings(), func(settings Settings) { saved = settings })

	prefs.leadIn.SetText("5")
	prefs.frameRate.SetText("500")
	prefs.sound.SetChecked(false)
	prefs.fullscreen.SetChecked(true)
	prefs.handleSave()

	require.Equal(t, saved, prefs.Settings())
	assert.Equal(t, 5*time.Second, saved.LeadIn)
	assert.Equal(t, 60, saved.FrameRate)
	assert.False(t, saved.SoundEnabled)
	assert.True(t, saved.Fullscreen)
}
