package session

import (
	"testing"
	"time"

	"intervaltimer/internal/core/model"

	"github.com/stretchr/testify/assert"
)

func TestFormatClock(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00"},
		{-time.Second, "00:00"},
		{1200 * time.Millisecond, "00:02"},
		{59*time.Second + time.Millisecond, "01:00"},
		{90 * time.Second, "01:30"},
		{75 * time.Minute, "75:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatClock(tt.in), "duration %s", tt.in)
	}
}

func TestPosition(t *testing.T) {
	segment := model.Segment{Round: 2, TotalRounds: 3, StepIndex: 1, TotalSteps: 4}
	assert.Equal(t, "Round 2/3 — Step 1/4", Position(segment))
}

func TestUpdateWarning(t *testing.T) {
	update := Update{Phase: PhaseRunning, Remaining: 3 * time.Second}
	assert.True(t, update.Warning())

	update.Remaining = 3*time.Second + time.Millisecond
	assert.False(t, update.Warning())

	update.Remaining = 0
	assert.False(t, update.Warning())

	update = Update{Phase: PhaseComplete, Remaining: time.Second}
	assert.False(t, update.Warning())
}

func TestUpdateText(t *testing.T) {
	update := Update{
		Phase:          PhaseRunning,
		SchemaName:     "Tabata",
		Segment:        model.Segment{Name: "Sprint", Round: 1, TotalRounds: 8, StepIndex: 1, TotalSteps: 2},
		Remaining:      19500 * time.Millisecond,
		Total:          4 * time.Minute,
		TotalRemaining: 3*time.Minute + 30*time.Second,
	}
	assert.Equal(t, "Sprint", update.Title())
	assert.Equal(t, "00:20", update.ClockText())
	assert.Equal(t, "Round 1/8 — Step 1/2", update.Info())
	assert.Equal(t, "Total remaining: 03:30", update.TotalRemainingText())

	update.Phase = PhaseStopped
	assert.Equal(t, "Stopped", update.Title())
	assert.Equal(t, "Tabata — 04:00 total", update.Info())
}
