package audio

import (
	"bytes"
	"encoding/binary"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountdownCue(t *testing.T) {
	tests := []struct {
		secondsLeft int
		want        Cue
		ok          bool
	}{
		{3, CueCountdown3, true},
		{2, CueCountdown2, true},
		{1, CueCountdown1, true},
		{4, 0, false},
		{0, 0, false},
	}
	for _, tt := range tests {
		got, ok := CountdownCue(tt.secondsLeft)
		assert.Equal(t, tt.ok, ok, "seconds %d", tt.secondsLeft)
		assert.Equal(t, tt.want, got, "seconds %d", tt.secondsLeft)
	}
}

func TestCueTones(t *testing.T) {
	assert.Equal(t, 440.0, CueCountdown3.Tones()[0].Frequency)
	assert.Equal(t, 554.0, CueCountdown2.Tones()[0].Frequency)
	assert.Equal(t, 659.0, CueCountdown1.Tones()[0].Frequency)

	start := CueStartSignal.Tones()
	require.Len(t, start, 1)
	assert.Equal(t, 880.0, start[0].Frequency)
	assert.Equal(t, 1500*time.Millisecond, CueStartSignal.Length())

	pulses := CueStepEnd.Tones()
	require.Len(t, pulses, 3)
	for i, pulse := range pulses {
		assert.Equal(t, 880.0, pulse.Frequency)
		assert.Equal(t, time.Duration(i)*200*time.Millisecond, pulse.Offset)
	}

	victory := CueVictory.Tones()
	require.Len(t, victory, 4)
	assert.Equal(t, []float64{523, 659, 784, 1047}, []float64{
		victory[0].Frequency, victory[1].Frequency, victory[2].Frequency, victory[3].Frequency,
	})
	assert.Equal(t, 1400*time.Millisecond, CueVictory.Length())

	assert.Empty(t, Cue(99).Tones())
	assert.Equal(t, "unknown", Cue(99).String())
}

func TestRenderWritesPCMWave(t *testing.T) {
	data := Render(CueCountdown3.Tones(), 1)
	require.Greater(t, len(data), 44)

	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, "WAVE", string(data[8:12]))
	assert.Equal(t, "fmt ", string(data[12:16]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[20:22]))
	assert.Equal(t, uint32(sampleRate), binary.LittleEndian.Uint32(data[24:28]))
	assert.Equal(t, "data", string(data[36:40]))

	dataSize := binary.LittleEndian.Uint32(data[40:44])
	assert.Equal(t, uint32(len(data)-44), dataSize)
	assert.Equal(t, uint32(36)+dataSize, binary.LittleEndian.Uint32(data[4:8]))
	assert.Equal(t, samplesFor(120*time.Millisecond)*2, int(dataSize))
}

func TestRenderRespectsVolume(t *testing.T) {
	silent := Render(CueCountdown1.Tones(), 0)
	for _, b := range silent[44:] {
		require.Zero(t, b)
	}

	loud := Render(CueCountdown1.Tones(), 5)
	assert.Equal(t, len(silent), len(loud))
	assert.False(t, bytes.Equal(silent, loud))
}

func TestBellPlayerRingsPerNote(t *testing.T) {
	var out bytes.Buffer
	player := NewBellPlayer(&out)

	require.NoError(t, player.Play(CueStepEnd))
	assert.Equal(t, "\a\a\a", out.String())
	require.NoError(t, player.Play(Cue(99)))
	assert.Equal(t, "\a\a\a", out.String())
	assert.NoError(t, player.Close())
}

func TestMuteDiscards(t *testing.T) {
	var player Player = Mute{}
	assert.NoError(t, player.Play(CueVictory))
	assert.NoError(t, player.Close())
}

func TestCommandPlayerRendersOnce(t *testing.T) {
	truePath, err := exec.LookPath("true")
	if err != nil {
		t.Skip("no true command available")
	}
	player, err := NewCommandPlayer([]string{truePath, fileArg}, 0.5)
	require.NoError(t, err)

	require.NoError(t, player.Play(CueCountdown2))
	require.NoError(t, player.Play(CueCountdown2))

	path := filepath.Join(player.dir, "countdown-2.wav")
	_, err = os.Stat(path)
	require.NoError(t, err)
	assert.Len(t, player.files, 1)

	require.NoError(t, player.Close())
	_, err = os.Stat(player.dir)
	assert.True(t, os.IsNotExist(err))
	assert.Error(t, player.Play(CueCountdown1))
}

func TestNewCommandPlayerRejectsEmptyCommand(t *testing.T) {
	_, err := NewCommandPlayer(nil, 1)
	assert.ErrorIs(t, err, ErrPlaybackUnsupported)
}
