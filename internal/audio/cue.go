// Package audio synthesizes and plays the session cues.
package audio

import "time"

// Cue is a sound played in reaction to a session event.
type Cue int

const (
	CueCountdown3 Cue = iota + 1
	CueCountdown2
	CueCountdown1
	CueStartSignal
	CueStepEnd
	CueVictory
)

var cueNames = map[Cue]string{
	CueCountdown3:  "countdown-3",
	CueCountdown2:  "countdown-2",
	CueCountdown1:  "countdown-1",
	CueStartSignal: "start-signal",
	CueStepEnd:     "step-end",
	CueVictory:     "victory",
}

func (cue Cue) String() string {
	if name, ok := cueNames[cue]; ok {
		return name
	}
	return "unknown"
}

// Tone is a sine note with a held gain followed by an exponential fade.
type Tone struct {
	Frequency float64
	Offset    time.Duration
	Duration  time.Duration
	Gain      float64
	// Hold is the fraction of Duration played at full gain before the fade.
	Hold float64
}

// CountdownCue maps seconds left to a countdown cue.
func CountdownCue(secondsLeft int) (Cue, bool) {
	switch secondsLeft {
	case 3:
		return CueCountdown3, true
	case 2:
		return CueCountdown2, true
	case 1:
		return CueCountdown1, true
	default:
		return 0, false
	}
}

// Tones returns the notes that make up the cue.
func (cue Cue) Tones() []Tone {
	switch cue {
	case CueCountdown3:
		return []Tone{beep(440)}
	case CueCountdown2:
		return []Tone{beep(554)}
	case CueCountdown1:
		return []Tone{beep(659)}
	case CueStartSignal:
		return []Tone{{Frequency: 880, Duration: 1500 * time.Millisecond, Gain: 0.45, Hold: 0.85}}
	case CueStepEnd:
		tones := make([]Tone, 0, 3)
		for i := 0; i < 3; i++ {
			tones = append(tones, Tone{
				Frequency: 880,
				Offset:    time.Duration(i) * 200 * time.Millisecond,
				Duration:  120 * time.Millisecond,
				Gain:      0.45,
			})
		}
		return tones
	case CueVictory:
		return []Tone{
			{Frequency: 523, Offset: 0, Duration: 200 * time.Millisecond, Gain: 0.4, Hold: 0.7},
			{Frequency: 659, Offset: 200 * time.Millisecond, Duration: 200 * time.Millisecond, Gain: 0.4, Hold: 0.7},
			{Frequency: 784, Offset: 400 * time.Millisecond, Duration: 200 * time.Millisecond, Gain: 0.4, Hold: 0.7},
			{Frequency: 1047, Offset: 600 * time.Millisecond, Duration: 800 * time.Millisecond, Gain: 0.4, Hold: 0.7},
		}
	default:
		return nil
	}
}

// Length is the time from the first note onset to the end of the last note.
func (cue Cue) Length() time.Duration {
	var length time.Duration
	for _, tone := range cue.Tones() {
		if end := tone.Offset + tone.Duration; end > length {
			length = end
		}
	}
	return length
}

func beep(frequency float64) Tone {
	return Tone{Frequency: frequency, Duration: 120 * time.Millisecond, Gain: 0.5}
}
