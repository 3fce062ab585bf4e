package audio

import (
	"bytes"
	"encoding/binary"
	"math"
	"time"
)

const (
	sampleRate    = 22050
	bitsPerSample = 16
	channels      = 1
	fadeFloor     = 0.01
)

// Render mixes the tones into a mono 16-bit PCM WAV file. Volume scales
// every tone and is clamped to [0, 1].
func Render(tones []Tone, volume float64) []byte {
	volume = math.Max(0, math.Min(1, volume))

	var length time.Duration
	for _, tone := range tones {
		if end := tone.Offset + tone.Duration; end > length {
			length = end
		}
	}
	samples := make([]float64, samplesFor(length))
	for _, tone := range tones {
		mixTone(samples, tone, volume)
	}

	pcm := make([]int16, len(samples))
	for i, sample := range samples {
		sample = math.Max(-1, math.Min(1, sample))
		pcm[i] = int16(sample * math.MaxInt16)
	}
	return encodeWAV(pcm)
}

func mixTone(samples []float64, tone Tone, volume float64) {
	start := samplesFor(tone.Offset)
	count := samplesFor(tone.Duration)
	if count == 0 {
		return
	}
	hold := int(float64(count) * math.Max(0, math.Min(1, tone.Hold)))
	fade := count - hold

	for i := 0; i < count && start+i < len(samples); i++ {
		gain := tone.Gain
		if i >= hold && fade > 0 {
			progress := float64(i-hold) / float64(fade)
			gain = tone.Gain * math.Pow(fadeFloor/tone.Gain, progress)
		}
		phase := 2 * math.Pi * tone.Frequency * float64(i) / sampleRate
		samples[start+i] += gain * volume * math.Sin(phase)
	}
}

func samplesFor(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d.Seconds() * sampleRate)
}

func encodeWAV(pcm []int16) []byte {
	dataSize := len(pcm) * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	var buf bytes.Buffer
	buf.Grow(44 + dataSize)
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*blockAlign))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	_ = binary.Write(&buf, binary.LittleEndian, pcm)
	return buf.Bytes()
}
