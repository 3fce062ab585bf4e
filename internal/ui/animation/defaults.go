package animation

import "time"

// DefaultConfig returns the default sprite timings.
func DefaultConfig() Config {
	return Config{
		RunFrameDuration: 120 * time.Millisecond,
		BlinkClosedDuration: Range{
			Min: 150 * time.Millisecond,
			Max: 200 * time.Millisecond,
		},
		BlinkOpenDuration: Range{
			Min: 150 * time.Millisecond,
			Max: 200 * time.Millisecond,
		},
		BlinkInterval: Range{
			Min: 2 * time.Second,
			Max: 5 * time.Second,
		},
		DoubleBlinkChance: 0.12,
		DoubleBlinkGap: Range{
			Min: 50 * time.Millisecond,
			Max: 100 * time.Millisecond,
		},
	}
}
