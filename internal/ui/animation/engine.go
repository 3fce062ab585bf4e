package animation

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"fyne.io/fyne/v2"
)

// Range defines a duration range with random sampling.
type Range struct {
	Min time.Duration
	Max time.Duration
}

// Random returns a random duration within the range.
func (value Range) Random(rng *rand.Rand) time.Duration {
	if value.Max <= value.Min {
		return value.Min
	}
	delta := value.Max - value.Min
	return value.Min + time.Duration(rng.Int63n(int64(delta)))
}

// Config contains animation timing values.
type Config struct {
	RunFrameDuration time.Duration

	BlinkClosedDuration Range
	BlinkOpenDuration   Range
	BlinkInterval       Range
	DoubleBlinkChance   float64
	DoubleBlinkGap      Range
}

// Engine manages sprite animations for the timer window.
type Engine struct {
	mu           sync.Mutex
	config       Config
	updateSprite func(fyne.Resource)
	remaining    func() time.Duration
	cancel       context.CancelFunc
	rng          *rand.Rand
}

// New creates a new animation engine.
func New(config Config, updateSprite func(fyne.Resource)) *Engine {
	return &Engine{
		config:       config,
		updateSprite: updateSprite,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetRemainingSource lets the run cycle speed up near the end of a step.
func (engine *Engine) SetRemainingSource(remaining func() time.Duration) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.remaining = remaining
}

// StartRun cycles the running frames until ctx ends or another animation
// starts.
func (engine *Engine) StartRun(ctx context.Context, spec RunSpec) {
	if len(spec.Frames) == 0 {
		engine.Stop()
		return
	}
	engine.start(ctx, func(runCtx context.Context) {
		for frame := 0; ; frame = (frame + 1) % len(spec.Frames) {
			engine.updateSprite(spec.Frames[frame])
			if !sleepWithContext(runCtx, spec.FrameDuration(engine.config.RunFrameDuration, engine.currentRemaining())) {
				return
			}
		}
	})
}

// StartRest starts the breathing blink loop.
func (engine *Engine) StartRest(ctx context.Context, rest RestSpec) {
	engine.start(ctx, func(runCtx context.Context) {
		engine.updateSprite(rest.Open)
		for {
			if !sleepWithContext(runCtx, engine.random(engine.config.BlinkInterval)) {
				return
			}
			engine.updateSprite(rest.Closed)
			if !sleepWithContext(runCtx, engine.random(engine.config.BlinkClosedDuration)) {
				return
			}
			engine.updateSprite(rest.Open)
			if !sleepWithContext(runCtx, engine.random(engine.config.BlinkOpenDuration)) {
				return
			}

			if engine.chance() <= engine.config.DoubleBlinkChance {
				if !sleepWithContext(runCtx, engine.random(engine.config.DoubleBlinkGap)) {
					return
				}
				engine.updateSprite(rest.Closed)
				if !sleepWithContext(runCtx, engine.random(engine.config.BlinkClosedDuration)) {
					return
				}
				engine.updateSprite(rest.Open)
			}
		}
	})
}

// ShowStill stops any animation and shows a single sprite.
func (engine *Engine) ShowStill(resource fyne.Resource) {
	engine.Stop()
	engine.updateSprite(resource)
}

// Stop terminates any active animation.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.cancel != nil {
		engine.cancel()
		engine.cancel = nil
	}
}

func (engine *Engine) start(parent context.Context, run func(context.Context)) {
	engine.mu.Lock()
	if engine.cancel != nil {
		engine.cancel()
	}
	runCtx, cancel := context.WithCancel(parent)
	engine.cancel = cancel
	engine.mu.Unlock()

	go run(runCtx)
}

func (engine *Engine) currentRemaining() time.Duration {
	engine.mu.Lock()
	remaining := engine.remaining
	engine.mu.Unlock()
	if remaining == nil {
		return 0
	}
	return remaining()
}

func (engine *Engine) random(value Range) time.Duration {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return value.Random(engine.rng)
}

func (engine *Engine) chance() float64 {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.rng.Float64()
}

func sleepWithContext(ctx context.Context, duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
