package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/pbdsim/internal/particle"
)

// Runner drives a particle system through a fixed number of frames.
type Runner struct {
	metrics   []Metric
	observers []Observer
	steppers  []Stepper
}

func New() *Runner {
	return &Runner{
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		steppers:  make([]Stepper, 0),
	}
}

func (r *Runner) AddMetric(m Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }
func (r *Runner) AddStepper(s Stepper)   { r.steppers = append(r.steppers, s) }

func (r *Runner) Metrics() []Metric { return r.metrics }

func (r *Runner) Run(ctx context.Context, sys *particle.System, cfg Config) (*Result, error) {
	if sys == nil {
		return nil, ErrNilSystem
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	capacity := 2
	if cfg.SampleEvery > 0 {
		capacity += cfg.Frames / cfg.SampleEvery
	}
	result := &Result{
		Frames:  make([]Frame, 0, capacity),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	start := time.Now()
	t := 0.0
	result.Frames = append(result.Frames, snapshot(sys, 0, t))

	for frame := 0; frame < cfg.Frames; frame++ {
		select {
		case <-ctx.Done():
			r.finish(result, start)
			return result, ctx.Err()
		default:
		}

		r.Advance(sys, frame, cfg.Delta)
		t += cfg.Delta
		result.FramesRun++

		if cfg.ValidateState && !sys.Valid() {
			result.Errors = append(result.Errors, SimError{
				Frame:   frame,
				Time:    t,
				Message: "invalid state (NaN/Inf)",
				Err:     ErrUnstable,
			})
			break
		}

		if cfg.SampleEvery > 0 && result.FramesRun%cfg.SampleEvery == 0 {
			result.Frames = append(result.Frames, snapshot(sys, result.FramesRun, t))
		}
	}

	if result.Final().Index != result.FramesRun {
		result.Frames = append(result.Frames, snapshot(sys, result.FramesRun, t))
	}

	r.finish(result, start)
	return result, nil
}

// RunWithCallback ticks until the callback returns false, the context is
// done or cfg.Frames is reached. Nothing is recorded.
func (r *Runner) RunWithCallback(ctx context.Context, sys *particle.System, cfg Config, callback func(*particle.System, int) bool) error {
	if sys == nil {
		return ErrNilSystem
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	for frame := 0; frame < cfg.Frames; frame++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !callback(sys, frame) {
			return nil
		}

		r.Advance(sys, frame, cfg.Delta)

		if cfg.ValidateState && !sys.Valid() {
			return SimError{
				Frame:   frame,
				Time:    float64(frame+1) * cfg.Delta,
				Message: "invalid state (NaN/Inf)",
				Err:     ErrUnstable,
			}
		}
	}

	return nil
}

// Advance runs the frame hooks and ticks sys once.
func (r *Runner) Advance(sys *particle.System, frame int, delta float64) {
	r.step(sys, frame)
	sys.Tick(delta)
}

func (r *Runner) step(sys *particle.System, frame int) {
	for _, s := range r.steppers {
		s.Step(frame)
	}
	for _, m := range r.metrics {
		m.Observe(sys, frame)
	}
	for _, obs := range r.observers {
		obs.OnFrame(sys, frame)
	}
}

func (r *Runner) finish(result *Result, start time.Time) {
	result.Elapsed = time.Since(start)
	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func snapshot(sys *particle.System, index int, t float64) Frame {
	positions := make([]float64, len(sys.Positions))
	copy(positions, sys.Positions)
	return Frame{Index: index, Time: t, Positions: positions}
}

func validateConfig(cfg Config) error {
	if cfg.Delta <= 0 {
		return fmt.Errorf("%w: delta must be positive, got %f", ErrInvalidConfig, cfg.Delta)
	}
	if cfg.Frames <= 0 {
		return fmt.Errorf("%w: frames must be positive, got %d", ErrInvalidConfig, cfg.Frames)
	}
	if cfg.SampleEvery < 0 {
		return fmt.Errorf("%w: sample_every must not be negative, got %d", ErrInvalidConfig, cfg.SampleEvery)
	}
	return nil
}
