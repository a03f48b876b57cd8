package sim

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/san-kum/pbdsim/internal/particle"
)

// Metric accumulates a scalar over the frames of a run.
type Metric interface {
	Name() string
	Observe(s *particle.System, frame int)
	Value() float64
	Reset()
}

// Observer sees the system before every tick.
type Observer interface {
	OnFrame(s *particle.System, frame int)
}

// Stepper mutates forces or constraints before every tick.
type Stepper interface {
	Step(frame int)
}

type Config struct {
	Delta  float64
	Frames int

	// SampleEvery records positions every n frames. Zero records only the
	// initial and final frames.
	SampleEvery   int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Delta:         1,
		Frames:        600,
		SampleEvery:   10,
		ValidateState: true,
	}
}

// Frame is a copy of the positions after Index ticks.
type Frame struct {
	Index     int
	Time      float64
	Positions []float64
}

type Result struct {
	Frames    []Frame
	Metrics   map[string]float64
	FramesRun int
	Elapsed   time.Duration
	Errors    []error
}

// Final returns the last recorded frame.
func (r *Result) Final() Frame {
	if len(r.Frames) == 0 {
		return Frame{}
	}
	return r.Frames[len(r.Frames)-1]
}

func (r *Result) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("frames", r.FramesRun),
		slog.Int("samples", len(r.Frames)),
		slog.Duration("elapsed", r.Elapsed),
		slog.Int("errors", len(r.Errors)),
	}

	names := make([]string, 0, len(r.Metrics))
	for name := range r.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	metrics := make([]any, 0, len(names))
	for _, name := range names {
		metrics = append(metrics, slog.Float64(name, r.Metrics[name]))
	}
	if len(metrics) > 0 {
		attrs = append(attrs, slog.Group("metrics", metrics...))
	}
	return slog.GroupValue(attrs...)
}

type SimError struct {
	Frame   int
	Time    float64
	Message string
	Err     error
}

func (e SimError) Error() string {
	return fmt.Sprintf("frame %d (t=%.4f): %s", e.Frame, e.Time, e.Message)
}

func (e SimError) Unwrap() error { return e.Err }
