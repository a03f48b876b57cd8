package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/pbdsim/internal/config"
	"github.com/san-kum/pbdsim/internal/particle"
	"github.com/san-kum/pbdsim/internal/sim"
)

type Experiment struct {
	cfg    *config.Config
	scene  *Scene
	runner *sim.Runner
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Setup builds the scene and a runner carrying its ramps and default
// metrics. Extra metrics are added after the defaults.
func (e *Experiment) Setup(reg *Registry, extra ...sim.Metric) error {
	scene, err := Build(e.cfg, reg)
	if err != nil {
		return err
	}

	runner := sim.New()
	for _, r := range scene.Ramps {
		runner.AddStepper(r)
	}
	for _, m := range reg.DefaultMetrics(scene) {
		runner.AddMetric(m)
	}
	for _, m := range extra {
		runner.AddMetric(m)
	}

	e.scene = scene
	e.runner = runner
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.runner == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.runner.Run(ctx, e.scene.System, e.SimConfig())
}

func (e *Experiment) SimConfig() sim.Config {
	return sim.Config{
		Delta:         e.cfg.Delta,
		Frames:        e.cfg.Frames,
		SampleEvery:   e.cfg.SampleEvery,
		ValidateState: true,
	}
}

func (e *Experiment) Config() *config.Config { return e.cfg }

// Scene returns the built scene, or nil before Setup.
func (e *Experiment) Scene() *Scene { return e.scene }

// Runner returns the runner for adding observers.
func (e *Experiment) Runner() *sim.Runner { return e.runner }

// EnsembleBuilder returns a sim.BuildFunc that sets up an independent copy of
// cfg for each seed.
func EnsembleBuilder(cfg *config.Config, reg *Registry) sim.BuildFunc {
	return func(seed int64) (*particle.System, *sim.Runner, error) {
		c := cfg.Clone()
		c.Seed = seed
		exp := New(c)
		if err := exp.Setup(reg); err != nil {
			return nil, nil, err
		}
		return exp.scene.System, exp.runner, nil
	}
}
