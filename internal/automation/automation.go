package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/pbdsim/internal/config"
	"github.com/san-kum/pbdsim/internal/experiment"
	"github.com/san-kum/pbdsim/internal/optim"
	"github.com/san-kum/pbdsim/internal/sim"
	"github.com/san-kum/pbdsim/internal/storage"
)

var ErrEmptyScenario = errors.New("scenario has no steps")

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step starts from a preset, or from the defaults when Preset is empty, and
// applies Set on top. Set names follow optim.Apply.
type Step struct {
	Name   string             `yaml:"name"`
	Scene  string             `yaml:"scene"`
	Preset string             `yaml:"preset,omitempty"`
	Frames int                `yaml:"frames,omitempty"`
	Seed   *int64             `yaml:"seed,omitempty"`
	Set    map[string]float64 `yaml:"set,omitempty"`
	Save   bool               `yaml:"save"`
}

// StepResult is the outcome of one step. RunID is empty unless the step was
// saved.
type StepResult struct {
	Step   string
	Result *sim.Result
	RunID  string
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, ErrEmptyScenario
	}
	for i, step := range scenario.Steps {
		if _, err := step.Config(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return &scenario, nil
}

// Label names the step for output.
func (s Step) Label() string {
	if s.Name != "" {
		return s.Name
	}
	if s.Preset != "" {
		return s.Scene + "/" + s.Preset
	}
	return s.Scene
}

// Config resolves the step into a validated run config.
func (s Step) Config() (*config.Config, error) {
	if s.Scene == "" {
		return nil, fmt.Errorf("%w: scene is required", config.ErrInvalid)
	}

	var cfg *config.Config
	if s.Preset != "" {
		cfg = config.GetPreset(s.Scene, s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s/%s", s.Scene, s.Preset)
		}
	} else {
		cfg = config.DefaultConfig()
		cfg.Scene = s.Scene
	}

	cfg = optim.Apply(cfg, s.Set)
	if s.Frames > 0 {
		cfg.Frames = s.Frames
	}
	if s.Seed != nil {
		cfg.Seed = *s.Seed
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RunScenario executes the steps in order and stops at the first failure.
// Steps marked Save are written to st, which may be nil when none are.
func RunScenario(ctx context.Context, scenario *Scenario, reg *experiment.Registry, st *storage.Store) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		slog.Info("running step", "scenario", scenario.Name, "step", i+1, "of", len(scenario.Steps), "name", step.Label())

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp := experiment.New(cfg)
		if err := exp.Setup(reg); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}
		slog.Debug("step finished", "step", step.Label(), "result", result)

		sr := StepResult{Step: step.Label(), Result: result}
		if step.Save {
			if st == nil {
				return results, fmt.Errorf("step %d: no store to save to", i+1)
			}
			id, err := st.Save(cfg, result)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			sr.RunID = id
		}
		results = append(results, sr)
	}

	return results, nil
}
