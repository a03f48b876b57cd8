package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultScene       = "chain"
	DefaultParticles   = 200
	DefaultIterations  = 2
	DefaultDelta       = 1.0
	DefaultFrames      = 600
	DefaultSampleEvery = 10
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Scene       string             `yaml:"scene"`
	Particles   int                `yaml:"particles"`
	Iterations  int                `yaml:"iterations"`
	Delta       float64            `yaml:"delta"`
	Frames      int                `yaml:"frames"`
	SampleEvery int                `yaml:"sample_every"`
	Seed        int64              `yaml:"seed"`
	Perturb     float64            `yaml:"perturb"`
	Params      map[string]float64 `yaml:"params,omitempty"`
	Forces      []ForceConfig      `yaml:"forces,omitempty"`
	Constraints []ConstraintConfig `yaml:"constraints,omitempty"`
	Ramps       []RampConfig       `yaml:"ramps,omitempty"`
}

// ForceConfig declares a force added on top of the scene's own forces.
// Vectors are written as three-element sequences.
type ForceConfig struct {
	Name      string    `yaml:"name,omitempty"`
	Type      string    `yaml:"type"`
	Vector    []float64 `yaml:"vector,omitempty"`
	Position  []float64 `yaml:"position,omitempty"`
	Kind      string    `yaml:"kind,omitempty"`
	Radius    float64   `yaml:"radius,omitempty"`
	Intensity float64   `yaml:"intensity,omitempty"`
}

// ConstraintConfig declares a constraint added on top of the scene's own.
// Distance and angle use Value, or Min and Max for a range. Plane takes three
// anchors and axis two; box bounds are Lower and Upper.
type ConstraintConfig struct {
	Type     string    `yaml:"type"`
	Indices  []int     `yaml:"indices,omitempty"`
	Anchors  []int     `yaml:"anchors,omitempty"`
	Value    float64   `yaml:"value,omitempty"`
	Min      float64   `yaml:"min,omitempty"`
	Max      float64   `yaml:"max,omitempty"`
	Position []float64 `yaml:"position,omitempty"`
	Lower    []float64 `yaml:"lower,omitempty"`
	Upper    []float64 `yaml:"upper,omitempty"`
	Origin   []float64 `yaml:"origin,omitempty"`
	Normal   []float64 `yaml:"normal,omitempty"`
	Distance float64   `yaml:"distance,omitempty"`
	Friction *float64  `yaml:"friction,omitempty"`
	Pin      bool      `yaml:"pin,omitempty"`
}

// IsRange reports whether Min and Max were given instead of Value.
func (c ConstraintConfig) IsRange() bool {
	return c.Min != 0 || c.Max != 0
}

// RampConfig tweens a parameter of a named force over a number of frames.
type RampConfig struct {
	Force  string  `yaml:"force"`
	Param  string  `yaml:"param"`
	From   float64 `yaml:"from"`
	To     float64 `yaml:"to"`
	Frames int     `yaml:"frames"`
	Start  int     `yaml:"start,omitempty"`
	Ease   string  `yaml:"ease,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Scene:       DefaultScene,
		Particles:   DefaultParticles,
		Iterations:  DefaultIterations,
		Delta:       DefaultDelta,
		Frames:      DefaultFrames,
		SampleEvery: DefaultSampleEvery,
		Seed:        1,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy so presets are never mutated by callers.
func (c *Config) Clone() *Config {
	out := *c
	if c.Params != nil {
		out.Params = make(map[string]float64, len(c.Params))
		for k, v := range c.Params {
			out.Params[k] = v
		}
	}
	out.Forces = append([]ForceConfig(nil), c.Forces...)
	out.Constraints = append([]ConstraintConfig(nil), c.Constraints...)
	out.Ramps = append([]RampConfig(nil), c.Ramps...)
	return &out
}

// Param returns a scene parameter or def when unset.
func (c *Config) Param(name string, def float64) float64 {
	if v, ok := c.Params[name]; ok {
		return v
	}
	return def
}

func (c *Config) Validate() error {
	if c.Scene == "" {
		return fmt.Errorf("%w: scene is required", ErrInvalid)
	}
	if c.Delta <= 0 {
		return fmt.Errorf("%w: delta must be positive, got %f", ErrInvalid, c.Delta)
	}
	if c.Frames <= 0 {
		return fmt.Errorf("%w: frames must be positive, got %d", ErrInvalid, c.Frames)
	}
	if c.Particles < 0 || c.SampleEvery < 0 || c.Perturb < 0 {
		return fmt.Errorf("%w: particles, sample_every and perturb must not be negative", ErrInvalid)
	}

	for i, f := range c.Forces {
		if err := f.validate(); err != nil {
			return fmt.Errorf("%w: forces[%d]: %v", ErrInvalid, i, err)
		}
	}
	for i, cc := range c.Constraints {
		if err := cc.validate(); err != nil {
			return fmt.Errorf("%w: constraints[%d]: %v", ErrInvalid, i, err)
		}
	}
	for i, r := range c.Ramps {
		if r.Force == "" || r.Param == "" {
			return fmt.Errorf("%w: ramps[%d]: force and param are required", ErrInvalid, i)
		}
		if r.Frames <= 0 {
			return fmt.Errorf("%w: ramps[%d]: frames must be positive", ErrInvalid, i)
		}
	}
	return nil
}

func (f ForceConfig) validate() error {
	switch f.Type {
	case "directional":
		return vecLen("vector", f.Vector, true)
	case "point":
		return vecLen("position", f.Position, false)
	default:
		return fmt.Errorf("unknown force type %q", f.Type)
	}
}

func (c ConstraintConfig) validate() error {
	switch c.Type {
	case "distance", "angle", "point":
		if c.Type == "point" {
			return vecLen("position", c.Position, true)
		}
		return nil
	case "plane":
		if len(c.Anchors) != 3 {
			return fmt.Errorf("plane needs 3 anchors, got %d", len(c.Anchors))
		}
		return nil
	case "axis":
		if len(c.Anchors) != 2 {
			return fmt.Errorf("axis needs 2 anchors, got %d", len(c.Anchors))
		}
		return nil
	case "box":
		if err := vecLen("lower", c.Lower, true); err != nil {
			return err
		}
		return vecLen("upper", c.Upper, true)
	case "bounding_plane":
		if err := vecLen("origin", c.Origin, false); err != nil {
			return err
		}
		return vecLen("normal", c.Normal, true)
	default:
		return fmt.Errorf("unknown constraint type %q", c.Type)
	}
}

func vecLen(name string, v []float64, required bool) error {
	if len(v) == 0 && !required {
		return nil
	}
	if len(v) != 3 {
		return fmt.Errorf("%s needs 3 components, got %d", name, len(v))
	}
	return nil
}
