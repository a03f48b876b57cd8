package experiment

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/pbdsim/internal/config"
	"github.com/san-kum/pbdsim/internal/force"
	"github.com/san-kum/pbdsim/internal/particle"
	"github.com/san-kum/pbdsim/internal/sim"
)

func sceneConfig(scene string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Scene = scene
	cfg.Particles = 30
	cfg.Frames = 20
	return cfg
}

func TestRegistryUnknownScene(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.GetScene("nonexistent"); err == nil {
		t.Error("expected error for unknown scene")
	}
	if _, err := Build(sceneConfig("nonexistent"), reg); err == nil {
		t.Error("expected error building unknown scene")
	}
}

func TestListScenes(t *testing.T) {
	want := []string{"chain", "cloth", "empty", "icosahedron", "soup"}
	if got := NewRegistry().ListScenes(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestScenesBuild(t *testing.T) {
	tests := []struct {
		scene     string
		particles int
		links     int
	}{
		{"chain", 30, 29},
		{"cloth", 9, 12},
		{"icosahedron", 12, 36},
		{"soup", 30, 30},
		{"empty", 30, 0},
	}

	reg := NewRegistry()
	for _, tt := range tests {
		t.Run(tt.scene, func(t *testing.T) {
			cfg := sceneConfig(tt.scene)
			cfg.Params = map[string]float64{"width": 3, "height": 3}

			scene, err := Build(cfg, reg)
			if err != nil {
				t.Fatalf("build failed: %v", err)
			}
			if scene.System.Count() != tt.particles {
				t.Errorf("expected %d particles, got %d", tt.particles, scene.System.Count())
			}
			if len(scene.Links) != tt.links {
				t.Errorf("expected %d links, got %d", tt.links, len(scene.Links))
			}

			res, err := New(cfg).runOnce(reg)
			if err != nil {
				t.Fatalf("run failed: %v", err)
			}
			if len(res.Errors) != 0 {
				t.Errorf("unexpected errors: %v", res.Errors)
			}
		})
	}
}

func (e *Experiment) runOnce(reg *Registry) (*sim.Result, error) {
	if err := e.Setup(reg); err != nil {
		return nil, err
	}
	return e.Run(context.Background())
}

func meanResidual(scene *Scene) float64 {
	var sum float64
	for _, l := range scene.Links {
		sum += math.Abs(scene.System.Distance(l.A, l.B) - l.Rest)
	}
	return sum / float64(len(scene.Links))
}

func TestIcosahedronRecoversShape(t *testing.T) {
	cfg := sceneConfig("icosahedron")
	cfg.Iterations = 8
	cfg.Frames = 100
	cfg.Perturb = 1
	cfg.Params = map[string]float64{"gravity": 0}

	exp := New(cfg)
	if err := exp.Setup(NewRegistry()); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	before := meanResidual(exp.Scene())
	if before == 0 {
		t.Fatal("expected perturbation to distort the frame")
	}

	if _, err := exp.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if after := meanResidual(exp.Scene()); after > before/4 {
		t.Errorf("expected residual to shrink from %f, got %f", before, after)
	}
}

func TestClothPinsCorners(t *testing.T) {
	cfg := sceneConfig("cloth")
	cfg.Params = map[string]float64{"width": 6, "height": 4, "link": 2}

	exp := New(cfg)
	if _, err := exp.runOnce(NewRegistry()); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	sys := exp.Scene().System
	if p := sys.Position(0); p != (r3.Vec{X: -6}) {
		t.Errorf("expected left corner at (-6,0,0), got %v", p)
	}
	if p := sys.Position(5); p != (r3.Vec{X: 6}) {
		t.Errorf("expected right corner at (6,0,0), got %v", p)
	}
}

func TestBuildDeterministic(t *testing.T) {
	cfg := sceneConfig("soup")
	cfg.Perturb = 0.5

	a, err := Build(cfg, NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Build(cfg, NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a.System.Positions, b.System.Positions) {
		t.Error("expected identical positions for identical seeds")
	}

	cfg.Seed++
	c, _ := Build(cfg, NewRegistry())
	if reflect.DeepEqual(a.System.Positions, c.System.Positions) {
		t.Error("expected different positions for a different seed")
	}
}

func TestBuildFromConfig(t *testing.T) {
	cfg := sceneConfig("empty")
	cfg.Particles = 4
	cfg.Forces = []config.ForceConfig{
		{Type: "directional", Vector: []float64{0, -1, 0}},
		{Name: "well", Type: "point", Position: []float64{1, 2, 3}, Kind: "repulsor", Radius: 4},
	}
	cfg.Constraints = []config.ConstraintConfig{
		{Type: "distance", Value: 2, Indices: []int{0, 1, 1, 2}},
		{Type: "angle", Min: 1, Max: 2, Indices: []int{0, 1, 2}},
		{Type: "plane", Anchors: []int{0, 1, 2}, Indices: []int{3}},
		{Type: "axis", Anchors: []int{0, 1}, Indices: []int{2}},
		{Type: "point", Position: []float64{0, 0, 0}, Indices: []int{0}, Pin: true},
		{Type: "box", Lower: []float64{-1, -1, -1}, Upper: []float64{1, 1, 1}},
		{Type: "bounding_plane", Origin: []float64{0, 0, 0}, Normal: []float64{0, 1, 0}},
	}

	scene, err := Build(cfg, NewRegistry())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if _, ok := scene.Forces["force0"]; !ok {
		t.Error("expected unnamed force registered as force0")
	}
	well, ok := scene.Forces["well"].(*force.Point)
	if !ok || well.Kind != force.Repulsor || well.Radius() != 4 {
		t.Errorf("unexpected well force: %+v", scene.Forces["well"])
	}
	if n := len(scene.System.Constraints()); n != 6 {
		t.Errorf("expected 6 constraints, got %d", n)
	}
	if n := len(scene.System.PinConstraints()); n != 1 {
		t.Errorf("expected 1 pin, got %d", n)
	}
	if len(scene.Links) != 2 {
		t.Errorf("expected 2 links from distance constraint, got %d", len(scene.Links))
	}
}

func TestBuildRejectsBadIndices(t *testing.T) {
	cfg := sceneConfig("empty")
	cfg.Particles = 2
	cfg.Constraints = []config.ConstraintConfig{{Type: "distance", Value: 1, Indices: []int{0, 5}}}

	_, err := Build(cfg, NewRegistry())
	if !errors.Is(err, particle.ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestRamp(t *testing.T) {
	cfg := sceneConfig("empty")
	cfg.Forces = []config.ForceConfig{{Name: "wind", Type: "directional", Vector: []float64{0, 0, 0}}}
	cfg.Ramps = []config.RampConfig{{Force: "wind", Param: "z", From: 0, To: 1, Frames: 4, Start: 2}}

	scene, err := Build(cfg, NewRegistry())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	wind := scene.Forces["wind"].(*force.Directional)
	ramp := scene.Ramps[0]

	want := []float64{0, 0, 0.25, 0.5, 0.75, 1, 1}
	for frame, w := range want {
		ramp.Step(frame)
		if math.Abs(wind.Vector.Z-w) > 1e-6 {
			t.Errorf("frame %d: expected %f, got %f", frame, w, wind.Vector.Z)
		}
	}
	if !ramp.Done() {
		t.Error("expected ramp to finish")
	}
}

func TestRampErrors(t *testing.T) {
	tests := []struct {
		name string
		ramp config.RampConfig
	}{
		{"unknown force", config.RampConfig{Force: "missing", Param: "z", Frames: 1}},
		{"unknown param", config.RampConfig{Force: "gravity", Param: "radius", Frames: 1}},
		{"unknown easing", config.RampConfig{Force: "gravity", Param: "y", Frames: 1, Ease: "wobble"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := sceneConfig("chain")
			cfg.Ramps = []config.RampConfig{tt.ramp}
			if _, err := Build(cfg, NewRegistry()); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestEnsembleBuilder(t *testing.T) {
	cfg := sceneConfig("chain")
	ens := sim.NewEnsemble(EnsembleBuilder(cfg, NewRegistry()), 3, 10)

	results, err := ens.Run(context.Background(), sim.Config{Delta: 1, Frames: 10})
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	for i, r := range results {
		if _, ok := r.Metrics["link_residual"]; !ok {
			t.Errorf("member %d: missing link_residual", i)
		}
	}
	if cfg.Seed != config.DefaultConfig().Seed {
		t.Error("ensemble mutated the base config")
	}
}
