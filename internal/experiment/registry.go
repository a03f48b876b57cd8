package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/pbdsim/internal/metrics"
	"github.com/san-kum/pbdsim/internal/sim"
)

type Registry struct {
	scenes map[string]SceneFunc
}

func NewRegistry() *Registry {
	r := &Registry{
		scenes: make(map[string]SceneFunc),
	}

	r.scenes["chain"] = Chain
	r.scenes["cloth"] = Cloth
	r.scenes["icosahedron"] = Icosahedron
	r.scenes["soup"] = Soup
	r.scenes["empty"] = Empty

	return r
}

// Register adds or replaces a scene builder.
func (r *Registry) Register(name string, fn SceneFunc) {
	r.scenes[name] = fn
}

func (r *Registry) GetScene(name string) (SceneFunc, error) {
	fn, ok := r.scenes[name]
	if !ok {
		return nil, fmt.Errorf("unknown scene: %s", name)
	}
	return fn, nil
}

func (r *Registry) ListScenes() []string {
	names := make([]string, 0, len(r.scenes))
	for name := range r.scenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns fresh metrics suited to scene.
func (r *Registry) DefaultMetrics(scene *Scene) []sim.Metric {
	ms := []sim.Metric{
		metrics.NewKineticEnergy(),
		metrics.NewMaxSpeed(),
	}
	if len(scene.Links) > 0 {
		ms = append(ms, metrics.NewLinkResidual(scene.Links))
	}
	if scene.Bounds != nil {
		lo, hi := scene.Bounds.Bounds()
		ms = append(ms, metrics.NewBoundsViolation(lo, hi, 1e-6))
	}
	return ms
}
