package experiment

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/pbdsim/internal/config"
	"github.com/san-kum/pbdsim/internal/constraint"
	"github.com/san-kum/pbdsim/internal/force"
)

// Build creates the configured scene, then layers on perturbation and the
// forces, constraints and ramps declared in cfg.
func Build(cfg *config.Config, reg *Registry) (*Scene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	fn, err := reg.GetScene(cfg.Scene)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	scene, err := fn(cfg, rng)
	if err != nil {
		return nil, fmt.Errorf("building scene %s: %w", cfg.Scene, err)
	}

	if cfg.Perturb > 0 {
		scene.System.Perturb(rng, cfg.Perturb)
	}

	for i, fc := range cfg.Forces {
		f, err := buildForce(fc)
		if err != nil {
			return nil, fmt.Errorf("forces[%d]: %w", i, err)
		}
		name := fc.Name
		if name == "" {
			name = fmt.Sprintf("force%d", i)
		}
		if err := scene.addForce(name, f); err != nil {
			return nil, fmt.Errorf("forces[%d]: %w", i, err)
		}
	}

	for i, cc := range cfg.Constraints {
		c, err := buildConstraint(cc)
		if err != nil {
			return nil, fmt.Errorf("constraints[%d]: %w", i, err)
		}
		if cc.Pin {
			err = scene.System.AddPinConstraint(c)
		} else {
			err = scene.System.AddConstraint(c)
		}
		if err != nil {
			return nil, fmt.Errorf("constraints[%d]: %w", i, err)
		}
		if d, ok := c.(*constraint.Distance); ok && !cc.IsRange() {
			scene.link(cc.Value, d.Indices())
		}
	}

	for i, rc := range cfg.Ramps {
		r, err := NewRamp(scene, rc)
		if err != nil {
			return nil, fmt.Errorf("ramps[%d]: %w", i, err)
		}
		scene.Ramps = append(scene.Ramps, r)
	}

	return scene, nil
}

func vec(v []float64) r3.Vec {
	if len(v) < 3 {
		return r3.Vec{}
	}
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

func buildForce(fc config.ForceConfig) (force.Force, error) {
	switch fc.Type {
	case "directional":
		return force.NewDirectional(vec(fc.Vector)), nil
	case "point":
		kind, err := force.ParseKind(fc.Kind)
		if err != nil {
			return nil, err
		}
		return force.NewPoint(vec(fc.Position), force.PointOptions{
			Kind:      kind,
			Radius:    fc.Radius,
			Intensity: fc.Intensity,
		}), nil
	default:
		return nil, fmt.Errorf("unknown force type: %s", fc.Type)
	}
}

func buildConstraint(cc config.ConstraintConfig) (constraint.Constraint, error) {
	switch cc.Type {
	case "distance":
		if cc.IsRange() {
			return constraint.NewDistanceRange(cc.Min, cc.Max, cc.Indices...), nil
		}
		return constraint.NewDistance(cc.Value, cc.Indices...), nil
	case "angle":
		if cc.IsRange() {
			return constraint.NewAngleRange(cc.Min, cc.Max, cc.Indices...), nil
		}
		return constraint.NewAngle(cc.Value, cc.Indices...), nil
	case "plane":
		if len(cc.Anchors) != 3 {
			return nil, fmt.Errorf("plane needs 3 anchors, got %d", len(cc.Anchors))
		}
		return constraint.NewPlane(cc.Anchors[0], cc.Anchors[1], cc.Anchors[2], cc.Indices...), nil
	case "axis":
		if len(cc.Anchors) != 2 {
			return nil, fmt.Errorf("axis needs 2 anchors, got %d", len(cc.Anchors))
		}
		return constraint.NewAxis(cc.Anchors[0], cc.Anchors[1], cc.Indices...), nil
	case "point":
		return constraint.NewPoint(vec(cc.Position), cc.Indices...), nil
	case "box":
		box := constraint.NewBox(vec(cc.Lower), vec(cc.Upper))
		if cc.Friction != nil {
			box.Friction = *cc.Friction
		}
		return box, nil
	case "bounding_plane":
		bp := constraint.NewBoundingPlane(vec(cc.Origin), vec(cc.Normal), cc.Distance)
		if cc.Friction != nil {
			bp.Friction = *cc.Friction
		}
		return bp, nil
	default:
		return nil, fmt.Errorf("unknown constraint type: %s", cc.Type)
	}
}
