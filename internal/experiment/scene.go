package experiment

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/pbdsim/internal/constraint"
	"github.com/san-kum/pbdsim/internal/force"
	"github.com/san-kum/pbdsim/internal/metrics"
	"github.com/san-kum/pbdsim/internal/particle"
)

// Scene is a particle system plus the bookkeeping hosts need to draw and
// measure it.
type Scene struct {
	Name   string
	System *particle.System
	Links  []metrics.Link
	Forces map[string]force.Force
	Bounds *constraint.Box
	Ramps  []*Ramp
}

func newScene(name string, sys *particle.System) *Scene {
	return &Scene{
		Name:   name,
		System: sys,
		Forces: make(map[string]force.Force),
	}
}

func (s *Scene) addForce(name string, f force.Force) error {
	if err := s.System.AddForce(f); err != nil {
		return err
	}
	s.Forces[name] = f
	return nil
}

// link records a rest length for each consecutive pair in idx.
func (s *Scene) link(rest float64, idx []int) {
	for i := 0; i+1 < len(idx); i += 2 {
		s.Links = append(s.Links, metrics.Link{A: idx[i], B: idx[i+1], Rest: rest})
	}
}

func (s *Scene) bound(min, max r3.Vec) error {
	box := constraint.NewBox(min, max)
	if err := s.System.AddConstraint(box); err != nil {
		return err
	}
	s.Bounds = box
	return nil
}
