// Package constraint implements the closed family of position constraints
// relaxed by a particle system. Each Apply call is a single projection step;
// convergence comes from repeating the pass over many iterations.
package constraint

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"
)

// Epsilon is the fixed displacement used to separate degenerate geometry.
const Epsilon = 0.1

var (
	ErrIndexOutOfRange = errors.New("constraint: index out of range")
	ErrArity           = errors.New("constraint: index count does not match arity")
	ErrNonFinite       = errors.New("constraint: non-finite parameter")
	ErrBounds          = errors.New("constraint: min exceeds max")
)

// Constraint is implemented by Distance, Angle, Plane, Axis, Point, Box and
// BoundingPlane only.
//
// Local constraints are applied once per relation, rel ranging over [0, Len()).
// Global constraints report Global() true and are applied once per particle,
// rel being the particle index.
type Constraint interface {
	Apply(rel int, p0, p1 []float64)
	Len() int
	Global() bool
	Indices() []int
	Validate(count int) error
	sealed()
}

// relations is the shared index layout of local constraints: an optional
// anchor prefix followed by groups of arity indices. count is the particle
// count of the last successful validation, 0 before registration.
type relations struct {
	indices []int
	prefix  int
	arity   int
	count   int
}

func newRelations(prefix, arity int, idx []int) relations {
	indices := make([]int, len(idx))
	copy(indices, idx)
	return relations{indices: indices, prefix: prefix, arity: arity}
}

func (r *relations) Len() int {
	n := len(r.indices) - r.prefix
	if n <= 0 {
		return 0
	}
	return n / r.arity
}

func (r *relations) Global() bool { return false }

// Indices returns a copy of the index buffer, anchor prefix included.
func (r *relations) Indices() []int { return slices.Clone(r.indices) }

// setAnchors replaces the anchor prefix. Indices are checked against the
// registered particle count, so a failed call leaves the buffer unchanged.
func (r *relations) setAnchors(anchors ...int) error {
	for _, ix := range anchors {
		if err := r.checkIndex(ix); err != nil {
			return err
		}
	}
	copy(r.indices[:r.prefix], anchors)
	return nil
}

func (r *relations) checkIndex(ix int) error {
	if ix < 0 || (r.count > 0 && ix >= r.count) {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, ix, r.count)
	}
	return nil
}

// at returns the k-th index of relation rel.
func (r *relations) at(rel, k int) int {
	return r.indices[r.prefix+rel*r.arity+k]
}

func (r *relations) validate(count int) error {
	n := len(r.indices) - r.prefix
	if n < r.arity || n%r.arity != 0 {
		return fmt.Errorf("%w: %d indices, prefix %d, arity %d",
			ErrArity, len(r.indices), r.prefix, r.arity)
	}
	for _, ix := range r.indices {
		if ix < 0 || ix >= count {
			return fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, ix, count)
		}
	}
	r.count = count
	return nil
}

type global struct{}

func (global) Len() int       { return 0 }
func (global) Global() bool   { return true }
func (global) Indices() []int { return nil }

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func finiteVec(vs ...r3.Vec) bool {
	for _, v := range vs {
		if !finite(v.X, v.Y, v.Z) {
			return false
		}
	}
	return true
}

func checkRange(min, max float64) error {
	if !finite(min, max) {
		return fmt.Errorf("%w: range [%v, %v]", ErrNonFinite, min, max)
	}
	if min > max {
		return fmt.Errorf("%w: [%v, %v]", ErrBounds, min, max)
	}
	return nil
}

// damp pulls the previous position of particle i toward p by friction,
// removing that share of its implied velocity.
func damp(p1 []float64, i int, p r3.Vec, friction float64) {
	ix := i * 3
	p1[ix] -= (p1[ix] - p.X) * friction
	p1[ix+1] -= (p1[ix+1] - p.Y) * friction
	p1[ix+2] -= (p1[ix+2] - p.Z) * friction
}
