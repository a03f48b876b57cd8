// Package particle holds the particle system: state buffers, force and
// constraint registries and the fixed-step tick that advances them.
//
// A System is not safe for concurrent use. Run independent systems on
// separate goroutines instead of sharing one.
package particle

import (
	"fmt"
	"math/rand"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/pbdsim/internal/constraint"
	"github.com/san-kum/pbdsim/internal/force"
	"github.com/san-kum/pbdsim/internal/vec3"
)

type System struct {
	// Positions, PositionsPrev and AccumulatedForces hold 3 slots per
	// particle. Weights holds one. They are exported by reference so hosts
	// can read and write them between ticks.
	Positions         []float64
	PositionsPrev     []float64
	AccumulatedForces []float64
	Weights           []float64

	count      int
	iterations int

	local  []constraint.Constraint
	global []constraint.Constraint
	pins   []constraint.Constraint
	forces []force.Force
}

// New creates a system of count particles at the origin. Iterations below one
// are raised to one.
func New(count, iterations int) (*System, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCount, count)
	}
	return newSystem(vec3.Create(count), iterations), nil
}

// FromPositions creates a system whose particles start at rest at the given
// positions. The buffer is copied.
func FromPositions(positions []float64, iterations int) (*System, error) {
	if len(positions) == 0 {
		return nil, fmt.Errorf("%w: got 0", ErrInvalidCount)
	}
	if len(positions)%3 != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrBufferLength, len(positions))
	}
	return newSystem(vec3.FromValues(positions), iterations), nil
}

func newSystem(positions []float64, iterations int) *System {
	if iterations < 1 {
		iterations = 1
	}
	count := vec3.Count(positions)

	weights := make([]float64, count)
	for i := range weights {
		weights[i] = 1
	}

	return &System{
		Positions:         positions,
		PositionsPrev:     vec3.FromValues(positions),
		AccumulatedForces: vec3.Create(count),
		Weights:           weights,
		count:             count,
		iterations:        iterations,
	}
}

func (s *System) Count() int      { return s.count }
func (s *System) Iterations() int { return s.iterations }

// SetIterations changes the relaxation iteration count. Values below one are
// raised to one.
func (s *System) SetIterations(n int) {
	if n < 1 {
		n = 1
	}
	s.iterations = n
}

// SetPosition moves particle i and clears its velocity.
func (s *System) SetPosition(i int, x, y, z float64) {
	vec3.Set(s.Positions, i, x, y, z)
	vec3.Set(s.PositionsPrev, i, x, y, z)
}

func (s *System) SetPositionVec(i int, p r3.Vec) {
	s.SetPosition(i, p.X, p.Y, p.Z)
}

func (s *System) SetWeight(i int, w float64) {
	s.Weights[i] = w
}

// SetWeights copies w into the weight buffer. Extra values are ignored.
func (s *System) SetWeights(w []float64) {
	copy(s.Weights, w)
}

// Perturb displaces every slot by a random amount in [0, scale), applying
// the same offset to the previous position so no velocity is added.
func (s *System) Perturb(rng *rand.Rand, scale float64) {
	for k := range s.Positions {
		d := rng.Float64() * scale
		s.Positions[k] += d
		s.PositionsPrev[k] += d
	}
}

func (s *System) Position(i int) r3.Vec {
	return vec3.At(s.Positions, i)
}

func (s *System) CopyPosition(i int, out []float64) []float64 {
	return vec3.Copy(s.Positions, i, out)
}

func (s *System) Distance(a, b int) float64 {
	return vec3.Distance(s.Positions, a, b)
}

// Angle returns the angle at particle b between a and c.
func (s *System) Angle(a, b, c int) float64 {
	return vec3.Angle(s.Positions, a, b, c)
}

func (s *System) Each(fn func(i int)) {
	for i := 0; i < s.count; i++ {
		fn(i)
	}
}

// Valid reports whether every position is finite.
func (s *System) Valid() bool {
	return vec3.Valid(s.Positions) && vec3.Valid(s.PositionsPrev)
}

// AddConstraint registers c after validating it against the particle count.
// Global constraints go to the global list, all others to the local list.
func (s *System) AddConstraint(c constraint.Constraint) error {
	if err := s.check(c); err != nil {
		return err
	}
	if c.Global() {
		s.global = append(s.global, c)
	} else {
		s.local = append(s.local, c)
	}
	return nil
}

// RemoveConstraint drops every registration of c.
func (s *System) RemoveConstraint(c constraint.Constraint) {
	if c == nil {
		return
	}
	if c.Global() {
		s.global = removeAll(s.global, c)
	} else {
		s.local = removeAll(s.local, c)
	}
}

// AddPinConstraint registers c to run after all other constraints in each
// iteration.
func (s *System) AddPinConstraint(c constraint.Constraint) error {
	if err := s.check(c); err != nil {
		return err
	}
	s.pins = append(s.pins, c)
	return nil
}

func (s *System) RemovePinConstraint(c constraint.Constraint) {
	s.pins = removeAll(s.pins, c)
}

func (s *System) AddForce(f force.Force) error {
	if f == nil {
		return ErrNilForce
	}
	if err := f.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidForce, err)
	}
	s.forces = append(s.forces, f)
	return nil
}

func (s *System) RemoveForce(f force.Force) {
	s.forces = removeAll(s.forces, f)
}

// Constraints returns the global then local constraints in application order.
func (s *System) Constraints() []constraint.Constraint {
	out := make([]constraint.Constraint, 0, len(s.global)+len(s.local))
	out = append(out, s.global...)
	return append(out, s.local...)
}

func (s *System) PinConstraints() []constraint.Constraint {
	return slices.Clone(s.pins)
}

func (s *System) Forces() []force.Force {
	return slices.Clone(s.forces)
}

func (s *System) check(c constraint.Constraint) error {
	if c == nil {
		return ErrNilConstraint
	}
	if err := c.Validate(s.count); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConstraint, err)
	}
	return nil
}

func removeAll[T comparable](list []T, item T) []T {
	return slices.DeleteFunc(list, func(x T) bool { return x == item })
}
