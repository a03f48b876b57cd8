package metrics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/pbdsim/internal/particle"
	"github.com/san-kum/pbdsim/internal/vec3"
)

// KineticEnergy is Σ ½ |p − prev|² over unit-mass particles, using the
// implicit Verlet velocity.
// Value is the mean over observed frames.
type KineticEnergy struct {
	name    string
	total   float64
	samples int
	last    float64
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(s *particle.System, _ int) {
	e.last = Kinetic(s)
	e.total += e.last
	e.samples++
}

func (e *KineticEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *KineticEnergy) Last() float64 { return e.last }

func (e *KineticEnergy) Reset() {
	e.total = 0
	e.samples = 0
	e.last = 0
}

// Kinetic computes the instantaneous kinetic energy of s.
func Kinetic(s *particle.System) float64 {
	var sum float64
	for i := 0; i < s.Count(); i++ {
		v := r3.Sub(vec3.At(s.Positions, i), vec3.At(s.PositionsPrev, i))
		sum += 0.5 * r3.Norm2(v)
	}
	return sum
}

// MaxSpeed records the largest per-frame displacement seen.
type MaxSpeed struct {
	name string
	max  float64
}

func NewMaxSpeed() *MaxSpeed {
	return &MaxSpeed{name: "max_speed"}
}

func (m *MaxSpeed) Name() string { return m.name }

func (m *MaxSpeed) Observe(s *particle.System, _ int) {
	for i := 0; i < s.Count(); i++ {
		v := r3.Sub(vec3.At(s.Positions, i), vec3.At(s.PositionsPrev, i))
		m.max = math.Max(m.max, r3.Norm(v))
	}
}

func (m *MaxSpeed) Value() float64 { return m.max }

func (m *MaxSpeed) Reset() { m.max = 0 }
