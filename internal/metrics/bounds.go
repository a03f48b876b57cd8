package metrics

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/pbdsim/internal/particle"
)

// BoundsViolation is the fraction of particle observations that fell outside
// an axis-aligned box, by a margin of more than tolerance.
type BoundsViolation struct {
	name       string
	min, max   r3.Vec
	tolerance  float64
	violations int
	samples    int
}

func NewBoundsViolation(min, max r3.Vec, tolerance float64) *BoundsViolation {
	return &BoundsViolation{
		name:      "bounds_violation",
		min:       min,
		max:       max,
		tolerance: tolerance,
	}
}

func (b *BoundsViolation) Name() string { return b.name }

func (b *BoundsViolation) Observe(s *particle.System, _ int) {
	for i := 0; i < s.Count(); i++ {
		b.samples++
		if !b.inside(s.Position(i)) {
			b.violations++
		}
	}
}

func (b *BoundsViolation) inside(p r3.Vec) bool {
	t := b.tolerance
	return p.X >= b.min.X-t && p.X <= b.max.X+t &&
		p.Y >= b.min.Y-t && p.Y <= b.max.Y+t &&
		p.Z >= b.min.Z-t && p.Z <= b.max.Z+t
}

func (b *BoundsViolation) Value() float64 {
	if b.samples == 0 {
		return 0
	}
	return float64(b.violations) / float64(b.samples)
}

func (b *BoundsViolation) Reset() {
	b.violations = 0
	b.samples = 0
}
