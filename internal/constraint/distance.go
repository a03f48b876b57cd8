package constraint

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/pbdsim/internal/vec3"
)

// Distance keeps each pair of particles within [min, max] of each other.
// Indices are consumed in pairs.
type Distance struct {
	relations
	min2, max2 float64
}

func NewDistance(d float64, idx ...int) *Distance {
	return NewDistanceRange(d, d, idx...)
}

func NewDistanceRange(min, max float64, idx ...int) *Distance {
	c := &Distance{relations: newRelations(0, 2, idx)}
	c.SetDistance(min, max)
	return c
}

func (c *Distance) SetDistance(min, max float64) {
	c.SetMin(min)
	c.SetMax(max)
}

func (c *Distance) SetMin(min float64) { c.min2 = min * min }
func (c *Distance) SetMax(max float64) { c.max2 = max * max }

func (c *Distance) Min() float64 { return math.Sqrt(c.min2) }
func (c *Distance) Max() float64 { return math.Sqrt(c.max2) }

func (c *Distance) Apply(rel int, p0, _ []float64) {
	ai, bi := c.at(rel, 0), c.at(rel, 1)
	a, b := vec3.At(p0, ai), vec3.At(p0, bi)

	d := r3.Sub(b, a)
	if d == (r3.Vec{}) {
		d = r3.Vec{X: Epsilon, Y: Epsilon, Z: Epsilon}
	}

	dist2 := r3.Norm2(d)
	if dist2 > c.min2 && dist2 < c.max2 {
		return
	}

	target2 := c.max2
	if dist2 < c.min2 {
		target2 = c.min2
	}

	// Approximates (target - dist) / (2 dist) without a square root.
	diff := target2/(dist2+target2) - 0.5
	corr := r3.Scale(diff, d)

	vec3.SetVec(p0, ai, r3.Sub(a, corr))
	vec3.SetVec(p0, bi, r3.Add(b, corr))
}

func (c *Distance) Validate(count int) error {
	if err := c.validate(count); err != nil {
		return err
	}
	return checkRange(c.Min(), c.Max())
}

func (*Distance) sealed() {}
