package constraint

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/pbdsim/internal/vec3"
)

// Plane projects target particles onto the plane through three defining
// particles a, b and c. The defining particles themselves are not moved
// except to separate a collinear triple.
type Plane struct {
	relations
	normal    r3.Vec
	hasNormal bool
}

func NewPlane(a, b, c int, targets ...int) *Plane {
	idx := append([]int{a, b, c}, targets...)
	return &Plane{relations: newRelations(3, 1, idx)}
}

// SetPlane moves the plane onto new defining particles. Once registered,
// indices past the system's particle count are rejected.
func (c *Plane) SetPlane(a, b, cc int) error {
	return c.setAnchors(a, b, cc)
}

// Normal returns the unit normal cached by the most recent pass, or the zero
// vector when the plane was degenerate.
func (c *Plane) Normal() r3.Vec {
	if !c.hasNormal {
		return r3.Vec{}
	}
	return c.normal
}

// Apply recomputes the normal on the first relation of each pass.
func (c *Plane) Apply(rel int, p0, _ []float64) {
	if rel == 0 {
		c.computeNormal(p0)
	}
	if !c.hasNormal {
		return
	}

	b := vec3.At(p0, c.indices[1])
	pi := c.at(rel, 0)
	p := vec3.At(p0, pi)

	pt := r3.Dot(r3.Sub(p, b), c.normal)
	vec3.SetVec(p0, pi, r3.Sub(p, r3.Scale(pt, c.normal)))
}

func (c *Plane) computeNormal(p0 []float64) {
	ai, bi, ci := c.indices[0], c.indices[1], c.indices[2]
	b := vec3.At(p0, bi)
	ba := r3.Sub(vec3.At(p0, ai), b)
	bc := r3.Sub(vec3.At(p0, ci), b)

	n := r3.Cross(ba, bc)
	lenSq := r3.Norm2(n)
	if lenSq == 0 {
		p0[ai*3] += Epsilon
		p0[bi*3+1] += Epsilon
		p0[ci*3] -= Epsilon
		c.hasNormal = false
		return
	}

	c.normal = r3.Scale(1/r3.Norm(n), n)
	c.hasNormal = true
}

func (c *Plane) Validate(count int) error {
	return c.validate(count)
}

func (*Plane) sealed() {}
