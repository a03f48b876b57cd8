package constraint

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/pbdsim/internal/vec3"
)

// Axis snaps target particles onto the infinite line through the start and
// end particles.
type Axis struct {
	relations
}

func NewAxis(start, end int, targets ...int) *Axis {
	idx := append([]int{start, end}, targets...)
	return &Axis{relations: newRelations(2, 1, idx)}
}

func (c *Axis) SetAxis(start, end int) error {
	return c.setAnchors(start, end)
}

func (c *Axis) Apply(rel int, p0, _ []float64) {
	ai, ci := c.indices[0], c.indices[1]
	bi := c.at(rel, 0)

	a := vec3.At(p0, ai)
	ac := r3.Sub(vec3.At(p0, ci), a)
	acLen := r3.Norm(ac)
	if acLen == 0 {
		p0[ci*3] += Epsilon
		return
	}

	acu := r3.Scale(1/acLen, ac)
	pt := r3.Dot(acu, r3.Sub(vec3.At(p0, bi), a))
	vec3.SetVec(p0, bi, r3.Add(a, r3.Scale(pt, acu)))
}

func (c *Axis) Validate(count int) error {
	return c.validate(count)
}

func (*Axis) sealed() {}
