package constraint

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/pbdsim/internal/vec3"
)

// BoundingPlane projects onto the plane every particle whose signed distance
// from it, measured along the normal, does not exceed Distance. With Distance
// 0 particles are held on the side the normal points to.
type BoundingPlane struct {
	global
	origin   r3.Vec
	normal   r3.Vec
	Distance float64
	Friction float64
}

func NewBoundingPlane(origin, normal r3.Vec, distance float64) *BoundingPlane {
	c := &BoundingPlane{
		origin:   origin,
		Distance: distance,
		Friction: DefaultFriction,
	}
	c.SetNormal(normal.X, normal.Y, normal.Z)
	return c
}

func (c *BoundingPlane) SetOrigin(x, y, z float64) {
	c.origin = r3.Vec{X: x, Y: y, Z: z}
}

// SetNormal stores the normal at unit length. A zero normal disables the
// constraint.
func (c *BoundingPlane) SetNormal(x, y, z float64) {
	n := r3.Vec{X: x, Y: y, Z: z}
	if l := r3.Norm(n); l > 0 {
		n = r3.Scale(1/l, n)
	}
	c.normal = n
}

func (c *BoundingPlane) Origin() r3.Vec { return c.origin }
func (c *BoundingPlane) Normal() r3.Vec { return c.normal }

func (c *BoundingPlane) Apply(i int, p0, p1 []float64) {
	if c.normal == (r3.Vec{}) {
		return
	}
	p := vec3.At(p0, i)
	pt := r3.Dot(r3.Sub(p, c.origin), c.normal)
	if pt > c.Distance {
		return
	}
	p = r3.Sub(p, r3.Scale(pt, c.normal))
	vec3.SetVec(p0, i, p)
	damp(p1, i, p, c.Friction)
}

func (c *BoundingPlane) Validate(int) error {
	if !finiteVec(c.origin, c.normal) || !finite(c.Friction) || math.IsNaN(c.Distance) {
		return fmt.Errorf("%w: bounding plane origin %v normal %v", ErrNonFinite, c.origin, c.normal)
	}
	return nil
}

func (*BoundingPlane) sealed() {}
