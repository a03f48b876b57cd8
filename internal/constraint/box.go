package constraint

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/pbdsim/internal/vec3"
)

// DefaultFriction is the share of velocity removed when a global constraint
// moves a particle.
const DefaultFriction = 0.05

// Box keeps every particle inside an axis-aligned bounding box.
type Box struct {
	global
	min, max r3.Vec
	Friction float64
}

func NewBox(min, max r3.Vec) *Box {
	return &Box{min: min, max: max, Friction: DefaultFriction}
}

func (c *Box) SetBounds(min, max r3.Vec) {
	c.min = min
	c.max = max
}

func (c *Box) SetMin(x, y, z float64) { c.min = r3.Vec{X: x, Y: y, Z: z} }
func (c *Box) SetMax(x, y, z float64) { c.max = r3.Vec{X: x, Y: y, Z: z} }

func (c *Box) Bounds() (min, max r3.Vec) { return c.min, c.max }

func (c *Box) Apply(i int, p0, p1 []float64) {
	p := vec3.At(p0, i)
	clamped := r3.Vec{
		X: vec3.Clamp(c.min.X, c.max.X, p.X),
		Y: vec3.Clamp(c.min.Y, c.max.Y, p.Y),
		Z: vec3.Clamp(c.min.Z, c.max.Z, p.Z),
	}
	if clamped == p {
		return
	}
	vec3.SetVec(p0, i, clamped)
	damp(p1, i, clamped, c.Friction)
}

func (c *Box) Validate(int) error {
	if !finiteVec(c.min, c.max) || !finite(c.Friction) {
		return fmt.Errorf("%w: box %v %v", ErrNonFinite, c.min, c.max)
	}
	if c.min.X > c.max.X || c.min.Y > c.max.Y || c.min.Z > c.max.Z {
		return fmt.Errorf("%w: box %v %v", ErrBounds, c.min, c.max)
	}
	return nil
}

func (*Box) sealed() {}
