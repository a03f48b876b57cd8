package constraint

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/pbdsim/internal/vec3"
)

// Point fixes target particles at a position. Both the current and previous
// positions are written, so pinned particles carry no velocity.
type Point struct {
	relations
	position r3.Vec
}

func NewPoint(position r3.Vec, targets ...int) *Point {
	return &Point{
		relations: newRelations(0, 1, targets),
		position:  position,
	}
}

func (c *Point) SetPosition(x, y, z float64) {
	c.position = r3.Vec{X: x, Y: y, Z: z}
}

func (c *Point) Position() r3.Vec { return c.position }

func (c *Point) Apply(rel int, p0, p1 []float64) {
	i := c.at(rel, 0)
	vec3.SetVec(p0, i, c.position)
	vec3.SetVec(p1, i, c.position)
}

func (c *Point) Validate(count int) error {
	if err := c.validate(count); err != nil {
		return err
	}
	if !finiteVec(c.position) {
		return fmt.Errorf("%w: position %v", ErrNonFinite, c.position)
	}
	return nil
}

func (*Point) sealed() {}
