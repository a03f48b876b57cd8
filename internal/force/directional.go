package force

import "gonum.org/v1/gonum/spatial/r3"

// Directional applies the same vector to every particle regardless of
// position. Gravity and wind are directional forces.
type Directional struct {
	Vector r3.Vec
}

func NewDirectional(v r3.Vec) *Directional {
	return &Directional{Vector: v}
}

func (d *Directional) Set(x, y, z float64) {
	d.Vector = r3.Vec{X: x, Y: y, Z: z}
}

func (d *Directional) Apply(i int, f0, _, _ []float64) {
	addVec(f0, i, d.Vector)
}

func (d *Directional) Validate() error {
	return checkFinite("vector", d.Vector)
}

func (*Directional) sealed() {}
