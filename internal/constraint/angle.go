package constraint

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/pbdsim/internal/vec3"
)

const (
	angleMin = 1e-7
	angleMax = math.Pi - 1e-7

	// Targets at or above this also move the vertex particle.
	angleObtuse = 3 * math.Pi / 4
)

// Angle keeps the angle at vertex b of each triple (a, b, c) within
// [min, max] radians.
type Angle struct {
	relations
	min, max float64
}

func NewAngle(angle float64, idx ...int) *Angle {
	return NewAngleRange(angle, angle, idx...)
}

func NewAngleRange(min, max float64, idx ...int) *Angle {
	c := &Angle{relations: newRelations(0, 3, idx)}
	c.SetAngle(min, max)
	return c
}

func (c *Angle) SetAngle(min, max float64) {
	c.SetMin(min)
	c.SetMax(max)
}

func (c *Angle) SetMin(min float64) { c.min = vec3.Clamp(angleMin, angleMax, min) }
func (c *Angle) SetMax(max float64) { c.max = vec3.Clamp(angleMin, angleMax, max) }

func (c *Angle) Min() float64 { return c.min }
func (c *Angle) Max() float64 { return c.max }

func (c *Angle) Apply(rel int, p0, _ []float64) {
	ai, bi, ci := c.at(rel, 0), c.at(rel, 1), c.at(rel, 2)
	a, b, cc := vec3.At(p0, ai), vec3.At(p0, bi), vec3.At(p0, ci)

	ab := r3.Sub(b, a)
	bc := r3.Sub(cc, b)
	ac := r3.Sub(cc, a)

	abLen2 := r3.Norm2(ab)
	bcLen2 := r3.Norm2(bc)
	acLen2 := r3.Norm2(ac)

	if acLen2 == 0 || abLen2 == 0 || bcLen2 == 0 {
		p0[ai*3] += Epsilon
		p0[bi*3+1] += Epsilon
		p0[ci*3] -= Epsilon
		return
	}

	abLen := math.Sqrt(abLen2)
	bcLen := math.Sqrt(bcLen2)
	acLen := math.Sqrt(acLen2)

	angle := vec3.Acos(-r3.Dot(ab, bc) / (abLen * bcLen))
	if angle > c.min && angle < c.max {
		return
	}

	target := c.max
	if angle < c.min {
		target = c.min
	}

	// Law of cosines gives the AC length that produces the target angle.
	acTarget2 := abLen2 + bcLen2 - 2*abLen*bcLen*math.Cos(target)
	acTarget := math.Sqrt(acTarget2)
	acDiff := (acLen - acTarget) / acLen * 0.5

	shift := r3.Scale(acDiff, ac)
	vec3.SetVec(p0, ai, r3.Add(a, shift))
	vec3.SetVec(p0, ci, r3.Sub(cc, shift))

	if target < angleObtuse || acTarget == 0 {
		return
	}

	aTarget := vec3.Acos((abLen2 + acTarget2 - bcLen2) / (2 * abLen * acTarget))

	acu := r3.Scale(1/acLen, ac)
	ap := r3.Scale(r3.Dot(acu, ab), acu)
	bp := r3.Sub(ap, ab)

	if bp == (r3.Vec{}) {
		if target < math.Pi {
			p0[bi*3] += Epsilon
			p0[bi*3+1] += Epsilon
			p0[bi*3+2] += Epsilon
		}
		return
	}

	bpLen := r3.Norm(bp)
	bpTarget := r3.Norm(ap) * math.Tan(aTarget)
	bpDiff := (bpLen - bpTarget) / bpLen

	vec3.SetVec(p0, bi, r3.Add(b, r3.Scale(bpDiff, bp)))
}

func (c *Angle) Validate(count int) error {
	if err := c.validate(count); err != nil {
		return err
	}
	return checkRange(c.min, c.max)
}

func (*Angle) sealed() {}
