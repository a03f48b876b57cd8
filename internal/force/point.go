package force

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/pbdsim/internal/vec3"
)

// DefaultIntensity is used when PointOptions leaves Intensity at zero.
const DefaultIntensity = 0.05

type PointOptions struct {
	Kind      Kind
	Radius    float64
	Intensity float64
}

// Point is a field anchored at Position. Attractors pull particles outside
// the radius inward, repulsors push particles inside it outward, and the
// combined kind does both so particles settle on a shell at the radius.
//
// The contribution is (anchor - p) * (d² - r²) / d² * Intensity, a bounded
// restoring force rather than an inverse-square law.
type Point struct {
	Position  r3.Vec
	Kind      Kind
	Intensity float64

	radius2 float64
}

func NewPoint(position r3.Vec, opts PointOptions) *Point {
	p := &Point{
		Position:  position,
		Kind:      opts.Kind,
		Intensity: opts.Intensity,
	}
	if p.Intensity == 0 {
		p.Intensity = DefaultIntensity
	}
	p.SetRadius(opts.Radius)
	return p
}

func (p *Point) SetRadius(r float64) { p.radius2 = r * r }

func (p *Point) Radius() float64 { return math.Sqrt(p.radius2) }

func (p *Point) Set(x, y, z float64) {
	p.Position = r3.Vec{X: x, Y: y, Z: z}
}

func (p *Point) Apply(i int, f0, p0, _ []float64) {
	d := r3.Sub(vec3.At(p0, i), p.Position)
	dist2 := r3.Norm2(d)
	diff := dist2 - p.radius2

	var active bool
	switch p.Kind {
	case Attractor:
		active = dist2 > 0 && diff > 0
	case Repulsor:
		active = dist2 > 0 && diff < 0
	case AttractorRepulsor:
		active = dist2 > 0
	}
	if !active {
		return
	}

	scale := diff / dist2 * p.Intensity
	addVec(f0, i, r3.Scale(-scale, d))
}

func (p *Point) Validate() error {
	if err := checkFinite("position", p.Position); err != nil {
		return err
	}
	if math.IsNaN(p.Intensity) || math.IsInf(p.Intensity, 0) {
		return fmt.Errorf("%w: intensity %v", ErrNonFinite, p.Intensity)
	}
	if math.IsNaN(p.radius2) || math.IsInf(p.radius2, 0) {
		return fmt.Errorf("%w: radius %v", ErrNonFinite, p.Radius())
	}
	if _, ok := kindNames[p.Kind]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownKind, int(p.Kind))
	}
	return nil
}

func (*Point) sealed() {}
