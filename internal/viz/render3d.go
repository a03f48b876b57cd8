package viz

import (
	"cmp"
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/pbdsim/internal/metrics"
	"github.com/san-kum/pbdsim/internal/vec3"
)

var (
	axisX = r3.Vec{X: 1}
	axisY = r3.Vec{Y: 1}
)

// Camera orbits Target and projects world points onto the canvas. Extent is
// the world half-size that fills the view at zoom 1.
type Camera struct {
	Target     r3.Vec
	Extent     float64
	Distance   float64
	Near       float64
	RotX, RotY float64
	Zoom       float64
}

func NewCamera() *Camera {
	return &Camera{Extent: 50, Distance: 4, Near: 0.1, Zoom: 1}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// Fit centres the camera on the bounding box of a flat position buffer and
// resets rotation and zoom.
func (c *Camera) Fit(positions []float64) {
	c.RotX, c.RotY, c.Zoom = 0, 0, 1
	n := vec3.Count(positions)
	if n == 0 {
		return
	}
	lo := vec3.At(positions, 0)
	hi := lo
	for i := 1; i < n; i++ {
		p := vec3.At(positions, i)
		lo = r3.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = r3.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
	}
	c.Target = r3.Scale(0.5, r3.Add(lo, hi))
	span := r3.Sub(hi, lo)
	c.Extent = math.Max(1, 0.5*math.Max(span.X, math.Max(span.Y, span.Z)))
}

func (c *Camera) rotate(p r3.Vec) r3.Vec {
	if c.RotX != 0 {
		p = r3.NewRotation(c.RotX, axisX).Rotate(p)
	}
	if c.RotY != 0 {
		p = r3.NewRotation(c.RotY, axisY).Rotate(p)
	}
	return p
}

// Project maps p to dot coordinates on an sw x sh canvas. It returns the
// view depth and whether the point lands on screen in front of the camera.
func (c *Camera) Project(p r3.Vec, sw, sh int) (int, int, float64, bool) {
	q := r3.Scale(c.Zoom/c.Extent, c.rotate(r3.Sub(p, c.Target)))
	if q.Z >= c.Distance-c.Near {
		return 0, 0, 0, false
	}
	scale := c.Distance / (c.Distance - q.Z)
	half := 0.45 * float64(min(sw, sh))
	x := int(math.Round(q.X*scale*half)) + sw/2
	y := int(math.Round(-q.Y*scale*half)) + sh/2
	return x, y, q.Z, x >= 0 && x < sw && y >= 0 && y < sh
}

type Edge struct {
	Start, End r3.Vec
}

type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe           { return &Wireframe{} }
func (w *Wireframe) AddEdge(s, e r3.Vec) { w.Edges = append(w.Edges, Edge{s, e}) }
func (w *Wireframe) AddPoint(p r3.Vec)   { w.Edges = append(w.Edges, Edge{p, p}) }
func (w *Wireframe) Clear()              { w.Edges = w.Edges[:0] }

// Merge appends the edges of o.
func (w *Wireframe) Merge(o *Wireframe) *Wireframe {
	w.Edges = append(w.Edges, o.Edges...)
	return w
}

// SceneWireframe draws every link as an edge and every particle as a point.
func SceneWireframe(positions []float64, links []metrics.Link) *Wireframe {
	n := vec3.Count(positions)
	w := &Wireframe{Edges: make([]Edge, 0, len(links)+n)}
	for _, l := range links {
		if l.A < n && l.B < n {
			w.AddEdge(vec3.At(positions, l.A), vec3.At(positions, l.B))
		}
	}
	for i := 0; i < n; i++ {
		w.AddPoint(vec3.At(positions, i))
	}
	return w
}

// BoxWireframe outlines the axis-aligned box [lo, hi].
func BoxWireframe(lo, hi r3.Vec) *Wireframe {
	w := NewWireframe()
	v := make([]r3.Vec, 8)
	for i := range v {
		v[i] = lo
		if i&1 != 0 {
			v[i].X = hi.X
		}
		if i&2 != 0 {
			v[i].Y = hi.Y
		}
		if i&4 != 0 {
			v[i].Z = hi.Z
		}
	}
	for i := range v {
		for _, bit := range []int{1, 2, 4} {
			if i&bit == 0 {
				w.AddEdge(v[i], v[i|bit])
			}
		}
	}
	return w
}

type projectedEdge struct {
	x1, y1, x2, y2 int
	depth          float64
}

// Render3D draws the wireframe far to near. Edges with at least one visible
// end are kept and clipped by the canvas.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	cw, ch := c.Dots()
	proj := make([]projectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, d1, v1 := cam.Project(e.Start, cw, ch)
		x2, y2, d2, v2 := cam.Project(e.End, cw, ch)
		if !v1 && !v2 {
			continue
		}
		if !v1 {
			x1, y1 = x2, y2
		}
		if !v2 {
			x2, y2 = x1, y1
		}
		proj = append(proj, projectedEdge{x1, y1, x2, y2, (d1 + d2) / 2})
	}
	slices.SortFunc(proj, func(a, b projectedEdge) int { return cmp.Compare(a.depth, b.depth) })
	for _, e := range proj {
		if e.x1 == e.x2 && e.y1 == e.y2 {
			c.Blob(e.x1, e.y1, 0)
			continue
		}
		c.DrawLine(e.x1, e.y1, e.x2, e.y2)
	}
}
