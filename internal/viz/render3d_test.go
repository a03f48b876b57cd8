package viz

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/pbdsim/internal/metrics"
)

func TestCameraProject(t *testing.T) {
	cam := NewCamera()
	cam.Extent = 10

	tests := []struct {
		name    string
		p       r3.Vec
		x, y    int
		visible bool
	}{
		{"centre", r3.Vec{}, 50, 50, true},
		{"right edge", r3.Vec{X: 10}, 95, 50, true},
		{"up", r3.Vec{Y: 10}, 50, 5, true},
		{"behind", r3.Vec{Z: 40}, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, _, ok := cam.Project(tt.p, 100, 100)
			if ok != tt.visible || x != tt.x || y != tt.y {
				t.Errorf("Project = (%d, %d, %v), want (%d, %d, %v)", x, y, ok, tt.x, tt.y, tt.visible)
			}
		})
	}
}

func TestCameraRotateY(t *testing.T) {
	cam := NewCamera()
	cam.Extent = 10
	cam.RotateY(math.Pi / 2)

	x, y, depth, ok := cam.Project(r3.Vec{X: 10}, 100, 100)
	if !ok || x != 50 || y != 50 {
		t.Errorf("Project = (%d, %d, %v), want centre", x, y, ok)
	}
	if math.Abs(depth+1) > 1e-9 {
		t.Errorf("depth = %f, want -1", depth)
	}
}

func TestCameraZoomLimits(t *testing.T) {
	cam := NewCamera()
	for i := 0; i < 50; i++ {
		cam.ZoomIn()
	}
	if cam.Zoom != 10 {
		t.Errorf("zoom = %f, want 10", cam.Zoom)
	}
	for i := 0; i < 50; i++ {
		cam.ZoomOut()
	}
	if cam.Zoom != 0.1 {
		t.Errorf("zoom = %f, want 0.1", cam.Zoom)
	}
}

func TestCameraFit(t *testing.T) {
	cam := NewCamera()
	cam.RotX, cam.Zoom = 1, 3
	cam.Fit([]float64{-10, 0, 0, 10, 4, 2})

	if cam.Target != (r3.Vec{X: 0, Y: 2, Z: 1}) {
		t.Errorf("target = %v", cam.Target)
	}
	if cam.Extent != 10 {
		t.Errorf("extent = %f, want 10", cam.Extent)
	}
	if cam.RotX != 0 || cam.Zoom != 1 {
		t.Error("fit did not reset the view")
	}

	cam.Fit([]float64{3, 3, 3})
	if cam.Extent != 1 {
		t.Errorf("single point extent = %f, want 1", cam.Extent)
	}
}

func TestSceneWireframe(t *testing.T) {
	pos := []float64{0, 0, 0, 1, 0, 0, 2, 0, 0}
	w := SceneWireframe(pos, []metrics.Link{{A: 0, B: 1}, {A: 1, B: 2}, {A: 2, B: 7}})
	if len(w.Edges) != 5 {
		t.Fatalf("edges = %d, want 2 links and 3 points", len(w.Edges))
	}
	if w.Edges[1].Start != (r3.Vec{X: 1}) || w.Edges[1].End != (r3.Vec{X: 2}) {
		t.Errorf("edge 1 = %v", w.Edges[1])
	}
}

func TestBoxWireframe(t *testing.T) {
	w := BoxWireframe(r3.Vec{X: -1, Y: -1, Z: -1}, r3.Vec{X: 1, Y: 1, Z: 1})
	if len(w.Edges) != 12 {
		t.Fatalf("edges = %d, want 12", len(w.Edges))
	}
	for _, e := range w.Edges {
		if r3.Norm(r3.Sub(e.End, e.Start)) != 2 {
			t.Errorf("edge %v is not axis aligned", e)
		}
	}
}

func TestRender3D(t *testing.T) {
	c := NewCanvas(50, 25)
	cam := NewCamera()
	cam.Extent = 10

	w := NewWireframe()
	w.AddEdge(r3.Vec{X: -5}, r3.Vec{X: 5})
	w.AddPoint(r3.Vec{Z: 100})
	Render3D(c, w, cam)

	cw, ch := c.Dots()
	if !c.IsSet(cw/2, ch/2) {
		t.Error("centre of line not drawn")
	}

	w.Clear()
	c.Clear()
	Render3D(c, w.Merge(BoxWireframe(r3.Vec{X: -5, Y: -5, Z: -5}, r3.Vec{X: 5, Y: 5, Z: 5})), cam)
	if c.String() == NewCanvas(50, 25).String() {
		t.Error("box not drawn")
	}

	Render3D(nil, w, cam)
}
