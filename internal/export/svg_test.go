package export

import (
	"strings"
	"testing"

	"github.com/san-kum/pbdsim/internal/metrics"
	"github.com/san-kum/pbdsim/internal/viz"
)

func TestCanvasToSVG(t *testing.T) {
	if CanvasToSVG(nil, 4) != "" {
		t.Error("nil canvas should render nothing")
	}

	c := viz.NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	svg := CanvasToSVG(c, 4)

	if !strings.Contains(svg, `width="16" height="16"`) {
		t.Errorf("unexpected size in %s", svg)
	}
	if got := strings.Count(svg, "<circle"); got != 2 {
		t.Errorf("circles = %d, want 2", got)
	}
	if !strings.Contains(svg, `cx="2.0" cy="2.0"`) || !strings.Contains(svg, `cx="14.0" cy="14.0"`) {
		t.Errorf("dots misplaced: %s", svg)
	}
}

func TestFrameSVG(t *testing.T) {
	cam := viz.NewCamera()
	cam.Extent = 10
	pos := []float64{-5, 0, 0, 5, 0, 0, 0, 0, 100}
	svg := FrameSVG(pos, []metrics.Link{{A: 0, B: 1}, {A: 1, B: 2}}, cam, 200, 100)

	if got := strings.Count(svg, "<circle"); got != 2 {
		t.Errorf("circles = %d, want 2 (one particle is behind the camera)", got)
	}
	if got := strings.Count(svg, "<line"); got != 1 {
		t.Errorf("lines = %d, want 1", got)
	}
	if !strings.HasSuffix(svg, "</svg>") {
		t.Error("document not closed")
	}
}

func TestSeriesSVG(t *testing.T) {
	if SeriesSVG([]float64{0}, []float64{1}, 100, 100, "#fff") != "" {
		t.Error("single point should render nothing")
	}

	svg := SeriesSVG([]float64{0, 1, 2}, []float64{0, 1, 0}, 120, 120, "#ff00ff")
	if !strings.Contains(svg, `stroke="#ff00ff"`) {
		t.Error("stroke color missing")
	}
	// 10% padding on a 2 x 1 range maps (0,0) to (10,110).
	if !strings.Contains(svg, `d="M10.0,110.0 L60.0,10.0 L110.0,110.0"`) {
		t.Errorf("unexpected path: %s", svg)
	}
}
