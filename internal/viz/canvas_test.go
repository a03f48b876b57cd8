package viz

import (
	"strings"
	"testing"
)

func TestCanvasSetUnset(t *testing.T) {
	c := NewCanvas(2, 2)
	c.Set(0, 0)
	c.Set(3, 7)
	if !c.IsSet(0, 0) || !c.IsSet(3, 7) {
		t.Fatal("dots not set")
	}
	if c.Grid[0][0] != blank|0x1 {
		t.Errorf("cell (0,0) = %U", c.Grid[0][0])
	}
	if c.Grid[1][1] != blank|0x80 {
		t.Errorf("cell (1,1) = %U", c.Grid[1][1])
	}

	c.Unset(0, 0)
	if c.IsSet(0, 0) || c.Grid[0][0] != blank {
		t.Error("dot not cleared")
	}
}

func TestCanvasIgnoresOutOfRange(t *testing.T) {
	c := NewCanvas(2, 2)
	c.Set(-1, 0)
	c.Set(0, -1)
	c.Set(4, 0)
	c.Set(0, 8)
	if strings.ContainsFunc(c.String(), func(r rune) bool { return r != blank && r != '\n' }) {
		t.Error("out of range dots were drawn")
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(5, 2)
	c.DrawLine(0, 0, 9, 7)
	for _, p := range [][2]int{{0, 0}, {9, 7}} {
		if !c.IsSet(p[0], p[1]) {
			t.Errorf("endpoint %v not set", p)
		}
	}

	c.Clear()
	c.DrawLine(0, 3, 9, 3)
	for x := 0; x < 10; x++ {
		if !c.IsSet(x, 3) {
			t.Errorf("dot %d not on horizontal line", x)
		}
	}
}

func TestCanvasResize(t *testing.T) {
	c := NewCanvas(4, 4)
	c.Set(1, 1)
	c.Resize(0, -3)
	if c.Width != 1 || c.Height != 1 {
		t.Fatalf("size = %dx%d, want 1x1", c.Width, c.Height)
	}
	if w, h := c.Dots(); w != 2 || h != 4 {
		t.Errorf("dots = %dx%d", w, h)
	}
	if c.IsSet(1, 1) {
		t.Error("resize kept old dots")
	}
}
