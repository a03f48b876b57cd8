package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/pbdsim/internal/particle"
)

func newSystem(t *testing.T, positions ...float64) *particle.System {
	t.Helper()
	s, err := particle.FromPositions(positions, 1)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestLinkResidual(t *testing.T) {
	s := newSystem(t, 0, 0, 0, 3, 0, 0, 3, 1, 0)
	m := NewLinkResidual([]Link{{A: 0, B: 1, Rest: 2}, {A: 1, B: 2, Rest: 1}})

	m.Observe(s, 0)
	if math.Abs(m.Value()-0.5) > 1e-12 {
		t.Errorf("expected 0.5, got %f", m.Value())
	}

	s.SetPosition(1, 2, 0, 0)
	s.SetPosition(2, 2, 1, 0)
	m.Observe(s, 1)
	if m.Last() != 0 {
		t.Errorf("expected last residual 0, got %f", m.Last())
	}
	if math.Abs(m.Value()-0.25) > 1e-12 {
		t.Errorf("expected mean 0.25, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Errorf("expected 0 after reset, got %f", m.Value())
	}
}

func TestLinkResidualNoLinks(t *testing.T) {
	m := NewLinkResidual(nil)
	m.Observe(newSystem(t, 0, 0, 0), 0)
	if m.Value() != 0 {
		t.Errorf("expected 0, got %f", m.Value())
	}
}

func TestKineticEnergy(t *testing.T) {
	s := newSystem(t, 0, 0, 0, 0, 0, 0)
	s.Positions[0] = 2
	s.Positions[4] = 1

	if got := Kinetic(s); math.Abs(got-2.5) > 1e-12 {
		t.Errorf("expected 2.5, got %f", got)
	}

	e := NewKineticEnergy()
	e.Observe(s, 0)
	e.Observe(newSystem(t, 0, 0, 0), 1)
	if math.Abs(e.Value()-1.25) > 1e-12 {
		t.Errorf("expected mean 1.25, got %f", e.Value())
	}
}

func TestMaxSpeed(t *testing.T) {
	s := newSystem(t, 0, 0, 0, 0, 0, 0)
	s.Positions[3] = 3
	s.Positions[4] = 4

	m := NewMaxSpeed()
	m.Observe(s, 0)
	if m.Value() != 5 {
		t.Errorf("expected 5, got %f", m.Value())
	}
	m.Reset()
	if m.Value() != 0 {
		t.Errorf("expected 0 after reset, got %f", m.Value())
	}
}

func TestBoundsViolation(t *testing.T) {
	s := newSystem(t, 0, 0, 0, 11, 0, 0, 10.05, 0, 0, 0, -20, 0)
	b := NewBoundsViolation(r3.Vec{X: -10, Y: -10, Z: -10}, r3.Vec{X: 10, Y: 10, Z: 10}, 0.1)

	b.Observe(s, 0)
	if b.Value() != 0.5 {
		t.Errorf("expected 0.5, got %f", b.Value())
	}
}
