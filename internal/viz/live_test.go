package viz

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/pbdsim/internal/config"
	"github.com/san-kum/pbdsim/internal/experiment"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	cfg := config.GetPreset("chain", "short")
	cfg.Particles = 10
	m, err := NewModel(cfg, experiment.NewRegistry())
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestModelTicks(t *testing.T) {
	m := newTestModel(t)
	if m.Init() == nil {
		t.Fatal("Init returned no tick")
	}

	m, cmd := update(t, m, TickMsg(time.Now()))
	m, _ = update(t, m, TickMsg(time.Now()))
	if m.Frame() != 2 {
		t.Errorf("frame = %d, want 2", m.Frame())
	}
	if cmd == nil {
		t.Error("tick did not schedule the next tick")
	}
	if len(m.kinetic) != 2 {
		t.Errorf("kinetic history = %d, want 2", len(m.kinetic))
	}
}

func TestModelPauseAndStep(t *testing.T) {
	m := newTestModel(t)

	m, _ = update(t, m, runes(" "))
	if m.Running() {
		t.Fatal("space did not pause")
	}
	m, _ = update(t, m, TickMsg(time.Now()))
	if m.Frame() != 0 {
		t.Errorf("paused model advanced to frame %d", m.Frame())
	}

	m, _ = update(t, m, runes("n"))
	if m.Frame() != 1 {
		t.Errorf("step: frame = %d, want 1", m.Frame())
	}

	m, _ = update(t, m, runes(" "))
	if !m.Running() {
		t.Error("space did not resume")
	}
}

func TestModelReset(t *testing.T) {
	m := newTestModel(t)
	before := append([]float64(nil), m.Scene().System.Positions...)

	for i := 0; i < 5; i++ {
		m, _ = update(t, m, TickMsg(time.Now()))
	}
	m, _ = update(t, m, runes("r"))
	if m.Frame() != 0 {
		t.Errorf("frame after reset = %d", m.Frame())
	}
	after := m.Scene().System.Positions
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("position %d = %f after reset, want %f", i, after[i], before[i])
		}
	}
}

func TestModelCameraKeys(t *testing.T) {
	m := newTestModel(t)
	zoom := m.Camera().Zoom

	m, _ = update(t, m, runes("+"))
	if m.Camera().Zoom <= zoom {
		t.Error("+ did not zoom in")
	}
	m, _ = update(t, m, runes("-"))
	m, _ = update(t, m, runes("-"))
	if m.Camera().Zoom >= zoom {
		t.Error("- did not zoom out")
	}

	m, _ = update(t, m, runes("x"))
	m, _ = update(t, m, runes("Y"))
	if m.Camera().RotX != rotateStep || m.Camera().RotY != -rotateStep {
		t.Errorf("rotation = (%f, %f)", m.Camera().RotX, m.Camera().RotY)
	}
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := update(t, m, runes("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestModelView(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = update(t, m, TickMsg(time.Now()))
	m, _ = update(t, m, TickMsg(time.Now()))

	view := m.View()
	for _, want := range []string{"CHAIN", "RUNNING", "kinetic", "link_residual"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m, _ = update(t, m, runes("t"))
	if m.theme.Name != ThemeRetro.Name {
		t.Errorf("theme = %s, want retro", m.theme.Name)
	}
	m, _ = update(t, m, runes("?"))
	if !strings.Contains(m.View(), "pause / resume") {
		t.Error("help overlay missing")
	}
}

func TestModelUnknownScene(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Scene = "nope"
	if _, err := NewModel(cfg, experiment.NewRegistry()); err == nil {
		t.Error("expected error for unknown scene")
	}
}

func TestAppOpensPreset(t *testing.T) {
	a := NewApp(experiment.NewRegistry())
	if len(a.entries) != 10 {
		t.Fatalf("entries = %d, want 10", len(a.entries))
	}
	if a.entries[0] != (entry{"chain", "long"}) {
		t.Errorf("first entry = %v", a.entries[0])
	}
	if !strings.Contains(a.View(), "PBDSIM") {
		t.Error("menu view missing title")
	}

	next, _ := a.Update(tea.KeyMsg{Type: tea.KeyDown})
	next, cmd := next.(App).Update(tea.KeyMsg{Type: tea.KeyEnter})
	a = next.(App)
	if !a.inSim || cmd == nil {
		t.Fatal("enter did not open the viewer")
	}
	if a.live.Scene().Name != "chain" || a.live.cfg.Particles != 50 {
		t.Errorf("opened %s with %d particles, want chain short", a.live.Scene().Name, a.live.cfg.Particles)
	}

	next, _ = a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if next.(App).inSim {
		t.Error("esc did not return to the menu")
	}
}
