package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/pbdsim/internal/config"
	"github.com/san-kum/pbdsim/internal/experiment"
	"github.com/san-kum/pbdsim/internal/metrics"
	"github.com/san-kum/pbdsim/internal/sim"
	"github.com/san-kum/pbdsim/internal/vec3"
)

const (
	width           = 60
	height          = 20
	panelWidth      = 44
	historyCapacity = 300
	tickRate        = time.Second / 30
	rotateStep      = 0.1
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model ticks one scene and draws it with a metrics panel.
type Model struct {
	cfg      *config.Config
	reg      *experiment.Registry
	exp      *experiment.Experiment
	frame    int
	running  bool
	showBox  bool
	showHelp bool
	err      error
	canvas   *Canvas
	camera   *Camera
	kinetic  []float64
	theme    Theme
	style    styles
}

// NewModel builds the scene described by cfg and frames it.
func NewModel(cfg *config.Config, reg *experiment.Registry) (Model, error) {
	m := Model{
		cfg:     cfg,
		reg:     reg,
		running: true,
		showBox: true,
		canvas:  NewCanvas(width, height),
		camera:  NewCamera(),
		kinetic: make([]float64, 0, historyCapacity),
		theme:   Themes[0],
	}
	m.style = newStyles(m.theme)
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func (m Model) Init() tea.Cmd { return tick() }

// Frame returns the number of frames ticked since the last reset.
func (m Model) Frame() int { return m.frame }

func (m Model) Running() bool { return m.running }

func (m Model) Camera() *Camera { return m.camera }

func (m Model) Scene() *experiment.Scene { return m.exp.Scene() }

func (m Model) Err() error { return m.err }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n":
			if !m.running {
				m.advance()
			}
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
			}
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "x":
			m.camera.RotateX(rotateStep)
		case "X":
			m.camera.RotateX(-rotateStep)
		case "y":
			m.camera.RotateY(rotateStep)
		case "Y":
			m.camera.RotateY(-rotateStep)
		case "b":
			m.showBox = !m.showBox
		case "t":
			m.theme = NextTheme(m.theme.Name)
			m.style = newStyles(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		m.canvas.Resize(msg.Width-panelWidth-8, msg.Height-4)
	case TickMsg:
		if m.running {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

// reset rebuilds the scene from the config so ramps restart too.
func (m *Model) reset() error {
	exp := experiment.New(m.cfg)
	if err := exp.Setup(m.reg); err != nil {
		return err
	}
	m.exp = exp
	m.frame = 0
	m.err = nil
	m.kinetic = m.kinetic[:0]
	m.fit()
	return nil
}

func (m *Model) fit() {
	scene := m.exp.Scene()
	if scene.Bounds != nil {
		lo, hi := scene.Bounds.Bounds()
		if vec3.Finite(lo) && vec3.Finite(hi) {
			m.camera.Fit([]float64{lo.X, lo.Y, lo.Z, hi.X, hi.Y, hi.Z})
			return
		}
	}
	m.camera.Fit(scene.System.Positions)
}

func (m *Model) advance() {
	if m.err != nil {
		return
	}
	sys := m.exp.Scene().System
	m.exp.Runner().Advance(sys, m.frame, m.cfg.Delta)
	m.frame++
	if !sys.Valid() {
		m.err = fmt.Errorf("frame %d: %w", m.frame, sim.ErrUnstable)
		m.running = false
		return
	}
	m.kinetic = append(m.kinetic, metrics.Kinetic(sys))
	if len(m.kinetic) > historyCapacity {
		m.kinetic = m.kinetic[1:]
	}
}

func (m *Model) draw() {
	scene := m.exp.Scene()
	m.canvas.Clear()
	if m.showBox && scene.Bounds != nil {
		lo, hi := scene.Bounds.Bounds()
		if vec3.Finite(lo) && vec3.Finite(hi) {
			Render3D(m.canvas, BoxWireframe(lo, hi), m.camera)
		}
	}
	Render3D(m.canvas, SceneWireframe(scene.System.Positions, scene.Links), m.camera)
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return m.style.failed.Render("UNSTABLE")
	case !m.running:
		return m.style.paused.Render("PAUSED")
	}
	return m.style.running.Render("RUNNING")
}

func (m Model) row(label, value string) string {
	return m.style.label.Render(label) + m.style.value.Render(value) + "\n"
}

func (m Model) View() string {
	m.draw()
	scene := m.exp.Scene()
	sys := scene.System

	var s strings.Builder
	s.WriteString(m.style.title.Render(strings.ToUpper(scene.Name)) + "\n")
	s.WriteString(m.status() + "\n\n")

	s.WriteString(m.row("Frame", fmt.Sprintf("%d", m.frame)))
	s.WriteString(m.row("Time", fmt.Sprintf("%.2f", float64(m.frame)*m.cfg.Delta)))
	s.WriteString(m.row("Particles", fmt.Sprintf("%d", sys.Count())))
	s.WriteString(m.row("Iterations", fmt.Sprintf("%d", sys.Iterations())))
	s.WriteString(m.row("Constraints", fmt.Sprintf("%d", len(sys.Constraints()))))
	s.WriteString(m.row("Forces", fmt.Sprintf("%d", len(sys.Forces()))))
	if m.cfg.Frames > 0 {
		s.WriteString(m.style.label.Render("Progress") + m.style.progressBar(float64(m.frame)/float64(m.cfg.Frames), 20) + "\n")
	}

	s.WriteString("\n" + m.style.separator(panelWidth-6) + "\n")
	for _, mt := range m.exp.Runner().Metrics() {
		s.WriteString(m.row(mt.Name(), fmt.Sprintf("%.4g", mt.Value())))
	}

	if len(m.kinetic) > 1 {
		chart := asciigraph.Plot(m.kinetic, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("kinetic"))
		s.WriteString(m.style.graph.Render(chart) + "\n")
	}
	if m.err != nil {
		s.WriteString(m.style.failed.Render(m.err.Error()) + "\n")
	}

	s.WriteString(m.style.help.Render("SP:pause n:step r:reset q:quit\n+/-:zoom x/y:rotate b:box t:theme ?:help"))

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.style.canvas.Render(m.canvas.String()), m.style.panel.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + body
	}
	return body
}

const helpText = `
  space    pause / resume
  n        step one frame while paused
  r        rebuild the scene
  + -      zoom
  x X y Y  rotate
  b        toggle bounds box
  t        cycle theme
  q        quit
`

// Run opens the viewer for cfg in the alternate screen.
func Run(cfg *config.Config, reg *experiment.Registry) error {
	m, err := NewModel(cfg, reg)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
