package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/pbdsim/internal/config"
	"github.com/san-kum/pbdsim/internal/experiment"
)

var sceneInfo = map[string]string{
	"chain":       "pinned rope in a box",
	"cloth":       "grid pinned at two corners",
	"icosahedron": "rigid strut shell",
	"soup":        "triangles around a field",
}

type entry struct {
	scene, preset string
}

// App lists every preset and opens the live viewer on the chosen one.
type App struct {
	reg     *experiment.Registry
	entries []entry
	cursor  int
	live    Model
	inSim   bool
	err     error
	style   styles
}

func NewApp(reg *experiment.Registry) App {
	a := App{reg: reg, style: newStyles(Themes[0])}
	for _, scene := range config.ListScenes() {
		for _, preset := range config.ListPresets(scene) {
			a.entries = append(a.entries, entry{scene, preset})
		}
	}
	return a
}

func (a App) Init() tea.Cmd { return nil }

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.inSim {
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
			a.inSim = false
			return a, nil
		}
		next, cmd := a.live.Update(msg)
		a.live = next.(Model)
		return a, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return a, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.entries)-1 {
			a.cursor++
		}
	case "enter", " ":
		if len(a.entries) == 0 {
			return a, nil
		}
		e := a.entries[a.cursor]
		live, err := NewModel(config.GetPreset(e.scene, e.preset), a.reg)
		if err != nil {
			a.err = err
			return a, nil
		}
		a.live, a.inSim, a.err = live, true, nil
		return a, live.Init()
	}
	return a, nil
}

func (a App) View() string {
	if a.inSim {
		return a.live.View()
	}

	var b strings.Builder
	b.WriteString("\n\n    " + a.style.title.Render("PBDSIM") + "\n")
	b.WriteString("    " + a.style.muted.Render("position based dynamics") + "\n\n")
	for i, e := range a.entries {
		name := fmt.Sprintf("%-12s %-8s", e.scene, e.preset)
		if i == a.cursor {
			b.WriteString("    " + a.style.cursor.Render("▸ "+name) + "  " + a.style.value.Render(sceneInfo[e.scene]) + "\n")
		} else {
			b.WriteString("      " + a.style.muted.Render(name) + "\n")
		}
	}
	if a.err != nil {
		b.WriteString("\n    " + a.style.failed.Render(a.err.Error()) + "\n")
	}
	b.WriteString("\n    " + a.style.help.Render("j/k navigate  enter open  esc back  q quit") + "\n")
	return b.String()
}

// RunInteractive opens the preset picker.
func RunInteractive(reg *experiment.Registry) error {
	_, err := tea.NewProgram(NewApp(reg), tea.WithAltScreen()).Run()
	return err
}
