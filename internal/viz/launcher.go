package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/pmsim/internal/config"
	"github.com/san-kum/pmsim/internal/experiment"
)

var (
	menuTitle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	menuSelected = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true)
	menuItem     = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	menuDim      = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

// Launcher lists the presets and opens the live view on the chosen one.
type Launcher struct {
	presets []string
	cursor  int
	opts    []experiment.Option
	live    *Model
	err     error
}

func NewLauncher(opts ...experiment.Option) Launcher {
	return Launcher{presets: config.ListPresets(), opts: opts}
}

func (l Launcher) Init() tea.Cmd { return nil }

func (l Launcher) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if l.live != nil {
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
			l.live = nil
			return l, nil
		}
		next, cmd := l.live.Update(msg)
		live := next.(Model)
		l.live = &live
		return l, cmd
	}

	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return l, nil
	}
	switch k.String() {
	case "q", "ctrl+c":
		return l, tea.Quit
	case "up", "k":
		if l.cursor > 0 {
			l.cursor--
		}
	case "down", "j":
		if l.cursor < len(l.presets)-1 {
			l.cursor++
		}
	case "enter", " ":
		return l.open(l.presets[l.cursor])
	}
	return l, nil
}

func (l Launcher) open(name string) (Launcher, tea.Cmd) {
	e, err := experiment.New(config.GetPreset(name), l.opts...)
	if err != nil {
		l.err = err
		return l, nil
	}
	live, err := NewModel(e)
	if err != nil {
		l.err = err
		return l, nil
	}
	l.err = nil
	l.live = &live
	return l, live.Init()
}

func (l Launcher) View() string {
	if l.live != nil {
		return l.live.View()
	}
	var s strings.Builder
	s.WriteString(menuTitle.Render("pmsim presets") + "\n\n")
	for i, name := range l.presets {
		cfg := config.GetPreset(name)
		desc := fmt.Sprintf("%s x%d, %s solver, %dx%dx%d grid",
			cfg.Figure.Name, cfg.Figure.Count, cfg.Solver, cfg.Grid.X, cfg.Grid.Y, cfg.Grid.Z)
		if i == l.cursor {
			s.WriteString(menuSelected.Render("> "+name) + "  " + menuDim.Render(desc) + "\n")
		} else {
			s.WriteString(menuItem.Render("  "+name) + "  " + menuDim.Render(desc) + "\n")
		}
	}
	if l.err != nil {
		s.WriteString("\n" + menuSelected.Render(l.err.Error()) + "\n")
	}
	s.WriteString("\n" + menuDim.Render("↑↓ select  enter start  esc back  q quit"))
	return s.String()
}
