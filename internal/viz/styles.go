package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme colours the density view from sparse to dense and the side panel.
type Theme struct {
	Name    string
	Density []lipgloss.Color
	Accent  lipgloss.Color
	Muted   lipgloss.Color
	Warning lipgloss.Color
}

var Themes = []Theme{
	{
		Name:    "nebula",
		Density: []lipgloss.Color{"#3a2f6b", "#6b4fbb", "#b07cff", "#ffd1ff", "#ffffff"},
		Accent:  "#00ffff",
		Muted:   "#666688",
		Warning: "#ffaa00",
	},
	{
		Name:    "ember",
		Density: []lipgloss.Color{"#5a1a00", "#a83200", "#ff6b00", "#ffc048", "#fff5d0"},
		Accent:  "#ff9ff3",
		Muted:   "#8b6b6c",
		Warning: "#ff4757",
	},
	{
		Name:    "mono",
		Density: []lipgloss.Color{"#555555", "#888888", "#bbbbbb", "#dddddd", "#ffffff"},
		Accent:  "#0088ff",
		Muted:   "#666666",
		Warning: "#ffaa00",
	},
}

// ThemeByName falls back to the first theme.
func ThemeByName(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// styles are the lipgloss styles derived from a theme.
type styles struct {
	density []lipgloss.Style
	panel   lipgloss.Style
	header  lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	running lipgloss.Style
	paused  lipgloss.Style
	hint    lipgloss.Style
	graph   lipgloss.Style
	cursor  lipgloss.Style
}

func newStyles(t Theme) styles {
	s := styles{
		panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).
			Padding(0, 2).
			Width(44),
		header:  lipgloss.NewStyle().Bold(true).Foreground(t.Accent).MarginBottom(1),
		label:   lipgloss.NewStyle().Foreground(t.Muted).Width(13),
		value:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		running: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff88")),
		paused:  lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
		hint:    lipgloss.NewStyle().Foreground(t.Muted).Italic(true).MarginTop(1),
		graph:   lipgloss.NewStyle().Foreground(t.Accent),
		cursor:  lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
	}
	for _, c := range t.Density {
		s.density = append(s.density, lipgloss.NewStyle().Foreground(c))
	}
	return s
}

// densityStyle picks a shade from the number of particles in a cell. Shades
// step up by powers of four.
func (s styles) densityStyle(hits int) lipgloss.Style {
	level := 0
	for n := hits; n > 4 && level < len(s.density)-1; n /= 4 {
		level++
	}
	return s.density[level]
}

// ProgressBar renders a fixed width bar for a fraction in [0, 1].
func ProgressBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	filled = max(0, min(width, filled))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
