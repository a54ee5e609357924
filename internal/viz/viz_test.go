package viz

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/pmsim/internal/config"
	"github.com/san-kum/pmsim/internal/experiment"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(4, 0)

	rows := c.Rows(nil)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	want := string([]rune{0x2801, 0x2880})
	if rows[0] != want {
		t.Errorf("got %q, want %q", rows[0], want)
	}
	if c.Hits(1, 0) != 2 {
		t.Errorf("expected 2 hits, got %d", c.Hits(1, 0))
	}
	if !c.Lit(3, 3) || c.Lit(1, 1) {
		t.Error("Lit disagrees with Set")
	}

	c.Clear()
	if c.Hits(1, 0) != 0 || c.Lit(0, 0) {
		t.Error("Clear left dots behind")
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(4, 2)
	c.DrawLine(0, 0, 7, 7)
	for i := 0; i < 8; i++ {
		if !c.Lit(i, i) {
			t.Errorf("diagonal dot %d missing", i)
		}
	}
	c.Clear()
	c.DrawLine(6, 2, 1, 2)
	for x := 1; x <= 6; x++ {
		if !c.Lit(x, 2) {
			t.Errorf("horizontal dot %d missing", x)
		}
	}
}

func TestCameraProject(t *testing.T) {
	cam := NewCamera(r3.Vec{X: 100, Y: 100, Z: 100})

	x, y, ok := cam.Project(r3.Vec{X: 50, Y: 50, Z: 10}, 40, 40)
	if !ok || x != 20 || y != 20 {
		t.Errorf("centre projected to (%d, %d, %v)", x, y, ok)
	}
	// +y is up on screen
	_, yUp, _ := cam.Project(r3.Vec{X: 50, Y: 90, Z: 50}, 40, 40)
	if yUp >= 20 {
		t.Errorf("expected point above centre, got row %d", yUp)
	}
	if _, _, ok := cam.Project(r3.Vec{X: 500, Y: 50}, 40, 40); ok {
		t.Error("far point should be off canvas")
	}

	p := cam.Unproject(30, 10, 40, 40)
	if x, y, _ := cam.Project(p, 40, 40); x != 30 || y != 10 {
		t.Errorf("unproject round trip gave (%d, %d)", x, y)
	}

	cam.Rotate(0, 10)
	if cam.Pitch > 1.6 {
		t.Errorf("pitch not clamped: %g", cam.Pitch)
	}
}

func liveModel(t *testing.T) Model {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Grid = config.GridConfig{X: 12, Y: 12, Z: 12}
	cfg.World = config.WorldConfig{Width: 120, Height: 120, Depth: 120}
	cfg.Figure.Count = 100
	cfg.Figure.MinRadius = 20
	cfg.Figure.MaxRadius = 30
	e, err := experiment.New(cfg, experiment.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatal(err)
	}
	m, err := NewModel(e)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func press(m Model, key string) Model {
	var msg tea.KeyMsg
	switch key {
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModelSteps(t *testing.T) {
	m := liveModel(t)
	next, cmd := m.Update(TickMsg{})
	m = next.(Model)
	if cmd == nil {
		t.Error("expected next tick to be scheduled")
	}
	if m.Simulation().Tick() != 1 {
		t.Errorf("expected 1 tick, got %d", m.Simulation().Tick())
	}

	m = press(m, " ")
	if m.Running() {
		t.Fatal("space should pause")
	}
	next, _ = m.Update(TickMsg{})
	m = next.(Model)
	m = press(m, "n")
	if m.Simulation().Tick() != 2 {
		t.Errorf("expected a single manual step, got tick %d", m.Simulation().Tick())
	}
}

func TestModelKeys(t *testing.T) {
	m := liveModel(t)
	first := m.Solver()
	m = press(m, "s")
	if m.Solver() == first {
		t.Error("solver did not change")
	}

	dt := m.Simulation().Config().Dt
	m = press(m, "+")
	if got := m.Simulation().Config().Dt; got <= dt {
		t.Errorf("dt not increased: %g", got)
	}

	n := m.Simulation().Len()
	m = press(m, "left")
	m = press(m, "b")
	idx, ok := m.Simulation().BlackHole()
	if !ok || m.Simulation().Len() != n+1 {
		t.Fatal("black hole not injected")
	}
	p, _ := m.Simulation().Particle(idx)
	if p.Pos.X >= 60 {
		t.Errorf("black hole should follow the cursor, x=%g", p.Pos.X)
	}
	m = press(m, "d")
	if _, ok := m.Simulation().BlackHole(); ok {
		t.Error("black hole not dropped")
	}

	m.Update(TickMsg{})
	m = press(m, "r")
	if m.Simulation().Tick() != 0 || m.Simulation().Len() != n {
		t.Errorf("reset should rebuild the figure, tick=%d len=%d", m.Simulation().Tick(), m.Simulation().Len())
	}
}

func TestModelView(t *testing.T) {
	m := liveModel(t)
	m = press(m, "?")
	view := m.View()
	for _, want := range []string{"PARTICLE MESH", "Mean radius", "spectral", "inject or move black hole"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestLauncherOpensPreset(t *testing.T) {
	l := NewLauncher()
	if !strings.Contains(l.View(), "galaxy-disk") {
		t.Error("menu should list presets")
	}
	next, _ := l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if _, ok := next.(Launcher); !ok {
		t.Fatal("launcher update returned wrong model type")
	}
}

func TestProgressBar(t *testing.T) {
	if got := ProgressBar(0.5, 4); got != "██░░" {
		t.Errorf("got %q", got)
	}
	if got := ProgressBar(2, 3); got != "███" {
		t.Errorf("got %q", got)
	}
}
