package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/pmsim/internal/experiment"
	"github.com/san-kum/pmsim/internal/metrics"
	"github.com/san-kum/pmsim/internal/sim"
	"github.com/san-kum/pmsim/internal/solver"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	canvasCols      = 72
	canvasRows      = 30
	historyCapacity = 600
	frameRate       = 30
	maxStepsPerTick = 64
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model is the live view of one simulation. It steps the simulation on
// every frame while running.
type Model struct {
	exp     *experiment.Experiment
	sim     *sim.Simulation
	solvers []string
	solver  int

	running       bool
	showHelp      bool
	stepsPerFrame int

	canvas *Canvas
	camera *Camera
	theme  int
	styles styles

	// cursor is where the black hole goes, in world coordinates.
	cursor r3.Vec

	meanRadius *metrics.MeanRadius
	energy     *metrics.KineticEnergy
	history    []float64

	frameTime time.Duration
	lastErr   error
}

// NewModel sets up e and wraps the resulting simulation.
func NewModel(e *experiment.Experiment) (Model, error) {
	if err := e.Setup(); err != nil {
		return Model{}, err
	}
	s := e.Simulation()
	names := s.Solvers().Names()
	m := Model{
		exp:           e,
		sim:           s,
		solvers:       names,
		running:       true,
		stepsPerFrame: 1,
		canvas:        NewCanvas(canvasCols, canvasRows),
		camera:        NewCamera(s.Config().Extent),
		styles:        newStyles(Themes[0]),
		cursor:        r3.Scale(0.5, s.Config().Extent),
		meanRadius:    metrics.NewMeanRadius(),
		energy:        metrics.NewKineticEnergy(),
	}
	for i, n := range names {
		if n == strings.ToLower(e.Config().Solver) {
			m.solver = i
		}
	}
	m.observe()
	return m, nil
}

// Simulation exposes the simulation currently shown.
func (m Model) Simulation() *sim.Simulation { return m.sim }

// Solver is the name of the active solver.
func (m Model) Solver() string {
	if len(m.solvers) == 0 {
		return solver.SpectralName
	}
	return m.solvers[m.solver]
}

func (m Model) Running() bool { return m.running }

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TickMsg:
		if m.running {
			start := time.Now()
			for i := 0; i < m.stepsPerFrame && m.running; i++ {
				m.step()
			}
			m.frameTime = time.Since(start)
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	ext := m.sim.Config().Extent
	nudge := 0.025 * max(ext.X, ext.Y)
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case "n":
		if !m.running {
			m.step()
		}
	case "r":
		m.reset()
	case "s":
		if len(m.solvers) > 0 {
			m.solver = (m.solver + 1) % len(m.solvers)
		}
	case "left", "h":
		m.cursor.X = max(0, m.cursor.X-nudge)
	case "right", "l":
		m.cursor.X = min(ext.X, m.cursor.X+nudge)
	case "up", "k":
		m.cursor.Y = min(ext.Y, m.cursor.Y+nudge)
	case "down", "j":
		m.cursor.Y = max(0, m.cursor.Y-nudge)
	case "b":
		m.sim.InjectBlackHole(m.cursor.X, m.cursor.Y, 0)
	case "d":
		m.sim.DropBlackHole()
	case "+", "=":
		m.scaleTimestep(1.25)
	case "-", "_":
		m.scaleTimestep(1 / 1.25)
	case "]":
		m.stepsPerFrame = min(maxStepsPerTick, m.stepsPerFrame*2)
	case "[":
		m.stepsPerFrame = max(1, m.stepsPerFrame/2)
	case "y":
		m.camera.Rotate(0.1, 0)
	case "Y":
		m.camera.Rotate(-0.1, 0)
	case "p":
		m.camera.Rotate(0, 0.1)
	case "P":
		m.camera.Rotate(0, -0.1)
	case "z":
		m.camera.ZoomIn()
	case "Z":
		m.camera.ZoomOut()
	case "0":
		m.camera.ResetView()
	case "t":
		m.theme = (m.theme + 1) % len(Themes)
		m.styles = newStyles(Themes[m.theme])
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *Model) scaleTimestep(f float64) {
	if err := m.sim.SetTimestep(m.sim.Config().Dt * f); err != nil {
		m.lastErr = err
	}
}

func (m *Model) step() {
	if err := m.sim.StepWith(m.Solver()); err != nil {
		m.lastErr = err
		m.running = false
		return
	}
	m.observe()
}

func (m *Model) observe() {
	m.meanRadius.Observe(m.sim.Store())
	m.energy.Observe(m.sim.Store())
	m.history = append(m.history, m.meanRadius.Value())
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

// reset rebuilds the initial population from the experiment configuration.
func (m *Model) reset() {
	if err := m.exp.Setup(); err != nil {
		m.lastErr = err
		return
	}
	m.sim = m.exp.Simulation()
	m.history = m.history[:0]
	m.lastErr = nil
	m.observe()
}

// draw projects every particle onto the canvas.
func (m *Model) draw() {
	m.canvas.Clear()
	m.camera.DrawBox(m.canvas, m.sim.Config().Extent)
	w, h := m.canvas.DotsWide(), m.canvas.DotsHigh()
	x, y, z := m.sim.Positions()
	for i := range x {
		if px, py, ok := m.camera.Project(r3.Vec{X: x[i], Y: y[i], Z: z[i]}, w, h); ok {
			m.canvas.Set(px, py)
		}
	}
}

func (m Model) View() string {
	m.draw()

	cursorCol, cursorRow := -1, -1
	if px, py, ok := m.camera.Project(m.cursor, m.canvas.DotsWide(), m.canvas.DotsHigh()); ok {
		cursorCol, cursorRow = px/2, py/4
	}
	st := m.styles
	rows := m.canvas.Rows(func(col, row int, text string, hits int) string {
		if col == cursorCol && row == cursorRow {
			return st.cursor.Render("+")
		}
		if hits == 0 {
			return text
		}
		return st.densityStyle(hits).Render(text)
	})
	canvasView := strings.Join(rows, "\n")

	var s strings.Builder
	s.WriteString(st.header.Render("PARTICLE MESH") + "\n")
	if m.running {
		s.WriteString(st.running.Render("RUNNING") + "\n\n")
	} else {
		s.WriteString(st.paused.Render("PAUSED") + "\n\n")
	}

	cfg := m.sim.Config()
	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Solver", m.Solver())
	row("Tick", fmt.Sprintf("%d", m.sim.Tick()))
	row("Time", fmt.Sprintf("%.3f", m.sim.Time()))
	row("dt", fmt.Sprintf("%.4g", cfg.Dt))
	row("Steps/frame", fmt.Sprintf("%d", m.stepsPerFrame))
	row("Particles", fmt.Sprintf("%d", m.sim.Len()))
	row("Mean radius", fmt.Sprintf("%.2f", m.meanRadius.Value()))
	row("Kinetic", fmt.Sprintf("%.4g", m.energy.Value()))
	row("Frame", fmt.Sprintf("%dms", m.frameTime.Milliseconds()))
	if i, ok := m.sim.BlackHole(); ok {
		p, _ := m.sim.Particle(i)
		row("Black hole", fmt.Sprintf("(%.0f, %.0f) m=%.3g", p.Pos.X, p.Pos.Y, p.Mass))
	} else {
		row("Black hole", "-")
	}
	row("Cursor", fmt.Sprintf("(%.0f, %.0f)", m.cursor.X, m.cursor.Y))

	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history,
			asciigraph.Height(6),
			asciigraph.Width(32),
			asciigraph.Caption("mean radius"),
		)
		s.WriteString("\n" + st.graph.Render(chart) + "\n")
	}
	if m.lastErr != nil {
		s.WriteString("\n" + st.paused.Render(m.lastErr.Error()) + "\n")
	}
	s.WriteString(st.hint.Render("SP:pause R:reset S:solver ?:help Q:quit"))

	view := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.panel.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + view
	}
	return view
}

const helpText = `Space    pause / resume        N      single step while paused
R        regenerate figure     S      next solver
Arrows   move cursor (hjkl)    B      inject or move black hole
D        drop black hole       + -    scale dt
[ ]      steps per frame       y/Y    yaw   p/P pitch
z/Z      zoom in / out         0      reset view
T        next theme            Q      quit`
