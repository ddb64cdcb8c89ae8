package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/golang/geo/r2"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/navsim/internal/experiment"
	"github.com/san-kum/navsim/internal/export"
	"github.com/san-kum/navsim/internal/nav"
	"github.com/san-kum/navsim/internal/robot"
	"github.com/san-kum/navsim/internal/sim"
)

const (
	width           = 60
	height          = 24
	historyCapacity = 600
	frameRate       = 30
	maxSpeed        = 64
	robotRadius     = 0.1
)

type TickMsg time.Time

// recorder keeps the recent history of a run for drawing.
type recorder struct {
	trail  []r2.Point
	speeds []float64
	errs   []float64
}

func (r *recorder) OnStep(s sim.Sample) {
	r.trail = appendCapped(r.trail, s.Pose.Position())
	r.speeds = appendCapped(r.speeds, s.Cmd.V)
	if s.Reference != nil {
		r.errs = appendCapped(r.errs, robot.DistanceLinear(s.Pose, *s.Reference))
	}
}

func appendCapped[T any](xs []T, x T) []T {
	xs = append(xs, x)
	if len(xs) > historyCapacity {
		xs = xs[1:]
	}
	return xs
}

// Model steps a scenario in real time and draws it on a braille canvas.
type Model struct {
	exp    *experiment.Experiment
	sim    *sim.Simulator
	canvas *Canvas
	view   Viewport
	rec    *recorder
	theme  Theme

	layer *mapLayer

	running  bool
	speed    int
	showHelp bool
	status   string
	err      error
}

// NewModel prepares exp for interactive stepping.
func NewModel(exp *experiment.Experiment) (Model, error) {
	if exp.Simulator() == nil {
		if err := exp.Setup(); err != nil {
			return Model{}, err
		}
	}
	canvas := NewCanvas(width, height)
	rec := &recorder{}
	exp.Simulator().AddObserver(rec)

	return Model{
		exp:     exp,
		sim:     exp.Simulator(),
		canvas:  canvas,
		view:    NewViewport(export.NewScene(exp.Config()).View(), canvas),
		rec:     rec,
		layer:   &mapLayer{},
		theme:   Themes[0],
		running: true,
		speed:   1,
	}, nil
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "+", "=":
			m.speed = min(m.speed*2, maxSpeed)
		case "-", "_":
			m.speed = max(m.speed/2, 1)
		case "n":
			if !m.running {
				m.advance(1)
			}
		case "t":
			m.theme = NextTheme(m.theme)
		case "s":
			m.snapshot()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.advance(m.speed)
		}
		return m, tick()
	}
	return m, nil
}

// advance runs up to n control periods.
func (m *Model) advance(n int) {
	for i := 0; i < n && !m.sim.Done(); i++ {
		more, err := m.sim.Step()
		if err != nil {
			m.err = err
			m.running = false
			return
		}
		if !more {
			return
		}
	}
}

// snapshot saves the current scene as an SVG in the working directory.
func (m *Model) snapshot() {
	res := m.sim.Result()
	name := fmt.Sprintf("%s_%.1fs.svg", m.exp.Config().Name, m.sim.Time())
	scene := export.NewScene(m.exp.Config()).
		WithTrajectory(res.Poses(m.exp.Plant())).
		WithPaths(res.Planned, res.Smoothed)
	if err := scene.SaveSVG(name, export.DefaultSize); err != nil {
		m.status = "snapshot failed: " + err.Error()
		return
	}
	m.status = "saved " + name
}

// mapLayer caches the blocked dots of the last map drawn.
type mapLayer struct {
	occ  nav.Occupancy
	dots [][2]int
}

func (m *Model) drawMap() {
	occ := m.sim.Occupancy()
	if occ == nil {
		return
	}
	l := m.layer
	if occ != l.occ {
		l.occ = occ
		l.dots = l.dots[:0]
		blocked := func(p r2.Point) bool { return !occ.IsFree(p) }
		if c, ok := occ.(sim.Collider); ok {
			blocked = c.Occupied
		}
		w, h := m.view.Dots()
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if blocked(m.view.ToWorld(x, y)) {
					l.dots = append(l.dots, [2]int{x, y})
				}
			}
		}
	}
	for _, d := range l.dots {
		m.canvas.Set(d[0], d[1], LayerMap)
	}
}

func (m *Model) drawPose(p robot.Pose, radius float64, l Layer) {
	cx, cy := m.view.ToCanvas(p.Position())
	r := max(1, int(radius*m.view.Scale()))
	for a := 0.0; a < 2*math.Pi; a += math.Pi / 8 {
		m.canvas.Set(cx+int(float64(r)*math.Cos(a)), cy-int(float64(r)*math.Sin(a)), l)
	}
	sin, cos := math.Sincos(p.Theta)
	hx, hy := m.view.ToCanvas(p.Position().Add(r2.Point{X: cos, Y: sin}.Mul(2 * radius)))
	m.canvas.DrawLine(cx, cy, hx, hy, l)
}

func (m *Model) draw() {
	m.canvas.Clear()
	m.drawMap()
	m.view.Polyline(m.canvas, m.sim.Result().Smoothed, LayerPath)
	m.view.Polyline(m.canvas, m.rec.trail, LayerTrail)
	if nv, ok := m.sim.Controller().(*nav.Navigator); ok {
		if goal, ok := nv.Goal(); ok {
			m.drawPose(goal, robotRadius/2, LayerGoal)
		}
	}
	m.drawPose(m.sim.Pose(), robotRadius, LayerRobot)
}

func (m Model) statusLine() string {
	res := m.sim.Result()
	switch {
	case m.err != nil:
		return lipgloss.NewStyle().Foreground(m.theme.Error).Render("ERROR " + m.err.Error())
	case m.sim.Done() && res.Reached():
		return lipgloss.NewStyle().Foreground(m.theme.Success).Render(fmt.Sprintf("ARRIVED at %.1fs", res.ArrivalTime))
	case m.sim.Done():
		return lipgloss.NewStyle().Foreground(m.theme.Warning).Render("FINISHED")
	case !m.running:
		return lipgloss.NewStyle().Foreground(m.theme.Warning).Render("PAUSED")
	default:
		return lipgloss.NewStyle().Foreground(m.theme.Success).Render(fmt.Sprintf("RUNNING x%d", m.speed))
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.Render(m.theme.Layer))

	cfg := m.exp.Config()
	pose, cmd := m.sim.Pose(), m.sim.Command()
	mode := m.sim.Controller().Mode()

	var s strings.Builder
	s.WriteString(headerStyle.Foreground(m.theme.Accent).Render(strings.ToUpper(cfg.Name)) + "\n")
	s.WriteString(m.statusLine() + "\n\n")

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.1fs", m.sim.Time()))
	row("Mode", mode.String())
	row("Pose", pose.String())
	row("Command", fmt.Sprintf("v=%.2f ω=%.2f", cmd.V, cmd.Omega))
	if nv, ok := m.sim.Controller().(*nav.Navigator); ok {
		if goal, ok := nv.Goal(); ok {
			row("Goal", goal.String())
		}
		if err := nv.LastError(); err != nil {
			row("Planner", err.Error())
		}
	}
	row("Progress", ProgressBar(m.sim.Time()/cfg.Sim.Duration, 20, m.theme))
	row("Track err", SparklineChart(m.rec.errs, 20, m.theme))

	if len(m.rec.speeds) > 1 {
		chart := asciigraph.Plot(m.rec.speeds, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("v [m/s]"))
		s.WriteString(graphStyle.Foreground(m.theme.Trail).Render(chart) + "\n")
	}
	if m.status != "" {
		s.WriteString(lipgloss.NewStyle().Foreground(m.theme.Muted).Render(m.status) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause +/-:Speed N:Step\nS:Snapshot T:Theme ?:Help Q:Quit"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		help := strings.Join([]string{
			"Space  pause or resume",
			"+ / -  double or halve the speed",
			"N      single step while paused",
			"S      save an SVG snapshot",
			"T      cycle themes",
			"?      toggle this help",
			"Q      quit",
		}, "\n")
		return helpPanel.Render(help) + "\n\n" + mainView
	}
	return mainView
}

// Sim exposes the simulator being stepped.
func (m Model) Sim() *sim.Simulator { return m.sim }
