package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/rovsim/internal/control"
	"github.com/san-kum/rovsim/internal/setpoint"
	"github.com/san-kum/rovsim/internal/sim"
)

const (
	canvasWidth     = 60
	canvasHeight    = 20
	historyCapacity = 300
	trailCapacity   = 200
	frameRate       = time.Second / 30
	demandStep      = 0.1
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

type Options struct {
	Name string
	Dt   float64
	// Keyboard lets the keys write the setpoint board each frame. Leave it
	// off when the simulator's pilot or the command server owns the board.
	Keyboard bool
	Theme    string
}

// Model contains simulation state, visualization buffers, and UI context.
type Model struct {
	sim  *sim.Simulator
	opts Options

	surge, heave, yaw float64

	cur       sim.Sample
	depthHist []float64
	speedHist []float64
	trail     []mgl64.Vec3
	skipped   int
	err       error

	canvas   *Canvas
	camera   *Camera
	theme    Theme
	st       styles
	running  bool
	showHelp bool
}

func NewModel(s *sim.Simulator, opts Options) Model {
	if !(opts.Dt > 0) {
		opts.Dt = 0.01
	}
	theme := GetTheme(opts.Theme)
	m := Model{
		sim:       s,
		opts:      opts,
		depthHist: make([]float64, 0, historyCapacity),
		speedHist: make([]float64, 0, historyCapacity),
		trail:     make([]mgl64.Vec3, 0, trailCapacity),
		canvas:    NewCanvas(canvasWidth, canvasHeight),
		camera:    NewCamera(),
		theme:     theme,
		st:        newStyles(theme),
		running:   true,
	}
	if cur, err := s.Sample(); err == nil {
		m.cur = cur
	} else {
		m.err = err
	}
	return m
}

func (m Model) Init() tea.Cmd { return tick() }

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "w":
			m.surge = nudge(m.surge, demandStep)
		case "s":
			m.surge = nudge(m.surge, -demandStep)
		case "a":
			m.yaw = nudge(m.yaw, demandStep)
		case "d":
			m.yaw = nudge(m.yaw, -demandStep)
		case "r":
			m.heave = nudge(m.heave, demandStep)
		case "f":
			m.heave = nudge(m.heave, -demandStep)
		case "x":
			m.surge, m.heave, m.yaw = 0, 0, 0
		case "left":
			m.camera.Orbit(-0.1)
		case "right":
			m.camera.Orbit(0.1)
		case "+", "=":
			m.camera.Zoom(0.9)
		case "-", "_":
			m.camera.Zoom(1.1)
		case "t":
			m.theme = m.theme.Next()
			m.st = newStyles(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running && m.err == nil {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

func nudge(v, d float64) float64 {
	return mgl64.Clamp(v+d, -1, 1)
}

// step advances the simulator one tick and records history.
func (m *Model) step() {
	if m.opts.Keyboard {
		u := control.Mix(m.surge, m.heave, m.yaw)
		m.sim.Board().SetAll(u[:])
	}

	next, report, err := m.sim.Step(m.opts.Dt)
	if err != nil {
		m.err = err
		return
	}
	m.skipped += len(report.Skipped)
	m.cur = next

	m.depthHist = push(m.depthHist, next.Depth(), historyCapacity)
	m.speedHist = push(m.speedHist, next.Speed(), historyCapacity)
	m.trail = append(m.trail, next.Position)
	if len(m.trail) > trailCapacity {
		m.trail = m.trail[1:]
	}
}

func push(h []float64, v float64, limit int) []float64 {
	h = append(h, v)
	if len(h) > limit {
		h = h[1:]
	}
	return h
}

// draw renders the hull wireframe, thruster nodes and track.
func (m *Model) draw() {
	m.canvas.Clear()
	w, h := m.canvas.PixelSize()
	m.camera.Target = m.cur.Position

	arena := m.sim.Scene().Arena
	rov := m.sim.Vehicle()

	world, err := arena.WorldMatrix(rov.Hull().Handle())
	if err != nil {
		return
	}
	geom := rov.Geometry()
	pts := make([][2]int, len(geom.Vertices))
	vis := make([]bool, len(geom.Vertices))
	for i, v := range geom.Vertices {
		p := world.Mul4x1(v.Vec4(1)).Vec3()
		pts[i][0], pts[i][1], vis[i] = m.camera.Project(p, w, h)
	}
	for t := 0; t+2 < len(geom.Indices); t += 3 {
		tri := geom.Indices[t : t+3]
		for k := 0; k < 3; k++ {
			a, b := tri[k], tri[(k+1)%3]
			if vis[a] && vis[b] {
				m.canvas.DrawLine(pts[a][0], pts[a][1], pts[b][0], pts[b][1])
			}
		}
	}

	for _, node := range rov.Nodes() {
		p, err := arena.WorldPosition(node)
		if err != nil {
			continue
		}
		if x, y, ok := m.camera.Project(p, w, h); ok {
			m.canvas.Set(x, y)
			m.canvas.Set(x+1, y)
			m.canvas.Set(x, y+1)
			m.canvas.Set(x+1, y+1)
		}
	}

	for _, p := range m.trail {
		if x, y, ok := m.camera.Project(p, w, h); ok {
			m.canvas.Set(x, y)
		}
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	st := m.st

	var s strings.Builder
	name := m.opts.Name
	if name == "" {
		name = "rov"
	}
	s.WriteString(st.header.Render(strings.ToUpper(name)) + "\n")

	switch {
	case m.err != nil:
		s.WriteString(st.bad.Render("HALTED: "+m.err.Error()) + "\n")
	case !m.running:
		s.WriteString(st.warn.Render("PAUSED") + "\n")
	default:
		s.WriteString(st.good.Render("RUNNING") + "\n")
	}
	if m.skipped > 0 {
		s.WriteString(st.bad.Render(fmt.Sprintf("%d unstable commits refused", m.skipped)) + "\n")
	}
	s.WriteString("\n")

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	x := m.cur
	row("Time", fmt.Sprintf("%.2fs", x.Time))
	row("Depth", fmt.Sprintf("%.2f m", x.Depth()))
	row("Heading", fmt.Sprintf("%.1f°", x.Heading()))
	row("Speed", fmt.Sprintf("%.2f m/s", x.Speed()))
	row("Roll", fmt.Sprintf("%.1f°", x.Euler[2]))
	row("Pitch", fmt.Sprintf("%.1f°", x.Euler[0]))

	if m.opts.Keyboard {
		s.WriteString("\n")
		row("Surge", fmt.Sprintf("%+.1f", m.surge))
		row("Heave", fmt.Sprintf("%+.1f", m.heave))
		row("Yaw", fmt.Sprintf("%+.1f", m.yaw))
	}

	s.WriteString("\nTHRUSTERS\n")
	for i, name := range setpoint.Names {
		s.WriteString(fmt.Sprintf("%-4s %s %+.2f\n", name, PowerBar(x.Power[i], 6), x.Power[i]))
	}

	if len(m.depthHist) > 1 {
		chart := asciigraph.Plot(m.depthHist, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Depth"))
		s.WriteString("\n" + st.graph.Render(chart) + "\n")
	}
	if len(m.speedHist) > 1 {
		chart := asciigraph.Plot(m.speedHist, asciigraph.Height(3), asciigraph.Width(30), asciigraph.Caption("Speed"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	s.WriteString(st.help.Render("SP:Pause W/S:Surge A/D:Yaw R/F:Heave ?:Help Q:Quit"))

	canvasView := st.panel.Render(m.canvas.String())
	statsView := st.panel.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

const helpText = `
  Space    pause or resume
  W / S    surge forward / back
  A / D    yaw left / right
  R / F    heave up / down
  X        zero all demands
  ← / →    orbit camera
  + / -    zoom camera
  T        cycle themes
  ?        toggle this help
  Q        quit
`
