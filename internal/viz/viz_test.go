package viz

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"github.com/san-kum/rovsim/internal/control"
	"github.com/san-kum/rovsim/internal/scene"
	"github.com/san-kum/rovsim/internal/setpoint"
	"github.com/san-kum/rovsim/internal/sim"
	"github.com/san-kum/rovsim/internal/vehicle"
)

func newSim(t *testing.T) *sim.Simulator {
	t.Helper()
	c := scene.New(nil, zerolog.Nop())
	board := setpoint.NewBoard(zerolog.Nop())
	rov, err := vehicle.New(c, vehicle.DefaultConfig(), board)
	if err != nil {
		t.Fatal(err)
	}
	c.Add(rov)
	return sim.New(c, rov, board, control.NewNone())
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestCanvasSetAndLine(t *testing.T) {
	c := NewCanvas(4, 2)
	w, h := c.PixelSize()
	if w != 8 || h != 8 {
		t.Fatalf("pixel size = %dx%d", w, h)
	}

	c.Set(0, 0)
	if !c.IsSet(0, 0) || c.IsSet(1, 0) {
		t.Error("set/isset mismatch")
	}
	c.Set(-1, 3)
	c.Set(100, 0)

	c.DrawLine(0, 7, 7, 7)
	for x := 0; x < 8; x++ {
		if !c.IsSet(x, 7) {
			t.Errorf("line missing pixel at x=%d", x)
		}
	}

	c.Clear()
	if strings.Trim(c.String(), "⠀\n") != "" {
		t.Error("clear left pixels behind")
	}
}

func TestCameraProjectsTargetToCentre(t *testing.T) {
	cam := NewCamera()
	cam.Target = mgl64.Vec3{1, -2, 3}
	x, y, ok := cam.Project(cam.Target, 120, 80)
	if !ok {
		t.Fatal("target should be visible")
	}
	if absInt(x-60) > 1 || absInt(y-40) > 1 {
		t.Errorf("target projected to (%d,%d)", x, y)
	}

	if _, _, ok := cam.Project(cam.eye().Add(cam.eye().Sub(cam.Target)), 120, 80); ok {
		t.Error("point behind the camera should be culled")
	}
}

func TestPowerBar(t *testing.T) {
	if got := PowerBar(0, 3); got != "░░░│░░░" {
		t.Errorf("zero bar = %q", got)
	}
	if got := PowerBar(1, 3); got != "░░░│███" {
		t.Errorf("full bar = %q", got)
	}
	if got := PowerBar(-2, 3); got != "███│░░░" {
		t.Errorf("clamped negative bar = %q", got)
	}
}

func TestThemeCycle(t *testing.T) {
	th := GetTheme("nope")
	if th.Name != Themes[0].Name {
		t.Errorf("fallback theme = %s", th.Name)
	}
	seen := map[string]bool{}
	for range Themes {
		seen[th.Name] = true
		th = th.Next()
	}
	if len(seen) != len(Themes) {
		t.Errorf("cycle visited %d of %d themes", len(seen), len(Themes))
	}
}

func TestModelKeyboardSurge(t *testing.T) {
	s := newSim(t)
	var m tea.Model = NewModel(s, Options{Name: "test", Dt: 0.05, Keyboard: true})

	for i := 0; i < 5; i++ {
		m, _ = m.Update(key("w"))
	}
	for i := 0; i < 20; i++ {
		m, _ = m.Update(TickMsg(time.Now()))
	}

	lm := m.(Model)
	if math.Abs(lm.surge-0.5) > 1e-9 {
		t.Errorf("surge demand = %f, want 0.5", lm.surge)
	}
	if z := lm.cur.Position.Z(); z >= 0 {
		t.Errorf("surge should move toward -Z, got z=%f", z)
	}
	if p, _ := s.Board().Get(0); math.Abs(p-0.5) > 1e-9 {
		t.Errorf("board slot 0 = %f", p)
	}
	if len(lm.depthHist) != 20 {
		t.Errorf("history length = %d", len(lm.depthHist))
	}
	if !strings.Contains(lm.View(), "TEST") {
		t.Error("view should carry the run name")
	}
}

func TestModelPause(t *testing.T) {
	s := newSim(t)
	var m tea.Model = NewModel(s, Options{Dt: 0.01})
	m, _ = m.Update(key(" "))
	m, _ = m.Update(TickMsg(time.Now()))
	if got := m.(Model).cur.Time; got != 0 {
		t.Errorf("paused model advanced to t=%f", got)
	}
}

func TestModelWithoutKeyboardLeavesBoard(t *testing.T) {
	s := newSim(t)
	s.Board().Set(4, 0.3)
	var m tea.Model = NewModel(s, Options{Dt: 0.01})
	m, _ = m.Update(key("w"))
	m, _ = m.Update(TickMsg(time.Now()))
	if p, _ := s.Board().Get(4); p != 0.3 {
		t.Errorf("board was overwritten: %f", p)
	}
	if p, _ := s.Board().Get(0); p != 0 {
		t.Errorf("keyboard demand leaked to the board: %f", p)
	}
}

func TestMenuLaunch(t *testing.T) {
	launched := ""
	launch := func(name string) (*sim.Simulator, Options, error) {
		if name == "broken" {
			return nil, Options{}, errors.New("no such vehicle")
		}
		launched = name
		return newSim(t), Options{Name: name}, nil
	}
	var m tea.Model = NewMenu([]string{"broken", "idle"}, map[string]string{"idle": "hover"}, launch)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.(Menu).err == nil || m.(Menu).state != stateMenu {
		t.Fatal("failed launch should stay on the menu with an error")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if launched != "idle" || m.(Menu).state != stateSim || cmd == nil {
		t.Fatalf("launch = %q state = %d", launched, m.(Menu).state)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.(Menu).state != stateMenu {
		t.Error("esc should return to the menu")
	}
}
