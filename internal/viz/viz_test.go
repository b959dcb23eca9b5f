package viz

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/simscat/internal/config"
	"github.com/san-kum/simscat/internal/experiment"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(4, 0)

	if c.Grid[0][0] != 0x2801 {
		t.Errorf("cell 0 = %U", c.Grid[0][0])
	}
	if c.Grid[0][1] != 0x2880 {
		t.Errorf("cell 1 = %U", c.Grid[0][1])
	}
	if !c.IsSet(3, 3) || c.IsSet(1, 1) {
		t.Error("IsSet disagrees with Set")
	}
	c.Clear()
	if c.String() != "\u2800\u2800" {
		t.Errorf("cleared canvas = %q", c.String())
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(4, 2)
	c.DrawLine(0, 0, 7, 7)
	for i := 0; i < 8; i++ {
		if !c.IsSet(i, i) {
			t.Errorf("diagonal pixel %d not set", i)
		}
	}
	if c.IsSet(7, 0) {
		t.Error("off-line pixel set")
	}
}

func TestCameraProjectsCentre(t *testing.T) {
	cam := NewCamera()
	x, y, _, ok := cam.Project(Vec3{}, 120, 88)
	if !ok || x != 60 || y != 44 {
		t.Errorf("origin projected to (%d, %d, %v)", x, y, ok)
	}
	cam = &Camera{Zoom: 1, Distance: 6}
	if _, _, _, ok := cam.Project(Vec3{Z: 10}, 120, 88); ok {
		t.Error("point behind the camera reported visible")
	}
}

func TestScene(t *testing.T) {
	box := [3]float64{10, 10, 10}
	got := Scene([3]float64{10, 5, 0}, box)
	if got != (Vec3{1, 0, -1}) {
		t.Errorf("Scene = %+v", got)
	}
}

func TestDrawBoxLightsPixels(t *testing.T) {
	c := NewCanvas(40, 16)
	DrawBox(c, NewCamera(), [][3]float64{{5, 5, 5}}, [3]float64{10, 10, 10})
	if !strings.ContainsFunc(c.String(), func(r rune) bool { return r > 0x2800 && r <= 0x28ff }) {
		t.Error("nothing drawn")
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

func newLive(t *testing.T) Model {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Particles = 27
	cfg.Cutoff = 5
	exp, err := experiment.New(cfg, experiment.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	return NewModel(exp)
}

func press(m tea.Model, key string) tea.Model {
	var msg tea.KeyMsg
	switch key {
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, _ := m.Update(msg)
	return next
}

func TestModelStepsOnTick(t *testing.T) {
	m := newLive(t)
	next, cmd := m.Update(TickMsg{})
	if cmd == nil {
		t.Error("tick should schedule the next tick")
	}
	lm := next.(Model)
	if lm.t != float64(lm.stepsPerTick)*lm.dt {
		t.Errorf("t = %v after one tick", lm.t)
	}
	if len(lm.history) != 2 {
		t.Errorf("history = %d", len(lm.history))
	}
	if !strings.Contains(lm.View(), "ARGON/LIQUID") {
		t.Error("view missing header")
	}
}

func TestModelPauseAndReset(t *testing.T) {
	var m tea.Model = newLive(t)
	m = press(m, " ")
	if m.(Model).running {
		t.Fatal("space should pause")
	}
	m, _ = m.Update(TickMsg{})
	if m.(Model).t != 0 {
		t.Error("paused model advanced")
	}

	m = press(m, " ")
	m, _ = m.Update(TickMsg{})
	m = press(m, "r")
	if lm := m.(Model); lm.t != 0 || len(lm.history) != 1 {
		t.Errorf("reset left t=%v history=%d", lm.t, len(lm.history))
	}
}

func TestModelSetpointAndSpeed(t *testing.T) {
	var m tea.Model = newLive(t)
	before := m.(Model).tune.Setpoint()
	m = press(m, "up")
	if got := m.(Model).tune.Setpoint(); got <= before {
		t.Errorf("setpoint %v not raised from %v", got, before)
	}
	m = press(m, ">")
	if m.(Model).stepsPerTick != 10 {
		t.Errorf("steps per tick = %d", m.(Model).stepsPerTick)
	}
}

func TestModelScrub(t *testing.T) {
	var m tea.Model = newLive(t)
	m, _ = m.Update(TickMsg{})
	m, _ = m.Update(TickMsg{})
	m = press(m, "[")
	lm := m.(Model)
	if lm.running || lm.playHead != 1 {
		t.Errorf("running=%v playHead=%d", lm.running, lm.playHead)
	}
	if lm.current().Time != lm.history[1].Time {
		t.Error("current snapshot is not the scrubbed one")
	}
}

func TestMenuStartsPreset(t *testing.T) {
	var m tea.Model = NewMenu()
	if !strings.Contains(m.View(), "argon/gas") {
		t.Error("menu does not list presets")
	}
	m = press(m, "j")
	if m.(Menu).cursor != 1 {
		t.Errorf("cursor = %d", m.(Menu).cursor)
	}
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.(Menu).live == nil || cmd == nil {
		t.Fatalf("enter did not start the live view: %v", m.(Menu).err)
	}
}
