package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/simscat/internal/dynamo"
	"github.com/san-kum/simscat/internal/experiment"
	"github.com/san-kum/simscat/internal/md"
	"github.com/san-kum/simscat/internal/thermostat"
)

const (
	canvasWidth     = 60
	canvasHeight    = 22
	historyCapacity = 400
	maxStepsPerTick = 200
)

type TickMsg time.Time

// Snapshot is one drawn frame kept for scrubbing.
type Snapshot struct {
	State  dynamo.State
	Time   float64
	Thermo md.Thermo
}

// Model steps an experiment a few md steps per tick and draws the box.
type Model struct {
	exp           *experiment.Experiment
	sys           *md.System
	sim           *dynamo.Simulator
	tune          thermostat.Tunable
	name          string
	state         dynamo.State
	t, dt         float64
	stepsPerTick  int
	canvas        *Canvas
	camera        *Camera
	running       bool
	energyHistory []float64
	tempHistory   []float64
	history       []Snapshot
	playHead      int
	theme         int
	st            styles
	showHelp      bool
	err           error
}

func NewModel(exp *experiment.Experiment) Model {
	cfg := exp.Config()
	tune, _ := exp.Thermostat().(thermostat.Tunable)
	m := Model{
		exp:           exp,
		sys:           exp.System(),
		sim:           exp.Simulator(),
		tune:          tune,
		name:          cfg.Name,
		state:         exp.InitialState(),
		dt:            cfg.Dt,
		stepsPerTick:  5,
		canvas:        NewCanvas(canvasWidth, canvasHeight),
		camera:        NewCamera(),
		running:       true,
		energyHistory: make([]float64, 0, historyCapacity),
		tempHistory:   make([]float64, 0, historyCapacity),
		history:       make([]Snapshot, 0, historyCapacity),
		playHead:      -1,
		st:            newStyles(Themes[0]),
	}
	m.record()
	return m
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case ">", ".":
			m.stepsPerTick = min(maxStepsPerTick, m.stepsPerTick*2)
		case "<", ",":
			m.stepsPerTick = max(1, m.stepsPerTick/2)
		case "up", "k":
			m.adjustSetpoint(1.05)
		case "down", "j":
			m.adjustSetpoint(1 / 1.05)
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
			m.st = newStyles(Themes[m.theme])
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			if m.playHead == -1 {
				m.step()
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) adjustSetpoint(factor float64) {
	if m.tune == nil {
		return
	}
	m.tune.SetSetpoint(m.tune.Setpoint() * factor)
}

// step advances the md system stepsPerTick steps and records the result.
func (m *Model) step() {
	if m.err != nil {
		return
	}
	for i := 0; i < m.stepsPerTick; i++ {
		next := m.sim.Advance(m.state, m.t, m.dt)
		if !next.IsValid() {
			m.err = &dynamo.SimulationError{Step: int(m.t / m.dt), Time: m.t, Wrapped: dynamo.ErrInvalidState}
			m.running = false
			return
		}
		m.state = next
		m.t += m.dt
	}
	m.record()
}

func (m *Model) record() {
	th := m.sys.Thermo(m.state)
	m.energyHistory = appendCapped(m.energyHistory, th.Total)
	m.tempHistory = appendCapped(m.tempHistory, th.Temperature)
	m.history = append(m.history, Snapshot{State: m.state.Clone(), Time: m.t, Thermo: th})
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

func appendCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) == 0 {
			return
		}
		m.playHead = len(m.history) - 1
		m.running = false
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

func (m *Model) reset() {
	m.state = m.exp.InitialState()
	m.t = 0
	m.err = nil
	m.playHead = -1
	m.energyHistory = m.energyHistory[:0]
	m.tempHistory = m.tempHistory[:0]
	m.history = m.history[:0]
	if m.tune != nil {
		m.tune.SetSetpoint(m.exp.Config().Temperature)
	}
	m.record()
}

// current is the snapshot on screen: the live state or the scrubbed one.
func (m Model) current() Snapshot {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		return m.history[m.playHead]
	}
	return m.history[len(m.history)-1]
}

func (m Model) View() string {
	snap := m.current()
	m.canvas.Clear()
	DrawBox(m.canvas, m.camera, m.sys.Positions(snap.State), m.sys.Box.L)

	st := m.st
	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.name)) + "\n")
	status := "RUNNING"
	switch {
	case m.err != nil:
		status = st.warn.Render("DIVERGED: " + m.err.Error())
	case m.playHead != -1:
		status = fmt.Sprintf("REPLAY %d/%d", m.playHead+1, len(m.history))
	case !m.running:
		status = "PAUSED"
	}
	s.WriteString(status + "\n\n")

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2f ps", snap.Time/1000))
	row("Particles", fmt.Sprintf("%d", m.sys.N))
	row("Temp", fmt.Sprintf("%.1f K", snap.Thermo.Temperature))
	row("Pressure", fmt.Sprintf("%.1f bar", snap.Thermo.Pressure))
	row("Kinetic", fmt.Sprintf("%.4f eV", snap.Thermo.Kinetic))
	row("Potential", fmt.Sprintf("%.4f eV", snap.Thermo.Potential))
	row("Total", fmt.Sprintf("%.4f eV", snap.Thermo.Total))
	row("Steps/tick", fmt.Sprintf("%d", m.stepsPerTick))
	if m.tune != nil {
		row("Setpoint", fmt.Sprintf("%.1f K", m.tune.Setpoint()))
	}

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("total energy (eV)"))
		s.WriteString("\n" + st.graph.Render(chart) + "\n")
	}
	if len(m.tempHistory) > 1 {
		chart := asciigraph.Plot(m.tempHistory, asciigraph.Height(3), asciigraph.Width(30), asciigraph.Caption("temperature (K)"))
		s.WriteString("\n" + st.graph.Render(chart) + "\n")
	}
	s.WriteString(st.help.Render("SP:Pause R:Reset Q:Quit ?:Help"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, st.canvas.Render(m.canvas.String()), st.stats.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + main
	}
	return main
}

const helpText = `
  Space   pause/resume        R     reset
  [ ]     scrub recent frames x y   rotate (shift reverses)
  + -     zoom                < >   md steps per frame
  ↑ ↓     thermostat setpoint T     theme
  Q       quit                ?     this help
`
