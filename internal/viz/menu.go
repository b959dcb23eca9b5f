package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/simscat/internal/config"
	"github.com/san-kum/simscat/internal/experiment"
)

var presetInfo = map[string]string{
	"argon/gas":    "dilute, 300 K",
	"argon/liquid": "near the triple point, 94 K",
	"argon/solid":  "fcc crystal, 40 K",
}

// Menu lists the presets and switches to a live [Model] for the chosen one.
type Menu struct {
	presets []string
	cursor  int
	live    *Model
	reg     *experiment.Registry
	st      styles
	err     error
}

func NewMenu() Menu {
	return Menu{
		presets: config.ListPresets(),
		reg:     experiment.NewRegistry(),
		st:      newStyles(Themes[0]),
	}
}

func (m Menu) Init() tea.Cmd { return nil }

func (m Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.live != nil {
		next, cmd := m.live.Update(msg)
		live := next.(Model)
		m.live = &live
		return m, cmd
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		exp, err := experiment.New(config.GetPreset(m.presets[m.cursor]), m.reg)
		if err != nil {
			m.err = err
			return m, nil
		}
		live := NewModel(exp)
		m.live = &live
		return m, live.Init()
	}
	return m, nil
}

func (m Menu) View() string {
	if m.live != nil {
		return m.live.View()
	}
	st := m.st
	var b strings.Builder
	b.WriteString("\n    " + st.header.Render("SIMSCAT") + "\n    " + st.dim.Render("lennard-jones md live view") + "\n\n")
	for i, name := range m.presets {
		line := fmt.Sprintf("%-14s %s", name, presetInfo[name])
		if i == m.cursor {
			b.WriteString("  " + st.cursor.Render("▸ "+line) + "\n")
		} else {
			b.WriteString("    " + st.dim.Render(line) + "\n")
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + st.warn.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + st.dim.Render("j/k navigate  enter start  q quit") + "\n")
	return b.String()
}

// Run starts the live view for exp, or the preset menu when exp is nil.
func Run(exp *experiment.Experiment) error {
	var model tea.Model = NewMenu()
	if exp != nil {
		model = NewModel(exp)
	}
	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
