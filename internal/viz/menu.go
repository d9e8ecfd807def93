package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/rovsim/internal/sim"
)

// Launcher builds the simulator for a named preset.
type Launcher func(preset string) (*sim.Simulator, Options, error)

const (
	stateMenu = iota
	stateSim
)

// Menu lists presets and hands over to a live Model once one is picked.
type Menu struct {
	state   int
	cursor  int
	presets []string
	info    map[string]string
	launch  Launcher
	live    Model
	err     error
	st      styles
}

func NewMenu(presets []string, info map[string]string, launch Launcher) Menu {
	return Menu{
		presets: presets,
		info:    info,
		launch:  launch,
		st:      newStyles(Themes[0]),
	}
}

func (m Menu) Init() tea.Cmd { return nil }

func (m Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateSim {
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
			m.state = stateMenu
			return m, nil
		}
		next, cmd := m.live.Update(msg)
		m.live = next.(Model)
		return m, cmd
	}

	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch k.String() {
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
	case "enter":
		if len(m.presets) == 0 {
			return m, nil
		}
		s, opts, err := m.launch(m.presets[m.cursor])
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.live = NewModel(s, opts)
		m.state = stateSim
		return m, m.live.Init()
	}
	return m, nil
}

func (m Menu) View() string {
	if m.state == stateSim {
		return m.live.View()
	}

	var b strings.Builder
	b.WriteString(m.st.header.Render("ROVSIM") + "\n")
	for i, name := range m.presets {
		line := fmt.Sprintf("%-10s %s", name, m.info[name])
		if i == m.cursor {
			b.WriteString(m.st.active.Render("> "+line) + "\n")
		} else {
			b.WriteString("  " + m.st.value.Render(line) + "\n")
		}
	}
	if m.err != nil {
		b.WriteString("\n" + m.st.bad.Render(m.err.Error()) + "\n")
	}
	b.WriteString(m.st.help.Render("↑↓:Select Enter:Launch Esc:Back Q:Quit"))
	return m.st.panel.Render(b.String())
}
