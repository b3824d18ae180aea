// Package wizard implements the interactive release wizard: pick a bump
// level, review the release notes, confirm. It is a small bubbletea program
// returning the user's decision to the caller.
package wizard

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"relkit/internal/version"
)

type step int

const (
	stepLevel step = iota
	stepReview
	stepDone
)

// Result is the wizard outcome.
type Result struct {
	Level     version.Level
	Next      version.Version
	Confirmed bool
}

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Select  key.Binding
	Confirm key.Binding
	Back    key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Select:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Confirm: key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")),
	Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	selectedStyle = lipgloss.NewStyle().Bold(true)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type choice struct {
	level version.Level
	next  version.Version
}

// Model is the wizard's bubbletea model.
type Model struct {
	current  version.Version
	notes    string
	choices  []choice
	cursor   int
	step     step
	viewport viewport.Model
	ready    bool
	result   Result
}

// NewModel builds the wizard for the current version. notes is the already
// rendered (terminal-ready) release-notes preview.
func NewModel(current version.Version, notes string) Model {
	return Model{
		current: current,
		notes:   notes,
		choices: []choice{
			{version.LevelPatch, current.Bump(version.LevelPatch)},
			{version.LevelMinor, current.Bump(version.LevelMinor)},
			{version.LevelMajor, current.Bump(version.LevelMajor)},
		},
	}
}

// Result returns the decision after the program finishes.
func (m Model) Result() Result {
	return m.result
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, max(msg.Height-8, 5))
			m.viewport.SetContent(m.notes)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = max(msg.Height-8, 5)
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.result.Confirmed = false
			m.step = stepDone
			return m, tea.Quit
		}

		switch m.step {
		case stepLevel:
			switch {
			case key.Matches(msg, keys.Up):
				if m.cursor > 0 {
					m.cursor--
				}
			case key.Matches(msg, keys.Down):
				if m.cursor < len(m.choices)-1 {
					m.cursor++
				}
			case key.Matches(msg, keys.Select):
				m.step = stepReview
			}
			return m, nil

		case stepReview:
			switch {
			case key.Matches(msg, keys.Back):
				m.step = stepLevel
			case key.Matches(msg, keys.Confirm):
				picked := m.choices[m.cursor]
				m.result = Result{Level: picked.level, Next: picked.next, Confirmed: true}
				m.step = stepDone
				return m, tea.Quit
			default:
				var cmd tea.Cmd
				m.viewport, cmd = m.viewport.Update(msg)
				return m, cmd
			}
			return m, nil
		}
	}

	if m.step == stepReview && m.ready {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	switch m.step {
	case stepLevel:
		s := titleStyle.Render(fmt.Sprintf("Release from %s", m.current)) + "\n\n"
		for i, c := range m.choices {
			cursor := "  "
			line := fmt.Sprintf("%-6s %s", c.level, c.next)
			if i == m.cursor {
				cursor = cursorStyle.Render("> ")
				line = selectedStyle.Render(line)
			}
			s += cursor + line + "\n"
		}
		s += "\n" + helpStyle.Render("↑/↓ move · enter select · q quit")
		return s

	case stepReview:
		picked := m.choices[m.cursor]
		s := titleStyle.Render(fmt.Sprintf("Release %s", picked.next)) + "\n"
		if m.ready {
			s += m.viewport.View() + "\n"
		} else {
			s += m.notes + "\n"
		}
		s += helpStyle.Render("y confirm · esc back · q quit")
		return s
	}
	return ""
}

// Run starts the wizard and blocks until the user decides.
func Run(current version.Version, notes string) (Result, error) {
	p := tea.NewProgram(NewModel(current, notes), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return Result{}, fmt.Errorf("wizard failed: %w", err)
	}
	m, ok := final.(Model)
	if !ok {
		return Result{}, fmt.Errorf("unexpected model type %T", final)
	}
	return m.Result(), nil
}
