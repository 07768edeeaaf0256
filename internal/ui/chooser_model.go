package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/example/sharesheet/pkg/ui"
)

type sessionState int

const (
	stateSelecting sessionState = iota
	stateSharing
	stateDone
	stateCancelled
	stateError
)

// Target is one entry of the share chooser.
type Target struct {
	ID     string
	Label  string
	Detail string
}

type targetItem struct {
	target Target
}

func (i targetItem) Title() string       { return i.target.Label }
func (i targetItem) Description() string { return i.target.Detail }
func (i targetItem) FilterValue() string { return i.target.Label }

// Action performs the share for the chosen target.
type Action func(Target) error

// ChooserModel lets the user pick where to send a share, then runs the action
// behind a spinner.
type ChooserModel struct {
	state    sessionState
	spinner  spinner.Model
	list     list.Model
	action   Action
	selected *Target
	err      error
	width    int
	height   int
}

func NewChooserModel(title string, targets []Target, action Action) ChooserModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	items := make([]list.Item, len(targets))
	for i, t := range targets {
		items[i] = targetItem{target: t}
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	if title == "" {
		title = "Share"
	}
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)

	return ChooserModel{
		state:   stateSelecting,
		spinner: s,
		list:    l,
		action:  action,
	}
}

func (m ChooserModel) Init() tea.Cmd {
	return nil
}

func (m ChooserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-4)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if m.state == stateSharing {
				return m, nil
			}
			m.state = stateCancelled
			return m, tea.Quit
		case "q", "esc":
			if m.state == stateSelecting {
				m.state = stateCancelled
				return m, tea.Quit
			}
		}

	case actionDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
		} else {
			m.state = stateDone
		}
		return m, tea.Quit
	}

	switch m.state {
	case stateSharing:
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case stateSelecting:
		if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
			if i, ok := m.list.SelectedItem().(targetItem); ok {
				t := i.target
				m.selected = &t
				m.state = stateSharing
				return m, tea.Batch(m.spinner.Tick, runAction(m.action, t))
			}
		}
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m ChooserModel) View() string {
	switch m.state {
	case stateSelecting:
		return "\n" + m.list.View()

	case stateSharing:
		return fmt.Sprintf("\n %s Sharing via %s...\n\n", m.spinner.View(), m.selected.Label)

	case stateDone:
		return fmt.Sprintf("\n%s\n", ui.Render("Shared via "+m.selected.Label))

	case stateError:
		return fmt.Sprintf("\n%s\n", ui.Render("Error: "+m.err.Error()))

	default:
		return ""
	}
}

// Result reports the chosen target once the program has exited. ok is false
// if the user cancelled.
func (m ChooserModel) Result() (t Target, ok bool, err error) {
	switch m.state {
	case stateDone:
		return *m.selected, true, nil
	case stateError:
		return *m.selected, true, m.err
	default:
		return Target{}, false, nil
	}
}

// Commands and Messages

type actionDoneMsg struct{ err error }

func runAction(action Action, t Target) tea.Cmd {
	return func() tea.Msg {
		if action == nil {
			return actionDoneMsg{}
		}
		return actionDoneMsg{err: action(t)}
	}
}
