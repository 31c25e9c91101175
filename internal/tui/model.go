package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muurk/polfunbox/internal/app"
	"github.com/muurk/polfunbox/internal/keymap"
	"github.com/muurk/polfunbox/internal/ui"
)

type (
	// runMsg carries a function dispatched onto the event loop.
	runMsg func()

	// hostMsg is a controller notification for the host.
	hostMsg app.HostEvent
)

// Model draws the controller's snapshot and feeds it key events. It must
// only be driven by its own tea.Program.
type Model struct {
	ctrl  *app.Controller
	table *keymap.Table
	keys  keyMap
	input *keyInput

	snap    app.Snapshot
	editing string
	text    textinput.Model

	spinner spinner.Model
	bar     progress.Model
	help    help.Model

	width    int
	height   int
	quitting bool
}

// NewModel creates a model for ctrl. It reads the controller, so it has to
// be called before the program starts or on its loop.
func NewModel(ctrl *app.Controller) Model {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = spinnerStyle

	ti := textinput.New()
	ti.Prompt = "› "
	ti.CharLimit = 256
	ti.Width = 40

	m := Model{
		ctrl:    ctrl,
		table:   ctrl.Keys(),
		keys:    newKeyMap(),
		input:   &keyInput{sched: ctrl.Scheduler(), send: ctrl.HandleKey},
		text:    ti,
		spinner: s,
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(30),
			progress.WithoutPercentage(),
		),
		help:   help.New(),
		width:  ui.MaxContentWidth,
		height: ui.DefaultHeight,
	}
	m.snap = ctrl.Snapshot()
	return m
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case runMsg:
		msg()
		return m.refresh()

	case hostMsg:
		if msg.Type == app.HostExit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		if m.editing != "" {
			return m.updateEditing(msg)
		}
		if msg.String() == "?" {
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		if code, ok := m.keys.remoteCode(m.table, msg); ok {
			m.input.press(code)
		}
		return m.refresh()
	}

	if m.editing != "" {
		var cmd tea.Cmd
		m.text, cmd = m.text.Update(msg)
		return m, cmd
	}
	return m, nil
}

// updateEditing routes keys while an element takes text. Vertical arrows
// leave the input and move focus; search results follow every change.
func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	search := m.snap.Search != nil

	switch msg.Type {
	case tea.KeyEnter:
		m.ctrl.SubmitText(m.text.Value())
		if search {
			m.ctrl.CancelEdit()
		}
		return m.refresh()

	case tea.KeyEsc:
		if code, ok := m.keys.remoteCode(m.table, msg); ok {
			m.input.press(code)
		}
		return m.refresh()

	case tea.KeyUp, tea.KeyDown:
		if search {
			m.ctrl.CancelEdit()
		} else {
			m.ctrl.SubmitText(m.text.Value())
		}
		if code, ok := m.keys.remoteCode(m.table, msg); ok {
			m.input.press(code)
		}
		return m.refresh()
	}

	before := m.text.Value()
	var cmd tea.Cmd
	m.text, cmd = m.text.Update(msg)
	if search && m.text.Value() != before {
		m.ctrl.SubmitText(m.text.Value())
	}
	next, rcmd := m.refresh()
	return next, tea.Batch(cmd, rcmd)
}

// refresh takes a new snapshot and starts or stops the text input when the
// edited element changed.
func (m Model) refresh() (tea.Model, tea.Cmd) {
	m.snap = m.ctrl.Snapshot()
	if m.snap.Editing == m.editing {
		return m, nil
	}
	m.editing = m.snap.Editing
	if m.editing == "" {
		m.text.Blur()
		return m, nil
	}
	cmd := m.startEditing()
	return m, cmd
}

func (m *Model) startEditing() tea.Cmd {
	m.text.Reset()
	m.text.EchoMode = textinput.EchoNormal
	m.text.Placeholder = ""
	for _, el := range m.snap.Elements {
		if el.ID != m.editing {
			continue
		}
		m.text.Placeholder = el.Label
		switch {
		case m.snap.Search != nil:
			m.text.SetValue(m.snap.Search.Query)
		case el.Secret:
			m.text.EchoMode = textinput.EchoPassword
		default:
			m.text.SetValue(el.Detail)
		}
	}
	m.text.CursorEnd()
	return tea.Batch(m.text.Focus(), textinput.Blink)
}

// Snapshot returns what the model last drew from.
func (m Model) Snapshot() app.Snapshot {
	return m.snap
}
