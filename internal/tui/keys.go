package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muurk/polfunbox/internal/app"
	"github.com/muurk/polfunbox/internal/keymap"
	"github.com/muurk/polfunbox/internal/schedule"
)

// ReleaseDelay is how long after the last repeat a held key counts as
// released. It has to outlast the terminal's initial auto-repeat delay.
const ReleaseDelay = 600 * time.Millisecond

// keyMap holds the terminal bindings of the remote buttons.
type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	Left        key.Binding
	Right       key.Binding
	Enter       key.Binding
	Back        key.Binding
	Backspace   key.Binding
	PlayPause   key.Binding
	Stop        key.Binding
	ChannelUp   key.Binding
	ChannelDown key.Binding
	Rewind      key.Binding
	FastForward key.Binding
	Red         key.Binding
	Green       key.Binding
	Yellow      key.Binding
	Blue        key.Binding
	Delete      key.Binding
	Quit        key.Binding

	// Move only carries the help text of the four arrows.
	Move key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up:          key.NewBinding(key.WithKeys("up")),
		Down:        key.NewBinding(key.WithKeys("down")),
		Left:        key.NewBinding(key.WithKeys("left")),
		Right:       key.NewBinding(key.WithKeys("right")),
		Move:        key.NewBinding(key.WithKeys("up", "down", "left", "right"), key.WithHelp("←↑↓→", "move")),
		Enter:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "ok")),
		Back:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Backspace:   key.NewBinding(key.WithKeys("backspace"), key.WithHelp("⌫", "back / delete digit")),
		PlayPause:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		Stop:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
		ChannelUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "channel up")),
		ChannelDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "channel down")),
		Rewind:      key.NewBinding(key.WithKeys("["), key.WithHelp("[", "rewind")),
		FastForward: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "forward")),
		Red:         key.NewBinding(key.WithKeys("f1"), key.WithHelp("F1", "red")),
		Green:       key.NewBinding(key.WithKeys("f2"), key.WithHelp("F2", "green")),
		Yellow:      key.NewBinding(key.WithKeys("f3"), key.WithHelp("F3", "yellow")),
		Blue:        key.NewBinding(key.WithKeys("f4"), key.WithHelp("F4", "blue")),
		Delete:      key.NewBinding(key.WithKeys("delete"), key.WithHelp("del", "clear PIN")),
		Quit:        key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Move, k.Enter, k.Back, k.PlayPause, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Move, k.Enter, k.Back, k.Backspace},
		{k.PlayPause, k.Stop, k.Rewind, k.FastForward},
		{k.ChannelUp, k.ChannelDown, k.Delete},
		{k.Red, k.Green, k.Yellow, k.Blue, k.Quit},
	}
}

type actionBinding struct {
	binding key.Binding
	action  keymap.Action
}

// actions pairs every binding with the remote button it stands for.
func (k keyMap) actions() []actionBinding {
	return []actionBinding{
		{k.Up, keymap.Up},
		{k.Down, keymap.Down},
		{k.Left, keymap.Left},
		{k.Right, keymap.Right},
		{k.Enter, keymap.Enter},
		{k.Back, keymap.Back},
		{k.Backspace, keymap.Backspace},
		{k.PlayPause, keymap.PlayPause},
		{k.Stop, keymap.Stop},
		{k.ChannelUp, keymap.ChannelUp},
		{k.ChannelDown, keymap.ChannelDown},
		{k.Rewind, keymap.Rewind},
		{k.FastForward, keymap.FastForward},
		{k.Red, keymap.Red},
		{k.Green, keymap.Green},
		{k.Yellow, keymap.Yellow},
		{k.Blue, keymap.Blue},
		{k.Delete, keymap.Delete},
	}
}

// remoteCode translates a terminal key into the canonical code table uses
// for the matching button.
func (k keyMap) remoteCode(table *keymap.Table, msg tea.KeyMsg) (int, bool) {
	if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 && !msg.Alt {
		if r := msg.Runes[0]; r >= '0' && r <= '9' {
			return keymap.DigitCode(int(r - '0')), true
		}
	}
	for _, b := range k.actions() {
		if !key.Matches(msg, b.binding) {
			continue
		}
		codes := table.Codes(b.action)
		if len(codes) == 0 {
			return 0, false
		}
		return codes[0], true
	}
	return 0, false
}

// heldKey is the key the terminal is auto-repeating, if any.
type heldKey struct {
	code int
	down bool
}

// keyInput turns terminal presses into down, repeat and release events.
// It lives behind a pointer so the release timer and the model share it.
type keyInput struct {
	held  heldKey
	sched *schedule.Scheduler
	send  func(app.KeyEvent) app.Result
}

// press delivers a key-down, or a repeat while the same key is held, and
// re-arms the synthetic release.
func (in *keyInput) press(code int) app.Result {
	if in.held.down && in.held.code != code {
		in.release()
	}
	repeat := in.held.down && in.held.code == code
	in.held = heldKey{code: code, down: true}
	res := in.send(app.KeyEvent{Code: code, Pressed: true, Repeat: repeat})
	in.sched.After(schedule.TaskKeyRelease, ReleaseDelay, in.release)
	return res
}

// release delivers the key-up of the held key.
func (in *keyInput) release() {
	if !in.held.down {
		return
	}
	in.held.down = false
	in.sched.Cancel(schedule.TaskKeyRelease)
	in.send(app.KeyEvent{Code: in.held.code})
}
