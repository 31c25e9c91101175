package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
	"github.com/muurk/polfunbox/internal/app"
	"github.com/muurk/polfunbox/internal/keymap"
	"github.com/muurk/polfunbox/internal/schedule"
)

func firetvTable(t *testing.T) *keymap.Table {
	t.Helper()
	table, err := keymap.Builtin("firetv")
	if err != nil {
		t.Fatal(err)
	}
	return table
}

func TestRemoteCode(t *testing.T) {
	table := firetvTable(t)
	keys := newKeyMap()

	tests := []struct {
		name   string
		msg    tea.KeyMsg
		want   int
		wantOK bool
	}{
		{"up", tea.KeyMsg{Type: tea.KeyUp}, 38, true},
		{"down", tea.KeyMsg{Type: tea.KeyDown}, 40, true},
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, 13, true},
		{"esc", tea.KeyMsg{Type: tea.KeyEsc}, 27, true},
		{"backspace", tea.KeyMsg{Type: tea.KeyBackspace}, 8, true},
		{"space", tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, 179, true},
		{"page up", tea.KeyMsg{Type: tea.KeyPgUp}, 33, true},
		{"rewind", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'['}}, 227, true},
		{"red", tea.KeyMsg{Type: tea.KeyF1}, 403, true},
		{"digit", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'5'}}, 53, true},
		{"unbound", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := keys.remoteCode(table, tt.msg)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("remoteCode(%q) = %d, %v, want %d, %v", tt.msg.String(), got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

type recorder struct {
	events []app.KeyEvent
}

func (r *recorder) send(ev app.KeyEvent) app.Result {
	r.events = append(r.events, ev)
	return app.Result{Handled: true}
}

func newInput() (*keyInput, *recorder, *schedule.ManualClock) {
	clock := schedule.NewManualClock(time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC))
	rec := &recorder{}
	in := &keyInput{
		sched: schedule.New(clock, func(f func()) { f() }),
		send:  rec.send,
	}
	return in, rec, clock
}

func TestKeyInputRepeatAndRelease(t *testing.T) {
	in, rec, clock := newInput()

	in.press(40)
	clock.Advance(100 * time.Millisecond)
	in.press(40)
	clock.Advance(ReleaseDelay - time.Millisecond)
	if len(rec.events) != 2 {
		t.Fatalf("released early: %+v", rec.events)
	}
	clock.Advance(time.Millisecond)

	want := []app.KeyEvent{
		{Code: 40, Pressed: true},
		{Code: 40, Pressed: true, Repeat: true},
		{Code: 40},
	}
	if diff := cmp.Diff(want, rec.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	if clock.Pending() != 0 {
		t.Errorf("Pending() = %d after release", clock.Pending())
	}
}

func TestKeyInputOtherKeyReleasesHeld(t *testing.T) {
	in, rec, clock := newInput()

	in.press(40)
	in.press(39)
	clock.Advance(ReleaseDelay)

	want := []app.KeyEvent{
		{Code: 40, Pressed: true},
		{Code: 40},
		{Code: 39, Pressed: true},
		{Code: 39},
	}
	if diff := cmp.Diff(want, rec.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}
