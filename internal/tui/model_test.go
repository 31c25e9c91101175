package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muurk/polfunbox/internal/app"
	"github.com/muurk/polfunbox/internal/config"
	"github.com/muurk/polfunbox/internal/platform"
	"github.com/muurk/polfunbox/internal/schedule"
)

func newTestModel(t *testing.T) (Model, *app.Controller, *schedule.ManualClock) {
	t.Helper()
	d, err := platform.Resolve("firetv")
	if err != nil {
		t.Fatal(err)
	}
	clock := schedule.NewManualClock(time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC))
	ctrl, err := app.New(app.Options{
		Platform:   d,
		Store:      config.NewMemStore(),
		Clock:      clock,
		DeviceCode: "ABCD2345",
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(ctrl.Close)
	return NewModel(ctrl), ctrl, clock
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update() returned %T", next)
	}
	return nm, cmd
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func element(s app.Snapshot, id string) (app.ElementView, bool) {
	for _, el := range s.Elements {
		if el.ID == id {
			return el, true
		}
	}
	return app.ElementView{}, false
}

func TestModelMovesFocus(t *testing.T) {
	m, _, clock := newTestModel(t)
	first := m.Snapshot().Focus
	if first == "" {
		t.Fatal("nothing focused on the login screen")
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if got := m.Snapshot().Focus; got == first {
		t.Errorf("focus stayed on %q after down", got)
	}

	clock.Advance(ReleaseDelay)
	if m.input.held.down {
		t.Error("key still held after the release delay")
	}
}

func TestModelEditsLoginField(t *testing.T) {
	m, ctrl, _ := newTestModel(t)

	m, cmd := update(t, m, runMsg(func() { ctrl.Activate("login:server") }))
	if m.editing != "login:server" {
		t.Fatalf("editing = %q, want login:server", m.editing)
	}
	if cmd == nil {
		t.Error("no focus command when editing starts")
	}

	m = typeText(t, m, "panel.example")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.editing != "" {
		t.Errorf("editing = %q after enter", m.editing)
	}
	el, ok := element(m.Snapshot(), "login:server")
	if !ok {
		t.Fatal("server field missing")
	}
	if el.Detail != "panel.example" {
		t.Errorf("server = %q, want panel.example", el.Detail)
	}
}

func TestModelMasksPassword(t *testing.T) {
	m, ctrl, _ := newTestModel(t)

	m, _ = update(t, m, runMsg(func() { ctrl.Activate("login:pass") }))
	if m.text.EchoMode != textinput.EchoPassword {
		t.Errorf("EchoMode = %v, want password", m.text.EchoMode)
	}
	m = typeText(t, m, "tajne")
	if strings.Contains(m.View(), "tajne") {
		t.Error("password echoed in the view")
	}
}

func TestModelQuitsOnHostExit(t *testing.T) {
	m, _, _ := newTestModel(t)

	m, cmd := update(t, m, hostMsg(app.HostEvent{Type: app.HostExit}))
	if cmd == nil {
		t.Fatal("no command on host exit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("host exit did not quit")
	}
	if v := m.View(); v != "" {
		t.Errorf("View() after quit = %q", v)
	}
}

func TestViewLogin(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	v := m.View()
	for _, want := range []string{AppName, "Logowanie", "ABCD2345", "Adres serwera", "Zaloguj"} {
		if !strings.Contains(v, want) {
			t.Errorf("View() is missing %q", want)
		}
	}
}

func TestScrollWindow(t *testing.T) {
	tests := []struct {
		name                         string
		start, anchor, n, rows, want int
	}{
		{"short list", 4, 2, 3, 5, 0},
		{"top", 0, 0, 20, 5, 0},
		{"scrolled, anchor inside", 6, 8, 20, 5, 6},
		{"anchor below window", 6, 14, 20, 5, 10},
		{"anchor above window", 6, 2, 20, 5, 2},
		{"start past end", 18, -1, 20, 5, 15},
		{"no anchor", 7, -1, 20, 5, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scrollWindow(tt.start, tt.anchor, tt.n, tt.rows); got != tt.want {
				t.Errorf("scrollWindow(%d, %d, %d, %d) = %d, want %d", tt.start, tt.anchor, tt.n, tt.rows, got, tt.want)
			}
		})
	}
}

func TestFmtDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00"},
		{90 * time.Second, "01:30"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
	}
	for _, tt := range tests {
		if got := fmtDuration(tt.d); got != tt.want {
			t.Errorf("fmtDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
