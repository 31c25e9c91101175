package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// WaitFunc is a long operation, typically a poll loop. The returned details
// are shown in the success box.
type WaitFunc func(ctx context.Context) (map[string]string, error)

type (
	waitTickMsg time.Time
	waitDoneMsg struct {
		details map[string]string
		err     error
	}
)

// waitModel shows a spinner and, when the wait is bounded, a bar of the
// elapsed share of the timeout.
type waitModel struct {
	label   string
	timeout time.Duration
	start   time.Time
	elapsed time.Duration

	spinner spinner.Model
	bar     progress.Model

	ctx    context.Context
	cancel context.CancelFunc
	fn     WaitFunc

	done    bool
	details map[string]string
	err     error
}

func newWaitModel(ctx context.Context, label string, timeout time.Duration, width int, fn WaitFunc) waitModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = WaitLabelStyle.UnsetPaddingLeft()

	barWidth := min(max(width-30, 20), 50)
	ctx, cancel := context.WithCancel(ctx)
	return waitModel{
		label:   label,
		timeout: timeout,
		start:   time.Now(),
		spinner: s,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth)),
		ctx:     ctx,
		cancel:  cancel,
		fn:      fn,
	}
}

func waitTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return waitTickMsg(t) })
}

func (m waitModel) Init() tea.Cmd {
	ctx, fn := m.ctx, m.fn
	return tea.Batch(
		m.spinner.Tick,
		waitTick(),
		func() tea.Msg {
			details, err := fn(ctx)
			return waitDoneMsg{details: details, err: err}
		},
	)
}

func (m waitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.cancel()
			m.done = true
			m.err = context.Canceled
			return m, tea.Quit
		}

	case waitTickMsg:
		m.elapsed = time.Time(msg).Sub(m.start)
		return m, waitTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case waitDoneMsg:
		m.cancel()
		m.done = true
		m.details, m.err = msg.details, msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m waitModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(WaitLabelStyle.UnsetPaddingLeft().Render(m.label))
	b.WriteString("\n\n")
	if m.timeout > 0 {
		b.WriteString("  ")
		b.WriteString(m.bar.ViewAs(m.fraction()))
		b.WriteString("  ")
		b.WriteString(NoteStyle.Render(fmt.Sprintf("%s / %s", m.elapsed.Round(time.Second), m.timeout)))
		b.WriteString("\n\n")
	}
	b.WriteString(NoteStyle.Render("  ctrl+c to cancel"))
	b.WriteString("\n")
	return b.String()
}

func (m waitModel) fraction() float64 {
	if m.timeout <= 0 {
		return 0
	}
	return min(float64(m.elapsed)/float64(m.timeout), 1)
}

// Wait runs fn while showing progress. On a terminal it animates a spinner
// with bubbletea; elsewhere it prints one notice line and blocks. A timeout
// of zero means the wait is unbounded and no bar is drawn.
func (p *Printer) Wait(ctx context.Context, label string, timeout time.Duration, fn WaitFunc) (map[string]string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	f, ok := p.out.(*os.File)
	if !ok || !IsTerminal(f) {
		hint := ""
		if timeout > 0 {
			hint = "up to " + timeout.String()
		}
		p.PrintPleaseWait(label, hint)
		return fn(ctx)
	}

	prog := tea.NewProgram(newWaitModel(ctx, label, timeout, p.width, fn), tea.WithOutput(p.out))
	final, err := prog.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return nil, err
	}
	m, ok := final.(waitModel)
	if !ok || !m.done {
		return nil, ctx.Err()
	}
	return m.details, m.err
}
