package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muurk/polfunbox/internal/app"
	"github.com/muurk/polfunbox/internal/logging"
	"go.uber.org/zap"
)

// Program runs a controller inside a bubbletea program.
type Program struct {
	ctrl *app.Controller
	loop *app.Loop
	prog *tea.Program
}

// New builds the controller from opts and the program around it.
// opts.Dispatch is replaced; opts.OnHost still receives every host event.
func New(opts app.Options, progOpts ...tea.ProgramOption) (*Program, error) {
	p := &Program{loop: app.NewLoop()}

	onHost := opts.OnHost
	opts.Dispatch = p.Dispatch
	opts.OnHost = func(ev app.HostEvent) {
		if onHost != nil {
			onHost(ev)
		}
		if ev.Type == app.HostExit {
			p.send(hostMsg(ev))
		}
	}

	ctrl, err := app.New(opts)
	if err != nil {
		return nil, err
	}
	p.ctrl = ctrl
	p.prog = tea.NewProgram(NewModel(ctrl), progOpts...)
	return p, nil
}

// Controller returns the controller. Its methods may only be called from
// functions passed to Dispatch.
func (p *Program) Controller() *app.Controller {
	return p.ctrl
}

// Dispatch runs f on the program's event loop. It never blocks and may be
// called from any goroutine, the loop included.
func (p *Program) Dispatch(f func()) {
	p.send(runMsg(f))
}

// send forwards msg to the program in order. tea.Program.Send blocks until
// Update takes the message, so it runs on the loop's goroutine, never on
// the caller's.
func (p *Program) send(msg tea.Msg) {
	p.loop.Dispatch(func() { p.prog.Send(msg) })
}

// Run starts the controller and blocks until the user quits, the
// controller asks to exit or ctx is done. The controller is closed before
// Run returns.
func (p *Program) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() { _ = p.loop.Run(ctx) }()
	stop := context.AfterFunc(ctx, p.prog.Quit)
	defer stop()

	p.Dispatch(func() { p.ctrl.Start(ctx) })

	logging.Info("Terminal UI started", zap.String("platform", p.ctrl.Platform().Name))
	_, err := p.prog.Run()
	p.ctrl.Close()
	logging.Info("Terminal UI stopped", zap.Error(err))
	return err
}
