package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/muurk/polfunbox/internal/app"
	"github.com/muurk/polfunbox/internal/bridge"
	"github.com/muurk/polfunbox/internal/tui"
)

// TUI flags
var (
	bridgePort int
	advertise  bool
)

func init() {
	addTUIFlags(tuiCmd)
	rootCmd.AddCommand(tuiCmd)
}

func addTUIFlags(cmd *cobra.Command) {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[annotationFullScreen] = "true"
	cmd.Flags().IntVar(&bridgePort, "bridge", 0, "Also serve the remote bridge on this port (0 = off)")
	cmd.Flags().BoolVar(&advertise, "advertise", true, "Announce the bridge over mDNS")
	addPlayerFlags(cmd)
}

// tuiCmd runs the terminal UI
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the terminal UI",
	Long: `Start the terminal UI.

The keyboard stands in for the remote: arrows, enter and esc navigate,
space toggles playback, page up/down switch channels and digits enter the
parental PIN. Press ? for all keys.

With --bridge the remote bridge runs alongside, so a phone or TV host
shell can drive the same session.`,
	Example: `  # Start the UI (also the default without a command)
  polfun

  # Samsung key codes, with the bridge on port 8765
  polfun tui --platform tizen --bridge 8765

  # Debug logging to a file of your choice
  polfun --log-level debug --log-file /tmp/polfun.log`,
	RunE: runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	opts, err := controllerOptions(store)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	watchStore(ctx, store)

	var srv *bridge.Server
	if bridgePort > 0 {
		opts.OnHost = func(ev app.HostEvent) {
			if srv != nil {
				srv.Notify(ev)
			}
		}
	}

	prog, err := tui.New(opts, tea.WithAltScreen())
	if err != nil {
		return err
	}

	if bridgePort > 0 {
		remote := bridge.NewControllerRemote(prog.Controller(), prog.Dispatch)
		cfg := bridge.Config{Port: bridgePort}
		srv = bridge.New(cfg, remote)
		bridgeDone, err := serveBridge(ctx, cfg, srv, remote)
		if err != nil {
			return err
		}
		defer func() {
			stop()
			<-bridgeDone
		}()
	}

	if err := prog.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("terminal UI error: %w", err)
	}
	return nil
}
