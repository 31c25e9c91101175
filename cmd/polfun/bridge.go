package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/polfunbox/internal/app"
	"github.com/muurk/polfunbox/internal/bridge"
	"github.com/muurk/polfunbox/internal/discovery"
	"github.com/muurk/polfunbox/internal/logging"
	"github.com/muurk/polfunbox/internal/version"
)

const (
	deviceInfoTimeout = 10 * time.Second
	closeTimeout      = 5 * time.Second
)

// Bridge command flags
var (
	bridgeHost       string
	bridgeListenPort int
)

func init() {
	bridgeCmd.Flags().StringVar(&bridgeHost, "host", "", "Listen address (empty = all interfaces)")
	bridgeCmd.Flags().IntVar(&bridgeListenPort, "port", bridge.DefaultPort, "Listen port")
	bridgeCmd.Flags().BoolVar(&advertise, "advertise", true, "Announce the bridge over mDNS")
	addPlayerFlags(bridgeCmd)

	rootCmd.AddCommand(bridgeCmd)
}

// bridgeCmd runs the controller without a screen
var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Run headless, driven only by the remote bridge",
	Long: `Run the client without drawing anything. Key presses arrive over the
WebSocket bridge (ws://host:port/remote) and playback goes to mpv.

Remotes send KEY, TV_EVENT, BACK_PRESSED and GET_DEVICE_INFO messages and
receive NAVIGATION_STATE, EXIT_APP and DEVICE_INFO. The bridge is
announced over mDNS as ` + discovery.ServiceType + ` unless --advertise=false.`,
	Example: `  # Serve on the default port
  polfun bridge

  # Local only, no announcement
  polfun bridge --host 127.0.0.1 --advertise=false`,
	RunE: runBridge,
}

func runBridge(cmd *cobra.Command, args []string) error {
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

	loop := app.NewLoop()
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	go func() { _ = loop.Run(loopCtx) }()

	var srv *bridge.Server
	opts.Dispatch = loop.Dispatch
	opts.OnHost = func(ev app.HostEvent) {
		if srv != nil {
			srv.Notify(ev)
		}
		if ev.Type == app.HostExit {
			logging.Info("Exit requested by the controller")
			stop()
		}
	}

	var ctrl *app.Controller
	var newErr error
	if err := loop.Call(ctx, func() { ctrl, newErr = app.New(opts) }); err != nil {
		return err
	}
	if newErr != nil {
		return newErr
	}

	remote := bridge.NewControllerRemote(ctrl, loop.Dispatch)
	cfg := bridge.Config{Host: bridgeHost, Port: bridgeListenPort}
	srv = bridge.New(cfg, remote)

	loop.Dispatch(func() { ctrl.Start(ctx) })

	done, err := serveBridge(ctx, cfg, srv, remote)
	if err != nil {
		return err
	}
	logging.Info("Headless client running",
		zap.String("platform", opts.Platform.Name),
		zap.String("addr", cfg.Addr()))
	fmt.Fprintf(cmd.OutOrStdout(), "Remote bridge on ws://%s%s (Ctrl+C to stop)\n", cfg.Addr(), bridge.RemotePath)

	<-done

	closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := loop.Call(closeCtx, ctrl.Close); err != nil {
		logging.Warn("Controller did not close in time", zap.Error(err))
	}
	return nil
}

// serveBridge starts srv in the background and, with --advertise, its
// mDNS announcement. The returned channel closes once the bridge stopped.
func serveBridge(ctx context.Context, cfg bridge.Config, srv *bridge.Server, remote bridge.Remote) (<-chan struct{}, error) {
	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", cfg.Addr(), err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Serve(ctx, ln); err != nil {
			logging.Error("Remote bridge stopped", zap.Error(err))
		}
	}()

	if advertise {
		port := ln.Addr().(*net.TCPAddr).Port
		go advertiseBridge(ctx, remote, port)
	}
	return done, nil
}

// advertiseBridge announces the bridge once the controller can report
// its device code. The announcement ends with ctx.
func advertiseBridge(ctx context.Context, remote bridge.Remote, port int) {
	infoCtx, cancel := context.WithTimeout(ctx, deviceInfoTimeout)
	info, err := remote.DeviceInfo(infoCtx)
	cancel()
	if err != nil {
		logging.Warn("Bridge not announced", zap.Error(err))
		return
	}

	_, err = discovery.Advertise(ctx, "", port, map[string]string{
		discovery.TXTDeviceCode: info.DeviceCode,
		discovery.TXTPlatform:   info.Platform,
		discovery.TXTVersion:    version.Version,
		discovery.TXTPath:       bridge.RemotePath,
	})
	if err != nil {
		logging.Warn("Bridge not announced", zap.Error(err))
	}
}
