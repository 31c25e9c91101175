package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/polfunbox/internal/app"
	"github.com/muurk/polfunbox/internal/config"
	"github.com/muurk/polfunbox/internal/keymap"
	"github.com/muurk/polfunbox/internal/logging"
	"github.com/muurk/polfunbox/internal/pairing"
	"github.com/muurk/polfunbox/internal/platform"
	"github.com/muurk/polfunbox/internal/player"
)

// annotationFullScreen marks commands that own the terminal, so logs go
// to a file by default.
const annotationFullScreen = "fullscreen"

// Player flags
var (
	mpvPath  string
	noPlayer bool
)

func initLogging(cmd *cobra.Command) error {
	opts := logging.Options{Level: logLevel, File: logFile, JSON: logJSON}
	if opts.File == "" && cmd.Annotations[annotationFullScreen] != "" {
		if path, err := config.GetLogPath(); err == nil {
			opts.File = path
		}
	}
	return logging.InitializeWithOptions(opts)
}

func openStore() (*config.FileStore, error) {
	if storePath != "" {
		return config.OpenFileStore(storePath)
	}
	return config.OpenDefault()
}

// resolvePlatform returns the selected platform and its key table with
// the --keys overrides applied.
func resolvePlatform() (platform.Descriptor, *keymap.Table, error) {
	d, err := platform.Resolve(platformName)
	if err != nil {
		return platform.Descriptor{}, nil, err
	}
	keys, err := d.Keys(keysFile)
	if err != nil {
		return platform.Descriptor{}, nil, fmt.Errorf("failed to load key table: %w", err)
	}
	return d, keys, nil
}

func addPlayerFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&mpvPath, "mpv", player.DefaultMPVBinary, "mpv binary used for playback")
	cmd.Flags().BoolVar(&noPlayer, "no-player", false, "Do not start a player (navigation only)")
}

func playerFactory() player.Factory {
	if noPlayer {
		return player.NopFactory
	}
	return player.MPVFactory(mpvPath)
}

// controllerOptions builds the controller options shared by the terminal
// UI and the headless bridge. Dispatch is left to the caller.
func controllerOptions(store config.Store) (app.Options, error) {
	d, keys, err := resolvePlatform()
	if err != nil {
		return app.Options{}, err
	}
	return app.Options{
		Platform:   d,
		Keys:       keys,
		Store:      store,
		LivePlayer: playerFactory(),
		Pairing:    pairing.NewClient(),
	}, nil
}

// watchStore reloads store when another polfun process writes it.
func watchStore(ctx context.Context, store *config.FileStore) {
	go func() {
		err := config.WatchStore(ctx, store, func() {
			logging.Info("Store reloaded", zap.String("path", store.Path()))
		})
		if err != nil {
			logging.Warn("Store watch stopped", zap.Error(err))
		}
	}()
}

// deviceCode returns the pairing code stored in profile, deriving and
// saving it on first use the way the controller does.
func deviceCode(profile *config.Profile) (string, error) {
	if code, ok := profile.DeviceCode(); ok && pairing.ValidCode(code) {
		return code, nil
	}
	code := pairing.FingerprintCode(pairing.HostFingerprint()...)
	if err := profile.SetDeviceCode(code); err != nil {
		return "", fmt.Errorf("failed to save device code: %w", err)
	}
	return code, nil
}
