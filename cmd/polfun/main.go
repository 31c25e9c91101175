// Polfun is a TV-style IPTV client for the terminal.
//
// It logs in to an Xtream-Codes panel, either with a device code paired
// through the Polfun service or with a server, user and password, and
// presents live TV, movies and series the way the set-top box does:
// everything is driven by remote-control key codes. A WebSocket bridge
// lets a phone or a TV host shell act as the remote.
//
// Usage:
//
//	polfun [command] [flags]
//
// Running without arguments starts the terminal UI.
// See 'polfun --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/polfunbox/internal/logging"
	"github.com/muurk/polfunbox/internal/version"
)

func main() {
	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "polfun",
	Short: "Polfun IPTV client",
	Long: `A remote-driven IPTV client for Xtream-Codes panels.

Live TV with programme guide, movies and series, favourites, parental PIN
and device-code pairing, drawn in the terminal and played through mpv.

If no command is specified, the terminal UI starts.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogging(cmd)
	},
	RunE: runTUI,
}

// Global flags
var (
	logLevel     string
	logFile      string
	logJSON      bool
	platformName string
	keysFile     string
	storePath    string
)

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); empty uses $"+logging.LogLevelEnvVar)
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file (the terminal UI defaults to the config directory)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Log as JSON")
	rootCmd.PersistentFlags().StringVar(&platformName, "platform", "", "Platform profile (vega, tizen, browser); empty uses $POLFUN_PLATFORM")
	rootCmd.PersistentFlags().StringVar(&keysFile, "keys", "", "YAML file overriding key codes")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "Store file (default is store.yaml in the config directory)")

	addTUIFlags(rootCmd)

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "polfun %s\n", version.Full())
	},
}
