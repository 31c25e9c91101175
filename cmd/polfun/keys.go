package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/polfunbox/internal/discovery"
	"github.com/muurk/polfunbox/internal/platform"
	"github.com/muurk/polfunbox/internal/ui"
)

var scanTimeout int

func init() {
	remotesCmd.Flags().IntVar(&scanTimeout, "timeout", 5, "Scan timeout in seconds")

	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(remotesCmd)
}

// keysCmd prints the key table of a platform
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Show the remote key codes of a platform",
	Long: `Print which key codes map to which remote button for the selected
platform, after applying --keys overrides. Available platforms: ` + strings.Join(platform.Names(), ", ") + `.`,
	Example: `  polfun keys --platform tizen

  # Check an override file
  polfun keys --keys ./lg-remote.yaml`,
	RunE: runKeys,
}

func runKeys(cmd *cobra.Command, args []string) error {
	d, keys, err := resolvePlatform()
	if err != nil {
		return err
	}

	printer := ui.NewPrinter(cmd.OutOrStdout())
	printer.PrintHeader("Key Table", "polfun keys", map[string]string{
		"Platform": d.Name + " (" + d.Brand + ")",
		"Table":    keys.Name,
	})

	table := ui.NewTable("Button", "Codes")
	for _, b := range keys.Bindings() {
		codes := make([]string, len(b.Codes))
		for i, c := range b.Codes {
			codes[i] = strconv.Itoa(c)
		}
		table.AddRow(b.Action.String(), strings.Join(codes, ", "))
	}
	printer.PrintTable(table, "No bindings.")
	return nil
}

// remotesCmd looks for bridges on the network
var remotesCmd = &cobra.Command{
	Use:   "remotes",
	Short: "Find Polfun bridges on the network",
	Long: `Browse mDNS for running Polfun bridges ('polfun bridge' or
'polfun tui --bridge') and print where a remote can connect.`,
	Example: `  polfun remotes --timeout 10`,
	RunE:    runRemotes,
}

func runRemotes(cmd *cobra.Command, args []string) error {
	printer := ui.NewPrinter(cmd.OutOrStdout())
	timeout := time.Duration(scanTimeout) * time.Second

	scanner := discovery.NewScanner()
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	printer.PrintPleaseWait(fmt.Sprintf("Scanning for bridges (%s)...", timeout), "")
	bridges, err := scanner.Scan(ctx)
	if err != nil {
		printer.PrintError("Scan failed", err, nil)
		return err
	}

	if len(bridges) == 0 {
		printer.PrintWarning("No bridges found", map[string]string{"Service": discovery.ServiceType})
		return nil
	}

	table := ui.NewTable("Device code", "Platform", "URL")
	for _, b := range bridges {
		table.AddRow(b.DeviceCode, b.GetMetadata(discovery.TXTPlatform), b.URL())
	}
	printer.PrintTable(table, "")
	return nil
}
