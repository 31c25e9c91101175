package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/polfunbox/internal/config"
	"github.com/muurk/polfunbox/internal/epg"
	"github.com/muurk/polfunbox/internal/pin"
	"github.com/muurk/polfunbox/internal/ui"
	"github.com/muurk/polfunbox/internal/xtream"
)

// Catalog command flags
var (
	categoryID    string
	favoritesOnly bool
	showLocked    bool
)

func init() {
	channelsCmd.Flags().StringVar(&categoryID, "category", "", "List the channels of this category instead of the categories")
	channelsCmd.Flags().BoolVar(&favoritesOnly, "favorites", false, "List favourite channels")
	channelsCmd.Flags().BoolVar(&showLocked, "show-locked", false, "Include adult categories")

	rootCmd.AddCommand(channelsCmd)
	rootCmd.AddCommand(epgCmd)
}

var errNotLoggedIn = errors.New("not logged in; run 'polfun pair' or 'polfun login' first")

// sessionClient opens the store and returns a panel client for the saved
// session.
func sessionClient() (*config.Profile, *xtream.Client, error) {
	store, err := openStore()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}
	profile := config.NewProfile(store)
	creds, ok := profile.Session()
	if !ok {
		return nil, nil, errNotLoggedIn
	}
	client, err := xtream.NewClient(creds)
	if err != nil {
		return nil, nil, err
	}
	return profile, client, nil
}

// channelsCmd lists live categories and channels
var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "List live TV categories or channels",
	Long: `List the live TV categories of the saved account, or with --category the
channels in one of them. Favourites are marked with ` + ui.FavoriteMark + `.

Adult categories are hidden unless --show-locked is given.`,
	Example: `  # Categories
  polfun channels

  # Channels of category 12
  polfun channels --category 12

  # Favourites across all categories
  polfun channels --favorites`,
	RunE: runChannels,
}

func runChannels(cmd *cobra.Command, args []string) error {
	profile, client, err := sessionClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
	defer cancel()

	printer := ui.NewPrinter(cmd.OutOrStdout())
	gate := pin.NewGate(nil)

	if categoryID == "" && !favoritesOnly {
		cats, err := client.LiveCategories(ctx)
		if err != nil {
			printer.PrintError("Failed to load categories", err, nil)
			return err
		}
		table := ui.NewTable("ID", "Category")
		for _, c := range cats {
			if !showLocked && gate.IsAdult(c.Name) {
				continue
			}
			table.AddRow(c.ID.String(), c.Name)
		}
		printer.PrintTable(table, "No categories.")
		return nil
	}

	streams, err := client.LiveStreams(ctx, categoryID)
	if err != nil {
		printer.PrintError("Failed to load channels", err, nil)
		return err
	}
	table := ui.NewTable("#", "ID", "Channel")
	for _, s := range streams {
		id := s.StreamID.String()
		fav := profile.IsFavorite(id)
		if favoritesOnly && !fav {
			continue
		}
		if !showLocked && gate.IsAdult(s.Name) {
			continue
		}
		name := s.Name
		if fav {
			name = ui.FavoriteMark + " " + name
		}
		table.AddRow(s.Num.String(), id, name)
		if fav {
			table.Mark()
		}
	}
	printer.PrintTable(table, "No channels.")
	return nil
}

// epgCmd prints the programme guide of a channel
var epgCmd = &cobra.Command{
	Use:   "epg <stream-id>",
	Short: "Show the programme guide of a channel",
	Long: `Show the short EPG of a live channel. The programme on air is
highlighted.`,
	Example: `  polfun epg 101`,
	Args:    cobra.ExactArgs(1),
	RunE:    runEPG,
}

func runEPG(cmd *cobra.Command, args []string) error {
	_, client, err := sessionClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
	defer cancel()

	printer := ui.NewPrinter(cmd.OutOrStdout())
	listings, err := client.ShortEPG(ctx, strings.TrimSpace(args[0]))
	if err != nil {
		printer.PrintError("Failed to load the programme guide", err, nil)
		return err
	}

	now := time.Now()
	programs := epg.FromListings(listings, time.Local)
	current, _ := epg.NowNext(programs, now)

	table := ui.NewTable("Start", "End", "Programme")
	for _, p := range programs {
		if p.Stop.Before(now) {
			continue
		}
		table.AddRow(p.Start.Format("15:04"), p.Stop.Format("15:04"), p.Title)
		if current != nil && p.Start.Equal(current.Start) {
			table.Mark()
		}
	}
	printer.PrintTable(table, "No programme information.")
	if current != nil {
		printer.Newline()
		printer.PrintKeyValue("On air", fmt.Sprintf("%s (%d%%)", current.Title, int(current.Progress(now)*100)))
	}
	return nil
}
