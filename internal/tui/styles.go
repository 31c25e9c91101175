package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muurk/polfunbox/internal/app"
	"github.com/muurk/polfunbox/internal/ui"
)

// AppName is shown in the title bar.
const AppName = "POLFUN TV"

// Column widths in cells.
const (
	categoryWidth = 28
	channelWidth  = 36
	itemWidth     = 48
	playerWidth   = 40
	formWidth     = 60
)

var (
	titleBarStyle = lipgloss.NewStyle().
			Foreground(ui.TextColor).
			Background(ui.PrimaryColor).
			Bold(true).
			Padding(0, 1)

	screenTitleStyle = lipgloss.NewStyle().
				Foreground(ui.PrimaryColor).
				Bold(true).
				MarginBottom(1)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ui.MutedColor)

	itemStyle = lipgloss.NewStyle().
			Foreground(ui.TextColor)

	focusedItemStyle = lipgloss.NewStyle().
				Foreground(ui.TextColor).
				Background(ui.PrimaryColor).
				Bold(true)

	selectedItemStyle = lipgloss.NewStyle().
				Foreground(ui.SuccessColor).
				Bold(true)

	disabledItemStyle = lipgloss.NewStyle().
				Foreground(ui.MutedColor).
				Faint(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ui.MutedColor).
			Padding(0, 1)

	activePanelStyle = panelStyle.
				BorderForeground(ui.PrimaryColor)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ui.MutedColor).
			Padding(1, 2).
			Width(22).
			Align(lipgloss.Center)

	focusedCardStyle = cardStyle.
				BorderForeground(ui.PrimaryColor).
				Foreground(ui.PrimaryColor).
				Bold(true)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(ui.WarningColor).
			Padding(1, 4).
			Align(lipgloss.Center)

	pinErrorStyle = lipgloss.NewStyle().
			Foreground(ui.ErrorColor).
			Bold(true)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(ui.PrimaryColor)

	debugStyle = lipgloss.NewStyle().
			Foreground(ui.WarningColor).
			Border(lipgloss.NormalBorder()).
			BorderForeground(ui.WarningColor)

	alertStyles = map[string]lipgloss.Style{
		app.AlertSuccess: lipgloss.NewStyle().Foreground(ui.SuccessColor).Bold(true),
		app.AlertError:   lipgloss.NewStyle().Foreground(ui.ErrorColor).Bold(true),
		app.AlertWarning: lipgloss.NewStyle().Foreground(ui.WarningColor).Bold(true),
		app.AlertInfo:    lipgloss.NewStyle().Foreground(ui.PrimaryColor),
	}

	alertMarkers = map[string]string{
		app.AlertSuccess: ui.SuccessMarker,
		app.AlertError:   ui.FailureMarker,
		app.AlertWarning: ui.WarningMarker,
		app.AlertInfo:    "ℹ",
	}
)
