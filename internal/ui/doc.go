// Package ui renders the output of the polfun CLI commands.
//
// The commands other than the TUI print once and exit: a header naming the
// command, then tables or a result box. Styling comes from lipgloss and the
// width follows the terminal (golang.org/x/term), clamped to
// [MinTerminalWidth, MaxContentWidth].
//
// Components:
//
//   - Header: command banner with its parameters
//   - Table: aligned columns for channel, programme and key listings
//   - Result: success, failure and warning boxes
//   - Wait: spinner and elapsed-time bar for long polls (pair --wait)
//   - Confirm: typed confirmation for destructive commands (logout)
//
// Printer ties them to an io.Writer:
//
//	p := ui.NewPrinter(cmd.OutOrStdout())
//	p.PrintHeader("Channels", "polfun channels", map[string]string{"Category": "12"})
//	p.PrintTable(table)
//
// Logging stays silent unless POLFUN_LOG_LEVEL is set, so zap output does
// not interleave with the rendered boxes.
package ui
