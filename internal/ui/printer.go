package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes UI components to a writer at a fixed width.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a new Printer that writes to the given writer.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{out: w, width: GetTerminalWidth()}
}

// SetWidth overrides the terminal width.
func (p *Printer) SetWidth(width int) *Printer {
	p.width = width
	return p
}

// Width returns the width this printer renders at
func (p *Printer) Width() int {
	return p.width
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.out
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Newline prints an empty line
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintHeader prints a command header box
func (p *Printer) PrintHeader(title, command string, params map[string]string) {
	p.Println(NewHeader(title, command, params).SetWidth(p.width).Render())
	p.Newline()
}

// PrintTable prints a table, or a muted note when it has no rows.
func (p *Printer) PrintTable(t *Table, empty string) {
	if len(t.Rows) == 0 {
		p.Println(NoteStyle.Render("  " + empty))
		return
	}
	p.Println(t.SetWidth(p.width).Render())
}

// PrintSuccess prints a success result box
func (p *Printer) PrintSuccess(title string, details map[string]string) {
	p.Newline()
	p.Println(NewSuccessResult(title, details).SetWidth(p.width).Render())
}

// PrintError prints an error result box with troubleshooting tips
func (p *Printer) PrintError(title string, err error, troubleshooting []string) {
	p.Newline()
	p.Println(NewFailureResult(title, err, troubleshooting).SetWidth(p.width).Render())
}

// PrintWarning prints a warning result box
func (p *Printer) PrintWarning(title string, details map[string]string) {
	p.Newline()
	p.Println(NewWarningResult(title, details).SetWidth(p.width).Render())
}

// PrintPleaseWait prints a one-line notice for a long operation. hint sets
// expectations, e.g. "up to 5 minutes".
func (p *Printer) PrintPleaseWait(message, hint string) {
	line := WaitLabelStyle.Render("⏳ " + message)
	if hint != "" {
		line += " " + NoteStyle.Render("("+hint+")")
	}
	p.Println(line)
}

// PrintKeyValue prints one aligned "key: value" line.
func (p *Printer) PrintKeyValue(key, value string) {
	p.Println(lipgloss.JoinHorizontal(lipgloss.Top,
		ResultKeyStyle.Render("  "+key+":"), " ", ResultValueStyle.Render(value)))
}
