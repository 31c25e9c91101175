package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ConfirmWord is what the user types to go ahead.
const ConfirmWord = "yes"

// Confirm shows a warning box on the printer and reads one line from in.
// It returns true only when the line is ConfirmWord, ignoring case.
func (p *Printer) Confirm(in io.Reader, title string, warnings []string) bool {
	lines := []string{"", WarningTitleStyle.Render(fmt.Sprintf("   %s  %s", WarningMarker, title)), ""}
	for _, w := range warnings {
		lines = append(lines, lipgloss.NewStyle().Foreground(TextColor).Render("   • "+w))
	}
	lines = append(lines, "")

	p.Println(resultBoxStyle(p.width, WarningColor).Render(strings.Join(lines, "\n")))
	_, _ = fmt.Fprint(p.out, WarningTitleStyle.Render(fmt.Sprintf("Type %q to continue: ", ConfirmWord)))

	answer, err := bufio.NewReader(in).ReadString('\n')
	p.Newline()
	if err != nil && answer == "" {
		return false
	}
	if strings.EqualFold(strings.TrimSpace(answer), ConfirmWord) {
		return true
	}
	p.Println(NoteStyle.Render("  Cancelled."))
	return false
}
