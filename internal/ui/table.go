package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const columnGap = 2

// Table is a plain aligned listing. Cells wider than the space left are
// truncated with an ellipsis on the last column.
type Table struct {
	Columns []string
	Rows    [][]string

	// Marked flags rows drawn in TableMarkedStyle.
	Marked map[int]bool

	Width int
}

// NewTable creates a table sized to the terminal.
func NewTable(columns ...string) *Table {
	return &Table{Columns: columns, Width: GetTerminalWidth()}
}

// AddRow appends a row. Missing cells render empty.
func (t *Table) AddRow(cells ...string) *Table {
	t.Rows = append(t.Rows, cells)
	return t
}

// Mark flags the most recently added row.
func (t *Table) Mark() *Table {
	if len(t.Rows) == 0 {
		return t
	}
	if t.Marked == nil {
		t.Marked = make(map[int]bool)
	}
	t.Marked[len(t.Rows)-1] = true
	return t
}

// SetWidth sets the width for rendering
func (t *Table) SetWidth(width int) *Table {
	t.Width = width
	return t
}

// Render returns the header row, a divider and one line per row.
func (t *Table) Render() string {
	if len(t.Columns) == 0 {
		return ""
	}
	widths := t.columnWidths()

	var b strings.Builder
	b.WriteString(t.renderLine(t.Columns, widths, TableHeaderStyle))
	b.WriteString("\n")

	total := 0
	for _, w := range widths {
		total += w + columnGap
	}
	b.WriteString(RenderHorizontalDivider(total-columnGap, "─"))

	for i, row := range t.Rows {
		style := TableCellStyle
		if t.Marked[i] {
			style = TableMarkedStyle
		}
		b.WriteString("\n")
		b.WriteString(t.renderLine(row, widths, style))
	}
	return b.String()
}

// String implements fmt.Stringer
func (t *Table) String() string {
	return t.Render()
}

func (t *Table) columnWidths() []int {
	widths := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		widths[i] = runewidth.StringWidth(c)
	}
	for _, row := range t.Rows {
		for i := 0; i < len(widths) && i < len(row); i++ {
			if w := runewidth.StringWidth(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	// The last column absorbs what the width limit takes away.
	limit := t.Width
	if limit <= 0 {
		limit = MaxContentWidth
	}
	used := 0
	for _, w := range widths[:len(widths)-1] {
		used += w + columnGap
	}
	last := len(widths) - 1
	if room := limit - used; widths[last] > room {
		widths[last] = max(room, runewidth.StringWidth(t.Columns[last]))
	}
	return widths
}

func (t *Table) renderLine(cells []string, widths []int, style lipgloss.Style) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		cell = runewidth.Truncate(cell, w, "…")
		if i < len(widths)-1 {
			cell = runewidth.FillRight(cell, w)
		}
		parts[i] = style.Render(cell)
	}
	return strings.Join(parts, strings.Repeat(" ", columnGap))
}
