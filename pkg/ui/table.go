package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TableColumn represents a column in the table
type TableColumn struct {
	Header string
	// Align is "left" (default) or "right".
	Align string
}

// Table renders rows under a header line and a separator.
type Table struct {
	Columns []TableColumn
	Rows    [][]string
}

func NewTable(columns ...TableColumn) *Table {
	return &Table{Columns: columns}
}

func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Render renders the table as a string
func (t *Table) Render() string {
	if len(t.Columns) == 0 {
		return ""
	}

	widths := make([]int, len(t.Columns))
	for i, col := range t.Columns {
		widths[i] = lipgloss.Width(col.Header)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	var builder strings.Builder

	header := make([]string, len(t.Columns))
	separator := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = pad(col.Header, widths[i], "left")
		separator[i] = strings.Repeat("─", widths[i])
	}
	builder.WriteString(StyleTableHeader.Render(strings.Join(header, "  ")))
	builder.WriteString("\n")
	builder.WriteString(StyleTableBorder.Render(strings.Join(separator, "  ")))
	builder.WriteString("\n")

	for _, row := range t.Rows {
		parts := make([]string, len(t.Columns))
		for i := range t.Columns {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			parts[i] = pad(cell, widths[i], t.Columns[i].Align)
		}
		builder.WriteString(strings.TrimRight(strings.Join(parts, "  "), " "))
		builder.WriteString("\n")
	}

	return builder.String()
}

func pad(s string, width int, align string) string {
	padding := width - lipgloss.Width(s)
	if padding <= 0 {
		return s
	}
	if align == "right" {
		return strings.Repeat(" ", padding) + s
	}
	return s + strings.Repeat(" ", padding)
}
