package cli

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00D7FF"}
	colorSuccess = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#00FF87"}
	colorWarning = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#585858", Dark: "#6C6C6C"}
)

// Styles groups the text styles used by command output
type Styles struct {
	Header  lipgloss.Style
	Title   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Muted   lipgloss.Style
}

// NewStyles returns colored styles, or plain ones when color is off.
func NewStyles(color bool) Styles {
	if !color {
		plain := lipgloss.NewStyle()
		return Styles{Header: plain, Title: plain, Success: plain, Warning: plain, Muted: plain}
	}
	return Styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		Title:   lipgloss.NewStyle().Bold(true),
		Success: lipgloss.NewStyle().Foreground(colorSuccess),
		Warning: lipgloss.NewStyle().Foreground(colorWarning),
		Muted:   lipgloss.NewStyle().Foreground(colorMuted),
	}
}

// Alignment of a table column
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

// TableColumn defines a column in a table
type TableColumn struct {
	Name  string
	Align Alignment
}

// Table buffers rows so columns can be sized to their widest cell.
type Table struct {
	columns []TableColumn
	rows    [][]string
	styles  Styles
}

// NewTable creates a new table with the given columns
func NewTable(styles Styles, columns ...TableColumn) *Table {
	return &Table{columns: columns, styles: styles}
}

// AddRow appends a row; missing cells are blank.
func (t *Table) AddRow(values ...string) {
	row := make([]string, len(t.columns))
	copy(row, values)
	t.rows = append(t.rows, row)
}

// Render writes the header and rows to w.
func (t *Table) Render(w io.Writer) {
	widths := make([]int, len(t.columns))
	for i, col := range t.columns {
		widths[i] = utf8.RuneCountInString(col.Name)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if n := utf8.RuneCountInString(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}

	header := make([]string, len(t.columns))
	for i, col := range t.columns {
		header[i] = pad(col.Name, widths[i], col.Align)
	}
	_, _ = fmt.Fprintln(w, t.styles.Header.Render(strings.Join(header, "  ")))

	for _, row := range t.rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = pad(cell, widths[i], t.columns[i].Align)
		}
		_, _ = fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))
	}
}

func pad(s string, width int, align Alignment) string {
	gap := width - utf8.RuneCountInString(s)
	if gap <= 0 {
		return s
	}
	if align == AlignRight {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}
