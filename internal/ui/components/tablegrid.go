package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TableColumn defines a single column for TableGrid. Width is the visual
// width of the cell content, separators excluded.
type TableColumn struct {
	Header string
	Width  int
	Align  lipgloss.Position
}

const gridLeftOffset = 2

var (
	gridLineStyle = lipgloss.NewStyle().
			Foreground(colorBorder)

	gridActiveRowStyle = lipgloss.NewStyle().
				Foreground(colorText).
				Background(lipgloss.Color("#1c2a30")).
				Bold(true)

	gridMarkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6fb58a")).
			Bold(true)
)

// TableGrid renders rows under a header line using the rounded border
// glyphs of the box components. The result is tableWidth wide.
func TableGrid(columns []TableColumn, rows [][]string, tableWidth int) string {
	return TableGridWithActiveRow(columns, rows, tableWidth, -1)
}

// TableGridWithActiveRow is TableGrid with one data row highlighted.
// Pass activeRow -1 to disable the highlight. "[x]" markers in cells are
// colored so marked rows stand out.
func TableGridWithActiveRow(columns []TableColumn, rows [][]string, tableWidth int, activeRow int) string {
	if tableWidth <= 0 {
		return ""
	}
	if len(columns) == 0 {
		return padRight("", tableWidth)
	}

	border := lipgloss.RoundedBorder()
	cols := fitGridColumns(columns, tableWidth)

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Header
	}

	out := make([]string, 0, len(rows)+2)
	out = append(out, renderGridRow(cols, header, border.Left, tableWidth, gridRowHeader))
	out = append(out, renderGridRule(cols, border.Middle, border.Top, tableWidth))
	for i, row := range rows {
		kind := gridRowPlain
		if i == activeRow {
			kind = gridRowActive
		}
		out = append(out, renderGridRow(cols, row, border.Left, tableWidth, kind))
	}
	return strings.Join(out, "\n")
}

type gridRowKind int

const (
	gridRowPlain gridRowKind = iota
	gridRowHeader
	gridRowActive
)

// fitGridColumns stretches or shrinks the last column so the row fills
// tableWidth exactly.
func fitGridColumns(columns []TableColumn, tableWidth int) []TableColumn {
	fitted := make([]TableColumn, len(columns))
	copy(fitted, columns)

	available := tableWidth - gridLeftOffset
	if available < len(fitted) {
		available = len(fitted)
	}
	used := len(fitted) - 1
	for i := range fitted {
		if fitted[i].Width < 1 {
			fitted[i].Width = 1
		}
		used += fitted[i].Width
	}
	last := &fitted[len(fitted)-1]
	last.Width += available - used
	if last.Width < 1 {
		last.Width = 1
	}
	return fitted
}

func renderGridRow(columns []TableColumn, cells []string, sep string, tableWidth int, kind gridRowKind) string {
	sepStyle := gridLineStyle
	if kind == gridRowActive {
		sepStyle = sepStyle.Background(lipgloss.Color("#1c2a30"))
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", gridLeftOffset))
	for i, col := range columns {
		if i > 0 {
			b.WriteString(sepStyle.Inline(true).Render(sep))
		}
		text := ""
		if i < len(cells) {
			text = cells[i]
		}
		cell := renderGridCell(text, col.Width, col.Align)
		switch kind {
		case gridRowHeader:
			cell = boxLabelStyle.Inline(true).Render(cell)
		case gridRowActive:
			cell = gridActiveRowStyle.Inline(true).Render(cell)
		}
		if kind != gridRowHeader {
			cell = strings.ReplaceAll(cell, "[x]", gridMarkStyle.Render("[x]"))
		}
		b.WriteString(cell)
	}
	return padRight(b.String(), tableWidth)
}

func renderGridRule(columns []TableColumn, cross, horiz string, tableWidth int) string {
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", gridLeftOffset))
	for i, col := range columns {
		b.WriteString(strings.Repeat(horiz, col.Width))
		if i < len(columns)-1 {
			b.WriteString(cross)
		}
	}
	return gridLineStyle.Inline(true).Render(padRight(b.String(), tableWidth))
}

func renderGridCell(text string, width int, align lipgloss.Position) string {
	if width <= 0 {
		return ""
	}
	clamped := ClampTextWidth(text, width)
	pad := width - lipgloss.Width(clamped)
	if pad <= 0 {
		return clamped
	}
	switch align {
	case lipgloss.Right:
		return strings.Repeat(" ", pad) + clamped
	case lipgloss.Center:
		left := pad / 2
		return strings.Repeat(" ", left) + clamped + strings.Repeat(" ", pad-left)
	default:
		return clamped + strings.Repeat(" ", pad)
	}
}
