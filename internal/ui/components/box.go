package components

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

// Shared palette. The ui package mirrors these in its own styles.
var (
	colorBorder = lipgloss.Color("#2b3a44")
	colorTitle  = lipgloss.Color("#3f8fb0")
	colorLabel  = lipgloss.Color("#5f8a6e")
	colorText   = lipgloss.Color("#d7d9da")
	colorMuted  = lipgloss.Color("#8f96a8")
	colorDanger = lipgloss.Color("#7a2f3a")
)

var (
	boxBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 2)

	boxHeaderStyle = lipgloss.NewStyle().
			Foreground(colorTitle).
			Bold(true)

	boxValueStyle = lipgloss.NewStyle().
			Foreground(colorText)

	boxLabelStyle = lipgloss.NewStyle().
			Foreground(colorLabel).
			Bold(true)

	errorBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDanger).
			Padding(1, 2)

	errorHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#e06c75")).
				Bold(true)

	errorBodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d6b5b5"))
)

// boxWidth picks ~75% of the terminal, clamped to [44, 96]. The import
// dialog needs room for the per-file table.
func boxWidth(width int) int {
	if width <= 0 {
		return 0
	}
	w := width * 75 / 100
	if w < 44 {
		w = 44
	}
	if w > 96 {
		w = 96
	}
	return w
}

func safeBoxWidth(width int) int {
	w := boxWidth(width)
	if width > 0 && w > width {
		return width
	}
	return w
}

// Box renders content inside a bordered box.
func Box(content string, width int) string {
	return boxBorder.Width(safeBoxWidth(width)).Render(content)
}

// BoxContentWidth returns the inner content width excluding border and padding.
func BoxContentWidth(width int) int {
	w := safeBoxWidth(width)
	// border 2 + padding 4
	if w <= 6 {
		return 0
	}
	return w - 6
}

// ClampTextWidth flattens text to one line and truncates it to width.
func ClampTextWidth(text string, width int) string {
	cleaned := SanitizeOneLine(text)
	if width <= 0 || lipgloss.Width(cleaned) <= width {
		return cleaned
	}
	if width == 1 {
		return "…"
	}
	return truncateRunes(cleaned, width-1) + "…"
}

// ErrorBox renders a red bordered box for errors.
func ErrorBox(title, message string, width int) string {
	header := ""
	if title != "" {
		header = errorHeaderStyle.Render(SanitizeOneLine(title)) + "\n\n"
	}
	body := errorBodyStyle.Render(SanitizeText(message))
	return errorBorder.Width(safeBoxWidth(width)).Render(header + body)
}

// TitledBox renders a box with the title set into the top border.
func TitledBox(title, content string, width int) string {
	label := fmt.Sprintf(" [ %s ] ", SanitizeOneLine(title))
	w := safeBoxWidth(width)
	// Without a known width the box grows to fit the title.
	if width <= 0 && title != "" {
		if need := lipgloss.Width(label); lipgloss.Width(content)+boxBorder.GetHorizontalPadding() < need {
			w = need
		}
	}
	boxed := boxBorder.Width(w).Render(content)
	if title == "" {
		return boxed
	}
	lines := strings.Split(boxed, "\n")
	lineWidth := lipgloss.Width(lines[0])
	if lineWidth < 4 {
		return boxed
	}

	border := lipgloss.RoundedBorder()
	middle := lineWidth - 2
	if lipgloss.Width(label) > middle {
		label = truncateRunes(label, middle)
	}
	left := (middle - lipgloss.Width(label)) / 2
	right := middle - lipgloss.Width(label) - left
	if right < 0 {
		right = 0
	}

	edge := lipgloss.NewStyle().Foreground(colorBorder)
	lines[0] = edge.Render(border.TopLeft+strings.Repeat(border.Top, left)) +
		boxHeaderStyle.Render(label) +
		edge.Render(strings.Repeat(border.Top, right)+border.TopRight)
	return strings.Join(lines, "\n")
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

func padRight(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// TableRow is a single row in a key-value table. Style, when set, colors the
// value.
type TableRow struct {
	Label string
	Value string
	Style *lipgloss.Style
}

// Table renders aligned label/value rows inside a titled box.
func Table(title string, rows []TableRow, width int) string {
	if len(rows) == 0 {
		return ""
	}

	labelWidth := 0
	for _, r := range rows {
		if w := lipgloss.Width(SanitizeOneLine(r.Label)); w > labelWidth {
			labelWidth = w
		}
	}
	if labelWidth > 20 {
		labelWidth = 20
	}
	contentWidth := BoxContentWidth(width)
	valueWidth := 0
	if contentWidth > 0 {
		if labelWidth > contentWidth/2 {
			labelWidth = contentWidth / 2
		}
		valueWidth = contentWidth - labelWidth - 2
		if valueWidth < 4 {
			valueWidth = 4
		}
	}

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		label := boxLabelStyle.Render(padRight(ClampTextWidth(r.Label, labelWidth), labelWidth))
		valueStyle := boxValueStyle
		if r.Style != nil {
			valueStyle = *r.Style
		}
		value := r.Value
		if value == "" {
			value = "-"
		}
		lines = append(lines, label+"  "+valueStyle.Render(ClampTextWidth(value, valueWidth)))
	}
	return TitledBox(title, strings.Join(lines, "\n"), width)
}

// Indent adds left padding to every line of a multi-line string.
func Indent(s string, spaces int) string {
	pad := strings.Repeat(" ", spaces)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = pad + l
	}
	return strings.Join(lines, "\n")
}

// CenterLine centers a single line within the standard box width.
func CenterLine(s string, width int) string {
	w := safeBoxWidth(width)
	lineWidth := lipgloss.Width(s)
	if w <= 0 || lineWidth >= w {
		return s
	}
	return strings.Repeat(" ", (w-lineWidth)/2) + s
}
