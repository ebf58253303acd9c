package components

import "github.com/charmbracelet/lipgloss"

var (
	hintDescStyle = lipgloss.NewStyle().
			Foreground(colorMuted)
	keyCapStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#14181d")).
			Background(lipgloss.Color("#7f98a8")).
			Bold(true).
			Padding(0, 1)
	segmentStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1).
			MarginRight(1)
)

// StatusBar renders the bottom hint bar, wrapping segments onto extra rows
// when the terminal is narrow.
func StatusBar(hints []string, width int) string {
	segments := make([]string, 0, len(hints))
	for _, h := range hints {
		segments = append(segments, segmentStyle.Render(h))
	}
	rows := wrapSegments(segments, width)
	if width <= 0 || len(rows) == 0 {
		return lipgloss.NewStyle().PaddingLeft(2).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}
	centered := make([]string, 0, len(rows))
	for _, row := range rows {
		centered = append(centered, lipgloss.PlaceHorizontal(width, lipgloss.Center, row))
	}
	return lipgloss.JoinVertical(lipgloss.Left, centered...)
}

// Hint formats a single keybind hint like "Import [i]".
func Hint(key, desc string) string {
	return hintDescStyle.Render(desc+" ") + keyCapStyle.Render(key)
}

func wrapSegments(segments []string, width int) []string {
	if len(segments) == 0 {
		return nil
	}
	if width <= 0 {
		return []string{lipgloss.JoinHorizontal(lipgloss.Top, segments...)}
	}
	var rows []string
	var current []string
	currentWidth := 0
	for _, seg := range segments {
		segWidth := lipgloss.Width(seg)
		if currentWidth > 0 && currentWidth+segWidth > width {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, current...))
			current, currentWidth = nil, 0
		}
		current = append(current, seg)
		currentWidth += segWidth
	}
	return append(rows, lipgloss.JoinHorizontal(lipgloss.Top, current...))
}
