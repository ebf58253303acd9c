package components

import "github.com/charmbracelet/lipgloss"

var (
	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 2).
			Width(48)

	dialogTitleStyle = lipgloss.NewStyle().
				Foreground(colorTitle).
				Bold(true)

	dialogMutedStyle = lipgloss.NewStyle().
				Foreground(colorMuted)

	dialogFieldStyle = lipgloss.NewStyle().
				Foreground(colorLabel)
)

// ConfirmDialog renders a yes/no confirmation.
func ConfirmDialog(title, message string) string {
	return dialogStyle.Render(
		dialogTitleStyle.Render(title) + "\n\n" +
			dialogMutedStyle.Render(message) + "\n" +
			dialogMutedStyle.Render("y: confirm | n: cancel"),
	)
}

// InputDialog renders a one-line text prompt with the default hint.
func InputDialog(title, input string) string {
	return InputDialogWithHint(title, input, "enter: submit | esc: cancel")
}

// InputDialogWithHint renders a one-line text prompt with a custom hint line.
func InputDialogWithHint(title, input, hint string) string {
	field := dialogFieldStyle.Render("> " + SanitizeOneLine(input) + "█")
	return dialogStyle.Render(
		dialogTitleStyle.Render(title) + "\n\n" +
			field + "\n" +
			dialogMutedStyle.Render(hint),
	)
}
