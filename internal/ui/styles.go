package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// --- Theme Colors ---

var (
	ColorPrimary    = lipgloss.Color("#3f8fb0") // steel blue
	ColorSecondary  = lipgloss.Color("#5f8a6e") // sage
	ColorAccent     = lipgloss.Color("#c59a5b") // amber
	ColorBackground = lipgloss.Color("#14181d") // dark
	ColorText       = lipgloss.Color("#d7d9da") // main text
	ColorMuted      = lipgloss.Color("#8f96a8") // muted text
	ColorSuccess    = lipgloss.Color("#4f9a72") // green
	ColorError      = lipgloss.Color("#c0505c") // red
	ColorWarning    = lipgloss.Color("#c78854") // warning
	ColorBorder     = lipgloss.Color("#2b3a44") // border
)

// --- Reusable Styles ---

var (
	BannerStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	TabActiveStyle = lipgloss.NewStyle().
			Foreground(ColorBackground).
			Background(ColorPrimary).
			Bold(true).
			Padding(0, 1)

	TabInactiveStyle = lipgloss.NewStyle().
				Foreground(ColorMuted).
				Padding(0, 1)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	NormalStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	AccentStyle = lipgloss.NewStyle().
			Foreground(ColorAccent)

	DisabledStyle = lipgloss.NewStyle().
			Foreground(ColorBorder)

	SectionStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true)
)

// StateStyle colors a workunit state message.
func StateStyle(state string) lipgloss.Style {
	switch strings.ToLower(state) {
	case "finished":
		return SuccessStyle
	case "failed", "aborted":
		return ErrorStyle
	case "":
		return MutedStyle
	}
	return WarningStyle
}
