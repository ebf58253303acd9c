package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const bannerArt = `
 ___ _ __  _ __ __ _ _   _  ___| |_| |
/ __| '_ \| '__/ _' | | | |/ __| __| |
\__ \ |_) | | | (_| | |_| | (__| |_| |
|___/ .__/|_|  \__,_|\__, |\___|\__|_|
    |_|              |___/`

const bannerSubtitle = "JSON spray client for ESP landing zones"

// RenderBanner returns the styled banner with a centered subtitle.
func RenderBanner() string {
	lines := strings.Split(strings.Trim(bannerArt, "\n"), "\n")

	width := lipgloss.Width(bannerSubtitle)
	for _, line := range lines {
		if w := lipgloss.Width(line); w > width {
			width = w
		}
	}

	var b strings.Builder
	b.WriteString("\n")
	for _, line := range lines {
		b.WriteString(BannerStyle.Render(line) + "\n")
	}
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	b.WriteString("\n")
	b.WriteString(center.Foreground(ColorMuted).Render(bannerSubtitle) + "\n")
	b.WriteString(center.Foreground(ColorBorder).Render(strings.Repeat("─", lipgloss.Width(bannerSubtitle))) + "\n")
	return b.String()
}
