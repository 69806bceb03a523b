package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// renderHeader returns a consistently styled header with an optional muted subtitle.
func renderHeader(title, subtitle string, width int) string {
	title = truncateEnd(title, width-2)
	subtitle = truncateEnd(subtitle, width-2)
	rows := []string{HeaderStyle.Render(title)}
	if subtitle != "" {
		rows = append(rows, renderMuted(subtitle))
	}
	return lipgloss.JoinVertical(lipgloss.Top, rows...)
}

// renderInputFrame draws a rounded bordered container around a rendered input view.
func renderInputFrame(inputView string, focused bool, contentWidth int) string {
	borderColor := MutedColor
	if focused {
		borderColor = AccentColor
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(contentWidth + 4).
		Render(inputView)
}

// renderCentered centers the provided content within the given width/height box.
func renderCentered(width, height int, content string) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

func renderMuted(text string) string {
	return lipgloss.NewStyle().Foreground(MutedColor).Render(text)
}

// renderTabs draws the tab strip. Only tabs with a resident page appear.
func renderTabs(tabs []Tab, active Tab, width int) string {
	parts := make([]string, 0, len(tabs))
	for _, t := range tabs {
		label := " " + t.String() + " "
		if t == active {
			parts = append(parts, SelectedItemStyle.Render(label))
		} else {
			parts = append(parts, renderMuted(label))
		}
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, LogoStyle.Render(CompactLogo), " ")
	for i, p := range parts {
		if i > 0 {
			bar += SeparatorStyle.Render("│")
		}
		bar += p
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(bar)
}
