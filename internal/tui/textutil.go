package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// truncateEnd shortens s to at most limit characters, appending an ellipsis
// if truncation occurs.
func truncateEnd(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit <= 1 {
		return "…"
	}
	return string(r[:limit-1]) + "…"
}

// padBlock right-pads every line of s to cols cells. Lines that carry only
// zero-width escape sequences, such as kitty image transfers, still occupy
// their box this way.
func padBlock(s string, cols int) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if w := lipgloss.Width(line); w < cols {
			lines[i] = line + strings.Repeat(" ", cols-w)
		}
	}
	return strings.Join(lines, "\n")
}

// clampInt pins v into [lo, hi]. hi below lo yields lo.
func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return max(lo, min(v, hi))
}
