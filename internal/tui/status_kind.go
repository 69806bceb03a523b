package tui

import "github.com/charmbracelet/lipgloss"

// StatusKind indicates severity for status lines.
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusSuccess
	StatusWarn
	StatusError
)

func (k StatusKind) style() lipgloss.Style {
	switch k {
	case StatusSuccess:
		return StatusSuccessStyle
	case StatusWarn:
		return StatusWarnStyle
	case StatusError:
		return StatusErrorStyle
	default:
		return StatusInfoStyle
	}
}

// status is a one-line message owned by a page.
type status struct {
	text string
	kind StatusKind
}

func (s status) render(width int) string {
	if s.text == "" {
		return ""
	}
	return s.kind.style().Render(truncateEnd(s.text, width))
}
