package imaging

import (
	"fmt"
	"os"
	"strings"
)

// Protocol is how a picture is drawn into the terminal.
type Protocol int

const (
	Halfblocks Protocol = iota
	Kitty
)

func (p Protocol) String() string {
	switch p {
	case Kitty:
		return "kitty"
	default:
		return "halfblocks"
	}
}

// ParseProtocol maps a config value to a Protocol. "auto" and "" consult
// the environment.
func ParseProtocol(s string) (Protocol, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return DetectProtocol(), nil
	case "halfblocks":
		return Halfblocks, nil
	case "kitty":
		return Kitty, nil
	default:
		return Halfblocks, fmt.Errorf("unknown image protocol %q", s)
	}
}

// DetectProtocol picks kitty graphics for terminals known to support it.
func DetectProtocol() Protocol {
	if SupportsKittyGraphics() {
		return Kitty
	}
	return Halfblocks
}

func SupportsKittyGraphics() bool {
	if os.Getenv("KITTY_WINDOW_ID") != "" {
		return true
	}
	termProgram := strings.ToLower(strings.TrimSpace(os.Getenv("TERM_PROGRAM")))
	if strings.Contains(termProgram, "ghostty") || strings.Contains(termProgram, "kitty") || strings.Contains(termProgram, "wezterm") {
		return true
	}
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	return strings.Contains(term, "xterm-kitty") || strings.Contains(term, "ghostty")
}

// ClearKittyGraphics deletes every image kitty is currently displaying.
func ClearKittyGraphics() string {
	return passthrough("\x1b_Ga=d,d=A\x1b\\")
}

// passthrough wraps an escape sequence so tmux forwards it to the outer
// terminal.
func passthrough(seq string) string {
	if os.Getenv("TMUX") == "" {
		return seq
	}
	escaped := strings.ReplaceAll(seq, "\x1b", "\x1b\x1b")
	return "\x1bPtmux;" + escaped + "\x1b\\"
}
