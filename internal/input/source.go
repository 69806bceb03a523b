// Package input turns raw terminal messages into application events on a
// fixed tick cadence.
package input

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/tankobon/internal/debuglog"
	"github.com/pders01/tankobon/internal/event"
)

// DefaultInterval is the tick period when none is configured.
const DefaultInterval = 250 * time.Millisecond

type tickMsg time.Time

// Source owns the tick timer and the translation of terminal messages.
type Source struct {
	Interval time.Duration
}

func NewSource(interval time.Duration) Source {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return Source{Interval: interval}
}

// Tick schedules the next tick. The caller re-arms it after every tick so
// the cadence stays fixed no matter how many other messages arrive.
func (s Source) Tick() tea.Cmd {
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Translate maps a bubbletea message to an event. ok is false for messages
// that should be dropped: mouse releases and motion, read errors and
// anything unknown.
func (s Source) Translate(msg tea.Msg) (event.Event, bool) {
	switch msg := msg.(type) {
	case event.Event:
		return msg, true
	case tickMsg:
		return event.Tick{At: time.Time(msg)}, true
	case tea.KeyMsg:
		return ParseKey(msg), true
	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress {
			return nil, false
		}
		return event.Mouse{X: msg.X, Y: msg.Y, Button: buttonName(msg.Button)}, true
	case tea.WindowSizeMsg:
		return event.Resize{Width: msg.Width, Height: msg.Height}, true
	case error:
		debuglog.Debugf("input: dropped error message: %v", msg)
		return nil, false
	}
	return nil, false
}

// buttonName names the buttons pages react to; anything else is "none".
func buttonName(b tea.MouseButton) string {
	switch b {
	case tea.MouseButtonLeft:
		return "left"
	case tea.MouseButtonMiddle:
		return "middle"
	case tea.MouseButtonRight:
		return "right"
	case tea.MouseButtonWheelUp:
		return "wheel up"
	case tea.MouseButtonWheelDown:
		return "wheel down"
	case tea.MouseButtonWheelLeft:
		return "wheel left"
	case tea.MouseButtonWheelRight:
		return "wheel right"
	}
	return "none"
}

// ParseKey splits a bubbletea key name such as "ctrl+shift+s" into a base
// name and modifier set.
func ParseKey(msg tea.KeyMsg) event.Key {
	name := msg.String()
	var mods event.Mods
	for {
		switch {
		case strings.HasPrefix(name, "ctrl+") && len(name) > len("ctrl+"):
			mods |= event.ModCtrl
			name = strings.TrimPrefix(name, "ctrl+")
			continue
		case strings.HasPrefix(name, "alt+") && len(name) > len("alt+"):
			mods |= event.ModAlt
			name = strings.TrimPrefix(name, "alt+")
			continue
		case strings.HasPrefix(name, "shift+") && len(name) > len("shift+"):
			mods |= event.ModShift
			name = strings.TrimPrefix(name, "shift+")
			continue
		}
		break
	}
	return event.Key{Name: name, Mods: mods, Raw: msg}
}
