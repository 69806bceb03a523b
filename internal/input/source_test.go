package input

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/tankobon/internal/event"
)

func TestNewSourceDefaultsInterval(t *testing.T) {
	assert.Equal(t, DefaultInterval, NewSource(0).Interval)
	assert.Equal(t, time.Second, NewSource(time.Second).Interval)
}

func TestTickProducesTickEvent(t *testing.T) {
	s := NewSource(time.Millisecond)
	msg := s.Tick()()

	ev, ok := s.Translate(msg)
	require.True(t, ok)
	_, isTick := ev.(event.Tick)
	assert.True(t, isTick)
}

func TestTranslateKeys(t *testing.T) {
	s := NewSource(0)
	tests := []struct {
		msg  tea.KeyMsg
		name string
		mods event.Mods
	}{
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}, "q", 0},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, "c", event.ModCtrl},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s"), Alt: true}, "s", event.ModAlt},
		{tea.KeyMsg{Type: tea.KeyShiftTab}, "tab", event.ModShift},
		{tea.KeyMsg{Type: tea.KeyRight}, "right", 0},
		{tea.KeyMsg{Type: tea.KeyEnter}, "enter", 0},
	}
	for _, tt := range tests {
		t.Run(tt.msg.String(), func(t *testing.T) {
			ev, ok := s.Translate(tt.msg)
			require.True(t, ok)
			key, isKey := ev.(event.Key)
			require.True(t, isKey)
			assert.Equal(t, tt.name, key.Name)
			assert.Equal(t, tt.mods, key.Mods)
			assert.Equal(t, tt.msg.String(), key.String())
		})
	}
}

func TestTranslateMouseOnlyOnPress(t *testing.T) {
	s := NewSource(0)

	ev, ok := s.Translate(tea.MouseMsg{X: 3, Y: 4, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	require.True(t, ok)
	assert.Equal(t, event.Mouse{X: 3, Y: 4, Button: "left"}, ev)

	buttons := map[tea.MouseButton]string{
		tea.MouseButtonWheelUp:   "wheel up",
		tea.MouseButtonWheelDown: "wheel down",
		tea.MouseButtonRight:     "right",
		tea.MouseButtonNone:      "none",
	}
	for button, name := range buttons {
		ev, ok := s.Translate(tea.MouseMsg{Action: tea.MouseActionPress, Button: button})
		require.True(t, ok)
		assert.Equal(t, name, ev.(event.Mouse).Button)
	}

	_, ok = s.Translate(tea.MouseMsg{Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	assert.False(t, ok)
	_, ok = s.Translate(tea.MouseMsg{Action: tea.MouseActionMotion})
	assert.False(t, ok)
}

func TestTranslateDropsErrorsAndUnknown(t *testing.T) {
	s := NewSource(0)
	_, ok := s.Translate(errors.New("read /dev/tty: input/output error"))
	assert.False(t, ok)
	_, ok = s.Translate(struct{}{})
	assert.False(t, ok)
}

func TestTranslatePassesEventsThrough(t *testing.T) {
	s := NewSource(0)
	ev, ok := s.Translate(event.NavigateBack{})
	require.True(t, ok)
	assert.Equal(t, event.NavigateBack{}, ev)

	ev, ok = s.Translate(tea.WindowSizeMsg{Width: 80, Height: 24})
	require.True(t, ok)
	assert.Equal(t, event.Resize{Width: 80, Height: 24}, ev)
}
