package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/pders01/tankobon/internal/config"
	"github.com/pders01/tankobon/internal/event"
	"github.com/pders01/tankobon/internal/input"
)

func TestGlobalActions(t *testing.T) {
	km := newKeyMap(config.TestConfig().Keys)

	tests := []struct {
		key    tea.KeyMsg
		typing bool
		want   event.Action
	}{
		{press("ctrl+c"), true, event.Quit{}},
		{press("ctrl+s"), true, event.GoToSearch{}},
		{press("tab"), false, event.NextTab{}},
		{press("shift+tab"), false, event.PreviousTab{}},
		{press("q"), false, event.Quit{}},
		{press("q"), true, nil},
		{press("j"), false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			act, ok := km.globalAction(input.ParseKey(tt.key), tt.typing)
			assert.Equal(t, tt.want != nil, ok)
			assert.Equal(t, tt.want, act)
		})
	}
}

func TestKeyMapHonoursModifier(t *testing.T) {
	cfg := config.TestConfig().Keys
	cfg.Modifier = "alt"
	km := newKeyMap(cfg)

	altS := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s"), Alt: true}
	act, ok := km.globalAction(input.ParseKey(altS), true)
	assert.True(t, ok)
	assert.Equal(t, event.GoToSearch{}, act)

	_, ok = km.globalAction(input.ParseKey(press("ctrl+s")), true)
	assert.False(t, ok)
}

func TestRawKeyRebuildsRunes(t *testing.T) {
	k := event.Key{Name: "x"}
	assert.Equal(t, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}, rawKey(k))

	raw := press("enter")
	assert.Equal(t, raw, rawKey(input.ParseKey(raw)))
}
