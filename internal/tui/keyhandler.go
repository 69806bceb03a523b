package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/tankobon/internal/config"
	"github.com/pders01/tankobon/internal/event"
)

// keyMap is every binding the app reacts to, built from the keys section of
// the config.
type keyMap struct {
	ForceQuit key.Binding
	Quit      key.Binding
	Search    key.Binding
	NextTab   key.Binding
	PrevTab   key.Binding
	Back      key.Binding

	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Focus  key.Binding

	NextResults key.Binding
	PrevResults key.Binding
	ToggleOrder key.Binding
	Language    key.Binding

	NextPage key.Binding
	PrevPage key.Binding
	Retry    key.Binding
}

func newKeyMap(cfg config.KeyConfig) keyMap {
	modifierKey := cfg.Modifier + "+"
	b := cfg.Bindings
	return keyMap{
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Quit:      key.NewBinding(key.WithKeys(b.Quit), key.WithHelp(b.Quit, "quit")),
		Search:    key.NewBinding(key.WithKeys(modifierKey+b.Search), key.WithHelp(modifierKey+b.Search, "search")),
		NextTab:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		PrevTab:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
		Back:      key.NewBinding(key.WithKeys(b.Back), key.WithHelp(b.Back, "back")),

		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Focus:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "edit query")),

		NextResults: key.NewBinding(key.WithKeys(b.NextResults), key.WithHelp(b.NextResults, "next page")),
		PrevResults: key.NewBinding(key.WithKeys(b.PrevResults), key.WithHelp(b.PrevResults, "prev page")),
		ToggleOrder: key.NewBinding(key.WithKeys(b.ToggleOrder), key.WithHelp(b.ToggleOrder, "order")),
		Language:    key.NewBinding(key.WithKeys(b.Language), key.WithHelp(b.Language, "language")),

		NextPage: key.NewBinding(key.WithKeys(b.NextPage, " "), key.WithHelp(b.NextPage, "next")),
		PrevPage: key.NewBinding(key.WithKeys(b.PrevPage, "backspace"), key.WithHelp(b.PrevPage, "prev")),
		Retry:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
	}
}

// matches compares a parsed key against a binding by its canonical name so
// synthesized keys without a raw message match too.
func matches(k event.Key, b key.Binding) bool {
	if !b.Enabled() {
		return false
	}
	name := k.String()
	for _, want := range b.Keys() {
		if want == name {
			return true
		}
	}
	return false
}

// globalAction maps keys that work regardless of the active page. typing
// disables single-letter bindings while a text field has focus.
func (km keyMap) globalAction(k event.Key, typing bool) (event.Action, bool) {
	switch {
	case matches(k, km.ForceQuit):
		return event.Quit{}, true
	case matches(k, km.Search):
		return event.GoToSearch{}, true
	case matches(k, km.NextTab):
		return event.NextTab{}, true
	case matches(k, km.PrevTab):
		return event.PreviousTab{}, true
	case !typing && matches(k, km.Quit):
		return event.Quit{}, true
	}
	return nil, false
}

// rawKey recovers a bubbletea key message for widgets such as textinput.
func rawKey(k event.Key) tea.KeyMsg {
	if k.Raw.Type != 0 || len(k.Raw.Runes) > 0 {
		return k.Raw
	}
	if r := []rune(k.Name); len(r) == 1 {
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: r, Alt: k.Mods.Has(event.ModAlt)}
	}
	return k.Raw
}
