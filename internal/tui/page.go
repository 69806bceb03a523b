package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/tankobon/internal/catalog"
	"github.com/pders01/tankobon/internal/config"
	"github.com/pders01/tankobon/internal/event"
	"github.com/pders01/tankobon/internal/history"
	"github.com/pders01/tankobon/internal/imaging"
	"github.com/pders01/tankobon/internal/library"
)

// Page is one screen. All methods run on the UI goroutine; anything slow is
// returned as a command instead of being done inline.
type Page interface {
	// Render draws the page into a w x h box without changing state.
	Render(w, h int) string
	// HandleEvent reacts to input and to results addressed to this page.
	HandleEvent(ev event.Event) tea.Cmd
	// HandleAction applies one queued local action.
	HandleAction(a event.Action) tea.Cmd
	// Actions is the page's local queue. The controller drains it one item
	// per step, only while the page is active.
	Actions() *event.Queue[event.Action]
	// Typing reports whether a text field has focus.
	Typing() bool
	// SetSize updates the layout box. Pages that render pictures may refetch.
	SetSize(w, h int) tea.Cmd
	// Generation identifies the instance that issued a result.
	Generation() uint64
	// Help lists bindings shown in the status bar.
	Help() []key.Binding
}

// session is what every page shares: the collaborators the controller owns
// and hands out by reference.
type session struct {
	ctx      context.Context
	cfg      *config.Config
	keys     keyMap
	catalog  catalog.Fetcher
	history  history.Store
	library  *library.Library
	protocol imaging.Protocol
	language catalog.Language
}
