// Package event defines the messages that drive the application: input,
// navigation requests and the results of background fetches.
package event

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/tankobon/internal/catalog"
	"github.com/pders01/tankobon/internal/failure"
	"github.com/pders01/tankobon/internal/imaging"
)

// Event is anything the controller consumes in one step.
type Event interface{ isEvent() }

// Result is an event produced by a background task. Gen identifies the page
// instance that started the task.
type Result interface {
	Event
	Generation() uint64
	Failure() *failure.Error
}

var generations atomic.Uint64

// NextGeneration hands out a tag unique for the life of the process.
func NextGeneration() uint64 { return generations.Add(1) }

// Mods is a bit set of held modifier keys.
type Mods uint8

const (
	ModCtrl Mods = 1 << iota
	ModAlt
	ModShift
)

func (m Mods) Has(mod Mods) bool { return m&mod != 0 }

type Tick struct{ At time.Time }

// Key is a key press. Name has modifiers stripped; Raw keeps the original
// message for widgets that edit text.
type Key struct {
	Name string
	Mods Mods
	Raw  tea.KeyMsg
}

// String rebuilds the bubbletea style key name, e.g. "ctrl+s".
func (k Key) String() string {
	s := ""
	if k.Mods.Has(ModCtrl) {
		s += "ctrl+"
	}
	if k.Mods.Has(ModAlt) {
		s += "alt+"
	}
	if k.Mods.Has(ModShift) {
		s += "shift+"
	}
	return s + k.Name
}

type Mouse struct {
	X, Y   int
	Button string
}

type Resize struct{ Width, Height int }

type NavigateToDetail struct{ Item catalog.ItemSummary }

type NavigateToReader struct {
	Chapter catalog.Chapter
	Set     catalog.PageSet
}

type NavigateBack struct{}

type NavigateToSearch struct{}

// SearchLoaded carries one page of results. Seq orders searches issued by the
// same page so an older response cannot overwrite a newer one.
type SearchLoaded struct {
	Gen     uint64
	Seq     uint64
	Term    string
	Page    catalog.SearchPage
	Offline bool
	Err     *failure.Error
}

type CoverLoaded struct {
	Gen     uint64
	ItemID  string
	Picture imaging.Picture
	Err     *failure.Error
}

// ChaptersLoaded carries one page of an item's chapter feed. Seq plays the
// same role as in SearchLoaded.
type ChaptersLoaded struct {
	Gen  uint64
	Seq  uint64
	Page int
	Feed catalog.ChapterFeed
	Err  *failure.Error
}

// ProgressLoaded lists chapter ids already opened for an item.
type ProgressLoaded struct {
	Gen    uint64
	ItemID string
	Read   map[string]bool
	Err    *failure.Error
}

type PageSetLoaded struct {
	Gen     uint64
	Chapter catalog.Chapter
	Set     catalog.PageSet
	Err     *failure.Error
}

type PageLoaded struct {
	Gen      uint64
	Position int
	Tier     catalog.Fidelity
	Picture  imaging.Picture
	Err      *failure.Error
}

type ProgressSaved struct {
	Gen       uint64
	ChapterID string
	Err       *failure.Error
}

func (Tick) isEvent()             {}
func (Key) isEvent()              {}
func (Mouse) isEvent()            {}
func (Resize) isEvent()           {}
func (NavigateToDetail) isEvent() {}
func (NavigateToReader) isEvent() {}
func (NavigateBack) isEvent()     {}
func (NavigateToSearch) isEvent() {}
func (SearchLoaded) isEvent()     {}
func (CoverLoaded) isEvent()      {}
func (ChaptersLoaded) isEvent()   {}
func (ProgressLoaded) isEvent()   {}
func (PageSetLoaded) isEvent()    {}
func (PageLoaded) isEvent()       {}
func (ProgressSaved) isEvent()    {}

func (e SearchLoaded) Generation() uint64   { return e.Gen }
func (e CoverLoaded) Generation() uint64    { return e.Gen }
func (e ChaptersLoaded) Generation() uint64 { return e.Gen }
func (e ProgressLoaded) Generation() uint64 { return e.Gen }
func (e PageSetLoaded) Generation() uint64  { return e.Gen }
func (e PageLoaded) Generation() uint64     { return e.Gen }
func (e ProgressSaved) Generation() uint64  { return e.Gen }

func (e SearchLoaded) Failure() *failure.Error   { return e.Err }
func (e CoverLoaded) Failure() *failure.Error    { return e.Err }
func (e ChaptersLoaded) Failure() *failure.Error { return e.Err }
func (e ProgressLoaded) Failure() *failure.Error { return e.Err }
func (e PageSetLoaded) Failure() *failure.Error  { return e.Err }
func (e PageLoaded) Failure() *failure.Error     { return e.Err }
func (e ProgressSaved) Failure() *failure.Error  { return e.Err }

// Emit wraps an event as a command so it re-enters the loop on a later step.
func Emit(e Event) tea.Cmd {
	return func() tea.Msg { return e }
}
