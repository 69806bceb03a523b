package tui

// Tab is the top-level region on screen. Exactly one is active.
type Tab int

const (
	TabSearch Tab = iota
	TabDetail
	TabReader
)

func (t Tab) String() string {
	switch t {
	case TabDetail:
		return "detail"
	case TabReader:
		return "reader"
	default:
		return "search"
	}
}

// AppState gates the program loop.
type AppState int

const (
	Running AppState = iota
	Done
)

// pageState is the set of resident pages besides Search, which always
// exists. Detail and Reader can only coexist in the shape readerState
// allows.
type pageState interface {
	active() Tab
}

type searchState struct{}

// detailState keeps a detail page around while the user flips back to the
// search tab.
type detailState struct {
	detail *detailPage
	tab    Tab
}

// readerState may carry the detail page it was opened from so going back
// lands there again.
type readerState struct {
	detail *detailPage
	reader *readerPage
}

func (searchState) active() Tab   { return TabSearch }
func (s detailState) active() Tab { return s.tab }
func (readerState) active() Tab   { return TabReader }
