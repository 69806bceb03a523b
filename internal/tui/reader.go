package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/tankobon/internal/catalog"
	"github.com/pders01/tankobon/internal/chapter"
	"github.com/pders01/tankobon/internal/debuglog"
	"github.com/pders01/tankobon/internal/event"
	"github.com/pders01/tankobon/internal/failure"
	"github.com/pders01/tankobon/internal/imaging"
)

// readerPage pages through one chapter. The current page is fetched on
// demand and the next window pages are prefetched; at most window+1
// fetches are outstanding and pictures further than 2*window pages from the
// current one are dropped.
type readerPage struct {
	s       *session
	gen     uint64
	ctx     context.Context
	cancel  context.CancelFunc
	actions *event.Queue[event.Action]

	chapter catalog.Chapter
	set     catalog.PageSet
	plan    chapter.Plan
	window  int

	current  int
	pictures map[int]imaging.Picture
	tiers    map[int]catalog.Fidelity
	failures map[int]*failure.Error
	inflight map[int]bool
	// stale counts fetches of superseded generations that have not reported
	// back yet. They still count against the in-flight bound.
	stale map[uint64]int

	width, height int
}

func newReaderPage(s *session, ch catalog.Chapter, set catalog.PageSet) *readerPage {
	window := s.cfg.Reader.PrefetchWindow
	if window < 0 {
		window = 0
	}
	ctx, cancel := context.WithCancel(s.ctx)
	return &readerPage{
		s:        s,
		gen:      event.NextGeneration(),
		ctx:      ctx,
		cancel:   cancel,
		actions:  event.NewQueue[event.Action](),
		chapter:  ch,
		set:      set,
		plan:     chapter.FromPageSet(set, s.cfg.Reader.LowFidelityPages),
		window:   window,
		current:  1,
		pictures: map[int]imaging.Picture{},
		tiers:    map[int]catalog.Fidelity{},
		failures: map[int]*failure.Error{},
		inflight: map[int]bool{},
		stale:    map[uint64]int{},
	}
}

func (p *readerPage) Init() tea.Cmd { return p.request() }

func (p *readerPage) Generation() uint64                  { return p.gen }
func (p *readerPage) Actions() *event.Queue[event.Action] { return p.actions }
func (p *readerPage) Typing() bool                        { return false }

func (p *readerPage) Help() []key.Binding {
	k := p.s.keys
	return []key.Binding{k.Back, k.Quit, k.NextPage, k.PrevPage, k.Retry, k.Search}
}

// SetSize re-requests every picture for the new box. Results already in
// flight were encoded for the old box, so the page cancels them and takes a
// new generation; the controller drops them when they arrive.
func (p *readerPage) SetSize(w, h int) tea.Cmd {
	if w == p.width && h == p.height {
		return nil
	}
	p.width, p.height = w, h
	if len(p.pictures) == 0 && len(p.inflight) == 0 {
		return p.request()
	}
	p.cancel()
	if n := len(p.inflight); n > 0 {
		p.stale[p.gen] += n
	}
	p.gen = event.NextGeneration()
	p.ctx, p.cancel = context.WithCancel(p.s.ctx)
	clear(p.pictures)
	clear(p.tiers)
	clear(p.inflight)
	return p.request()
}

// Close cancels every fetch the page started.
func (p *readerPage) Close() { p.cancel() }

// outstanding is the number of fetches that have not reported back, across
// generations.
func (p *readerPage) outstanding() int {
	n := len(p.inflight)
	for _, c := range p.stale {
		n += c
	}
	return n
}

// dropStale accounts for a result of a superseded generation. It may free
// room under the bound for the current window.
func (p *readerPage) dropStale(gen uint64) tea.Cmd {
	n, ok := p.stale[gen]
	if !ok {
		return nil
	}
	if n <= 1 {
		delete(p.stale, gen)
	} else {
		p.stale[gen] = n - 1
	}
	return p.request()
}

func (p *readerPage) pictureBox() (cols, rows int) {
	return max(1, p.width), max(1, p.height-1)
}

// request starts fetches for the current page and the prefetch window,
// nearest first, until the in-flight bound is reached.
func (p *readerPage) request() tea.Cmd {
	if p.plan.Empty() || p.width == 0 || p.height == 0 {
		return nil
	}
	limit := p.window + 1
	wanted := append([]int{p.current}, p.plan.Window(p.current, p.window)...)

	cols, rows := p.pictureBox()
	var cmds []tea.Cmd
	for _, pos := range wanted {
		if p.outstanding() >= limit {
			break
		}
		if _, ok := p.pictures[pos]; ok || p.inflight[pos] || p.failures[pos] != nil {
			continue
		}
		ref, ok := p.plan.Resolve(pos)
		if !ok {
			continue
		}
		p.inflight[pos] = true
		cmds = append(cmds, pageTask(p.ctx, p.s.catalog, p.gen, p.set, ref, p.s.protocol, cols, rows))
	}
	return tea.Batch(cmds...)
}

func (p *readerPage) evict() {
	radius := 2 * p.window
	for pos := range p.pictures {
		if !chapter.Keep(p.current, pos, radius) {
			delete(p.pictures, pos)
			delete(p.tiers, pos)
		}
	}
}

func (p *readerPage) HandleEvent(ev event.Event) tea.Cmd {
	switch ev := ev.(type) {
	case event.Key:
		keys := p.s.keys
		switch {
		case matches(ev, keys.Back):
			return event.Emit(event.NavigateBack{})
		case matches(ev, keys.NextPage):
			p.actions.Push(event.NextPage{})
		case matches(ev, keys.PrevPage):
			p.actions.Push(event.PrevPage{})
		case matches(ev, keys.Retry):
			delete(p.failures, p.current)
			return p.request()
		}
	case event.Mouse:
		switch {
		case ev.Button == "wheel down", ev.Button == "left" && ev.X >= p.width/2:
			p.actions.Push(event.NextPage{})
		case ev.Button == "wheel up", ev.Button == "left":
			p.actions.Push(event.PrevPage{})
		}
	case event.PageLoaded:
		return p.applyPage(ev)
	}
	return nil
}

func (p *readerPage) applyPage(ev event.PageLoaded) tea.Cmd {
	delete(p.inflight, ev.Position)
	switch {
	case ev.Err != nil:
		p.failures[ev.Position] = ev.Err
	case chapter.Keep(p.current, ev.Position, 2*p.window):
		p.pictures[ev.Position] = ev.Picture
		p.tiers[ev.Position] = ev.Tier
	default:
		debuglog.Debugf("reader: page %d arrived outside window of %d", ev.Position, p.current)
	}
	return p.request()
}

func (p *readerPage) HandleAction(a event.Action) tea.Cmd {
	next := p.current
	switch a.(type) {
	case event.NextPage:
		next = p.plan.Next(p.current)
	case event.PrevPage:
		next = p.plan.Prev(p.current)
	}
	if next == p.current {
		return nil
	}
	p.current = next
	delete(p.failures, next)
	p.evict()
	return p.request()
}

// Current is the 1-based page on screen.
func (p *readerPage) Current() int { return p.current }

func (p *readerPage) Render(w, h int) string {
	total := p.plan.Len()
	rows := max(1, h-1)

	var body string
	pic, ok := p.pictures[p.current]
	switch {
	case total == 0:
		body = renderCentered(w, rows, renderMuted(MsgEmptyChapter))
	case ok && pic.Protocol == imaging.Kitty:
		body = imaging.ClearKittyGraphics() + pic.Data
	case ok:
		body = lipgloss.NewStyle().Width(w).Height(rows).Align(lipgloss.Center, lipgloss.Center).Render(pic.Data)
	case p.failures[p.current] != nil:
		body = renderCentered(w, rows, StatusErrorStyle.Render(describeFailure(fmt.Sprintf("page %d", p.current), p.failures[p.current])))
	default:
		body = renderCentered(w, rows, renderMuted(MsgLoadingPage(p.current, total)))
	}

	tier := ""
	if t, ok := p.tiers[p.current]; ok {
		tier = " • " + t.String()
	}
	line := fmt.Sprintf("%s • page %d/%d%s", p.chapter.Label(), p.current, max(total, 1), tier)
	if n := p.outstanding(); n > 0 {
		line += fmt.Sprintf(" • %d loading", n)
	}

	return lipgloss.JoinVertical(lipgloss.Top, body, StatusBarStyle.Render(truncateEnd(line, max(1, w-2))))
}
