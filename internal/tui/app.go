package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/tankobon/internal/catalog"
	"github.com/pders01/tankobon/internal/config"
	"github.com/pders01/tankobon/internal/debuglog"
	"github.com/pders01/tankobon/internal/event"
	"github.com/pders01/tankobon/internal/history"
	"github.com/pders01/tankobon/internal/imaging"
	"github.com/pders01/tankobon/internal/input"
	"github.com/pders01/tankobon/internal/library"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	chromeRows    = 3
)

// Options are the collaborators the app is built from. History may be nil,
// in which case reading progress is not recorded; Library may be nil, which
// disables offline search.
type Options struct {
	Config   *config.Config
	Catalog  catalog.Fetcher
	History  history.Store
	Library  *library.Library
	Protocol imaging.Protocol
}

// App is the top-level state machine. Every Update is one step: it applies at
// most one event, then at most one global action, then at most one local
// action of the active page.
type App struct {
	sess   *session
	cancel context.CancelFunc
	source input.Source
	help   help.Model

	state   AppState
	search  *searchPage
	pages   pageState
	globals *event.Queue[event.Action]

	width, height int
}

func NewApp(opts Options) *App {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.TestConfig()
	}
	store := opts.History
	if store == nil {
		store = history.Unavailable{}
	}
	lang, ok := catalog.LookupLanguage(cfg.Catalog.Language)
	if !ok {
		lang = catalog.DefaultLanguage()
	}

	ctx, cancel := context.WithCancel(context.Background())
	sess := &session{
		ctx:      ctx,
		cfg:      cfg,
		keys:     newKeyMap(cfg.Keys),
		catalog:  opts.Catalog,
		history:  store,
		library:  opts.Library,
		protocol: opts.Protocol,
		language: lang,
	}

	return &App{
		sess:    sess,
		cancel:  cancel,
		source:  input.NewSource(cfg.Reader.TickInterval),
		help:    help.New(),
		state:   Running,
		search:  newSearchPage(sess),
		pages:   searchState{},
		globals: event.NewQueue[event.Action](),
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.source.Tick(), a.search.Init())
}

// State reports whether the loop should keep running.
func (a *App) State() AppState { return a.state }

// ActiveTab is the tab currently receiving input.
func (a *App) ActiveTab() Tab { return a.pages.active() }

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.state == Done {
		return a, tea.Quit
	}

	var cmds []tea.Cmd
	if ev, ok := a.source.Translate(msg); ok {
		cmds = append(cmds, a.applyEvent(ev))
	}
	if act, ok := a.globals.Pop(); ok {
		cmds = append(cmds, a.applyGlobal(act))
	}
	if a.state == Done {
		a.cancel()
		return a, tea.Quit
	}
	page := a.activePage()
	if act, ok := page.Actions().Pop(); ok {
		cmds = append(cmds, page.HandleAction(act))
	}
	return a, tea.Batch(cmds...)
}

func (a *App) applyEvent(ev event.Event) tea.Cmd {
	switch ev := ev.(type) {
	case event.Tick:
		return tea.Batch(a.source.Tick(), a.activePage().HandleEvent(ev))

	case event.Resize:
		a.width, a.height = ev.Width, ev.Height
		a.help.Width = ev.Width
		return a.resize()

	case event.Key:
		if act, ok := a.sess.keys.globalAction(ev, a.activePage().Typing()); ok {
			a.globals.Push(act)
			return nil
		}
		return a.activePage().HandleEvent(ev)

	case event.Mouse:
		return a.activePage().HandleEvent(ev)

	case event.NavigateToDetail:
		detail := newDetailPage(a.sess, ev.Item)
		a.setPages(detailState{detail: detail, tab: TabDetail})
		debuglog.Infof("open item %s (%s)", ev.Item.ID, ev.Item.Title)
		return tea.Batch(detail.SetSize(a.bodySize()), detail.Init())

	case event.NavigateToReader:
		reader := newReaderPage(a.sess, ev.Chapter, ev.Set)
		a.setPages(readerState{detail: a.detail(), reader: reader})
		debuglog.Infof("open chapter %s (%d pages)", ev.Chapter.ID, reader.plan.Len())
		return tea.Batch(reader.SetSize(a.bodySize()), reader.Init())

	case event.NavigateBack:
		switch s := a.pages.(type) {
		case readerState:
			if s.detail != nil {
				a.setPages(detailState{detail: s.detail, tab: TabDetail})
			} else {
				a.setPages(searchState{})
			}
		case detailState:
			a.pages = detailState{detail: s.detail, tab: TabSearch}
		}

	case event.NavigateToSearch:
		a.setPages(searchState{})

	case event.Result:
		return a.route(ev)
	}
	return nil
}

func (a *App) applyGlobal(act event.Action) tea.Cmd {
	switch act.(type) {
	case event.Quit:
		a.state = Done
	case event.GoToSearch:
		a.setPages(searchState{})
	case event.NextTab, event.PreviousTab:
		// With at most two switchable tabs both directions are a toggle.
		if s, ok := a.pages.(detailState); ok {
			if s.tab == TabSearch {
				s.tab = TabDetail
			} else {
				s.tab = TabSearch
			}
			a.pages = s
		}
	}
	return nil
}

// route delivers a result to the page instance that asked for it. Results
// for pages that were torn down or replaced are dropped.
func (a *App) route(r event.Result) tea.Cmd {
	var target Page
	switch r.(type) {
	case event.SearchLoaded:
		target = a.search
	case event.PageLoaded:
		if s, ok := a.pages.(readerState); ok {
			if s.reader.Generation() != r.Generation() {
				debuglog.Debugf("discarding stale %T gen=%d", r, r.Generation())
				return s.reader.dropStale(r.Generation())
			}
			target = s.reader
		}
	default:
		if d := a.detail(); d != nil {
			target = d
		}
	}

	if target == nil || target.Generation() != r.Generation() {
		debuglog.Debugf("discarding stale %T gen=%d", r, r.Generation())
		return nil
	}
	return target.HandleEvent(r)
}

// setPages switches the resident pages. A reader that is no longer resident
// has its fetches cancelled.
func (a *App) setPages(next pageState) {
	old := a.reader()
	a.pages = next
	if old != nil && old != a.reader() {
		old.Close()
	}
}

func (a *App) detail() *detailPage {
	switch s := a.pages.(type) {
	case detailState:
		return s.detail
	case readerState:
		return s.detail
	}
	return nil
}

func (a *App) reader() *readerPage {
	if s, ok := a.pages.(readerState); ok {
		return s.reader
	}
	return nil
}

func (a *App) activePage() Page {
	switch s := a.pages.(type) {
	case detailState:
		if s.tab == TabDetail {
			return s.detail
		}
	case readerState:
		return s.reader
	}
	return a.search
}

// tabs lists the tabs that have a resident page, in display order.
func (a *App) tabs() []Tab {
	tabs := []Tab{TabSearch}
	if a.detail() != nil {
		tabs = append(tabs, TabDetail)
	}
	if a.reader() != nil {
		tabs = append(tabs, TabReader)
	}
	return tabs
}

func (a *App) bodySize() (int, int) {
	w, h := a.width, a.height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	return w, max(1, h-chromeRows)
}

func (a *App) resize() tea.Cmd {
	w, h := a.bodySize()
	cmds := []tea.Cmd{a.search.SetSize(w, h)}
	if d := a.detail(); d != nil {
		cmds = append(cmds, d.SetSize(w, h))
	}
	if r := a.reader(); r != nil {
		cmds = append(cmds, r.SetSize(w, h))
	}
	return tea.Batch(cmds...)
}

func (a *App) View() string {
	if a.state == Done {
		return ""
	}
	w, h := a.bodySize()
	page := a.activePage()

	header := renderTabs(a.tabs(), a.pages.active(), w)
	body := page.Render(w, h)
	separator := SeparatorStyle.Render(strings.Repeat("─", max(0, w)))
	helpLine := StatusBarStyle.Render(a.help.ShortHelpView(page.Help()))

	view := lipgloss.JoinVertical(lipgloss.Top, header, body, separator, helpLine)
	// Kitty keeps placed images until told otherwise.
	if a.sess.protocol == imaging.Kitty && a.reader() == nil {
		view = imaging.ClearKittyGraphics() + view
	}
	return view
}
