package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/tankobon/internal/catalog"
	"github.com/pders01/tankobon/internal/debuglog"
	"github.com/pders01/tankobon/internal/event"
)

type resultItem struct {
	item catalog.ItemSummary
}

func (i resultItem) Title() string { return i.item.Title }

func (i resultItem) Description() string {
	var parts []string
	if i.item.Author != "" {
		parts = append(parts, i.item.Author)
	}
	if i.item.Year > 0 {
		parts = append(parts, fmt.Sprint(i.item.Year))
	}
	if i.item.Status != "" {
		parts = append(parts, i.item.Status)
	}
	return strings.Join(parts, " • ")
}

func (i resultItem) FilterValue() string { return i.item.Title }

// searchPage is always resident so a query and its results survive trips
// to the other tabs.
type searchPage struct {
	s       *session
	gen     uint64
	actions *event.Queue[event.Action]

	input   textinput.Model
	results list.Model
	spinner spinner.Model

	term    string
	page    int
	pages   int
	total   int
	seq     uint64
	loading bool
	offline bool
	status  status

	width, height int
}

func newSearchPage(s *session) *searchPage {
	ti := textinput.New()
	ti.Placeholder = "Search titles..."
	ti.Prompt = "› "
	// Blink messages never reach the page, so keep the cursor solid.
	ti.Cursor.SetMode(cursor.CursorStatic)
	ti.Focus()

	results := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	results.Title = "› results"
	results.SetShowStatusBar(false)
	results.SetShowHelp(false)
	results.SetFilteringEnabled(false)
	results.DisableQuitKeybindings()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(AccentColor)

	return &searchPage{
		s:       s,
		gen:     event.NextGeneration(),
		actions: event.NewQueue[event.Action](),
		input:   ti,
		results: results,
		spinner: sp,
		page:    1,
		pages:   1,
	}
}

// Init lists the catalog front page so the screen is not empty on start.
func (p *searchPage) Init() tea.Cmd {
	return p.fetch()
}

func (p *searchPage) Generation() uint64                  { return p.gen }
func (p *searchPage) Actions() *event.Queue[event.Action] { return p.actions }
func (p *searchPage) Typing() bool                        { return p.input.Focused() }

func (p *searchPage) Help() []key.Binding {
	k := p.s.keys
	if p.Typing() {
		return []key.Binding{k.ForceQuit, k.Select, k.Down, k.NextTab}
	}
	return []key.Binding{k.Quit, k.Up, k.Down, k.Select, k.Focus, k.NextResults, k.PrevResults, k.NextTab}
}

func (p *searchPage) SetSize(w, h int) tea.Cmd {
	p.width, p.height = w, h
	p.input.Width = max(10, w-8)
	p.results.SetSize(w, max(3, h-6))
	return nil
}

func (p *searchPage) HandleEvent(ev event.Event) tea.Cmd {
	switch ev := ev.(type) {
	case event.Tick:
		if p.loading {
			p.spinner, _ = p.spinner.Update(spinner.TickMsg{Time: ev.At, ID: p.spinner.ID()})
		}
	case event.Key:
		return p.handleKey(ev)
	case event.Mouse:
		switch ev.Button {
		case "wheel up":
			p.actions.Push(event.MoveCursor{Delta: -1})
		case "wheel down":
			p.actions.Push(event.MoveCursor{Delta: 1})
		}
	case event.SearchLoaded:
		p.applyResults(ev)
	}
	return nil
}

func (p *searchPage) handleKey(k event.Key) tea.Cmd {
	keys := p.s.keys
	if p.input.Focused() {
		switch {
		case matches(k, keys.Select):
			p.actions.Push(event.SubmitSearch{})
			return nil
		case matches(k, keys.Back), k.Name == "down" && k.Mods == 0:
			if len(p.results.Items()) > 0 {
				p.input.Blur()
			}
			return nil
		}
		var cmd tea.Cmd
		p.input, cmd = p.input.Update(rawKey(k))
		return cmd
	}

	switch {
	case matches(k, keys.Up):
		if p.results.Index() == 0 {
			return p.input.Focus()
		}
		p.actions.Push(event.MoveCursor{Delta: -1})
	case matches(k, keys.Down):
		p.actions.Push(event.MoveCursor{Delta: 1})
	case matches(k, keys.Select):
		p.actions.Push(event.SelectResult{Index: p.results.Index()})
	case matches(k, keys.NextResults):
		p.actions.Push(event.ChangeResultsPage{Delta: 1})
	case matches(k, keys.PrevResults):
		p.actions.Push(event.ChangeResultsPage{Delta: -1})
	case matches(k, keys.Focus):
		return p.input.Focus()
	}
	return nil
}

func (p *searchPage) HandleAction(a event.Action) tea.Cmd {
	switch a := a.(type) {
	case event.SubmitSearch:
		p.term = strings.TrimSpace(p.input.Value())
		p.page = 1
		return p.fetch()
	case event.ChangeResultsPage:
		if p.loading || p.offline {
			return nil
		}
		next := clampInt(p.page+a.Delta, 1, p.pages)
		if next == p.page {
			return nil
		}
		p.page = next
		return p.fetch()
	case event.MoveCursor:
		if n := len(p.results.Items()); n > 0 {
			p.results.Select(clampInt(p.results.Index()+a.Delta, 0, n-1))
		}
	case event.SelectResult:
		items := p.results.Items()
		if a.Index < 0 || a.Index >= len(items) {
			return nil
		}
		if it, ok := items[a.Index].(resultItem); ok {
			return event.Emit(event.NavigateToDetail{Item: it.item})
		}
	}
	return nil
}

func (p *searchPage) fetch() tea.Cmd {
	p.seq++
	p.loading = true
	p.status = status{text: MsgSearching}
	return searchTask(p.s.ctx, p.s.catalog, p.s.library, p.gen, p.seq, p.term, p.page)
}

func (p *searchPage) applyResults(ev event.SearchLoaded) {
	if ev.Seq != p.seq {
		debuglog.Debugf("search: dropping superseded results seq=%d current=%d", ev.Seq, p.seq)
		return
	}
	p.loading = false
	p.offline = ev.Offline

	if ev.Err != nil && !ev.Offline {
		p.status = status{text: describeFailure("search", ev.Err), kind: StatusError}
		return
	}

	items := make([]list.Item, len(ev.Page.Items))
	for i, it := range ev.Page.Items {
		items[i] = resultItem{item: it}
	}
	p.results.SetItems(items)
	p.results.Select(0)
	p.total = ev.Page.Total
	p.pages = ev.Page.Pages()
	p.page = max(ev.Page.Page, 1)

	switch {
	case ev.Offline:
		p.status = status{text: MsgOfflineResults(len(items)), kind: StatusWarn}
	case len(items) == 0:
		p.status = status{text: MsgNoResults}
	default:
		p.status = status{text: MsgResultsSummary(p.total, p.page, p.pages), kind: StatusSuccess}
	}
	if len(items) > 0 && p.term != "" {
		p.input.Blur()
	}
}

func (p *searchPage) Render(w, h int) string {
	header := renderHeader("› search", "", w)
	input := renderInputFrame(p.input.View(), p.input.Focused(), max(10, w-8))

	line := p.status.render(w)
	if p.loading {
		line = p.spinner.View() + " " + line
	}

	body := p.results.View()
	if len(p.results.Items()) == 0 && !p.loading {
		body = renderCentered(w, max(1, h-6), GetCompactBanner("Type a title and press enter"))
	}

	return lipgloss.NewStyle().
		Width(w).
		Height(h).
		MaxHeight(h).
		Render(lipgloss.JoinVertical(lipgloss.Top, header, input, line, body))
}
