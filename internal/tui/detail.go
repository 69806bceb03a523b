package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/tankobon/internal/catalog"
	"github.com/pders01/tankobon/internal/debuglog"
	"github.com/pders01/tankobon/internal/event"
	"github.com/pders01/tankobon/internal/failure"
	"github.com/pders01/tankobon/internal/history"
	"github.com/pders01/tankobon/internal/imaging"
)

const (
	coverCols = 24
	coverRows = 16
)

type chapterItem struct {
	chapter catalog.Chapter
	read    bool
}

func (i chapterItem) Title() string {
	if i.read {
		return ReadItemStyle.Render("✓ " + i.chapter.Label())
	}
	return i.chapter.Label()
}

func (i chapterItem) Description() string {
	var parts []string
	if i.chapter.Group != "" {
		parts = append(parts, i.chapter.Group)
	}
	if i.chapter.Pages > 0 {
		parts = append(parts, fmt.Sprintf("%d pages", i.chapter.Pages))
	}
	if !i.chapter.ReadableAt.IsZero() {
		parts = append(parts, i.chapter.ReadableAt.Format("Jan 2, 2006"))
	}
	return strings.Join(parts, " • ")
}

func (i chapterItem) FilterValue() string { return i.chapter.Label() }

// detailPage shows one item and its chapter feed.
type detailPage struct {
	s       *session
	gen     uint64
	actions *event.Queue[event.Action]
	item    catalog.ItemSummary

	cover    imaging.Picture
	coverErr *failure.Error

	chapters    list.Model
	feed        catalog.ChapterFeed
	lang        catalog.Language
	order       catalog.Order
	chapterPage int
	chapterSeq  uint64
	loading     bool
	opening     bool
	read        map[string]bool
	status      status

	description     string
	glamourRenderer *glamour.TermRenderer
	rendererWidth   int

	width, height int
}

func newDetailPage(s *session, item catalog.ItemSummary) *detailPage {
	chapters := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	chapters.SetShowTitle(false)
	chapters.SetShowStatusBar(false)
	chapters.SetShowHelp(false)
	chapters.SetFilteringEnabled(false)
	chapters.DisableQuitKeybindings()

	return &detailPage{
		s:           s,
		gen:         event.NextGeneration(),
		actions:     event.NewQueue[event.Action](),
		item:        item,
		chapters:    chapters,
		lang:        s.language,
		order:       catalog.Ascending,
		chapterPage: 1,
		read:        map[string]bool{},
	}
}

// Init starts the cover, chapter feed and history reads in parallel.
func (p *detailPage) Init() tea.Cmd {
	return tea.Batch(
		coverTask(p.s.ctx, p.s.catalog, p.gen, p.item, p.s.protocol, coverCols, coverRows),
		p.loadChapters(),
		progressTask(p.s.ctx, p.s.history, p.gen, p.item.ID),
	)
}

func (p *detailPage) Generation() uint64                  { return p.gen }
func (p *detailPage) Actions() *event.Queue[event.Action] { return p.actions }
func (p *detailPage) Typing() bool                        { return false }

func (p *detailPage) Help() []key.Binding {
	k := p.s.keys
	return []key.Binding{k.Back, k.Quit, k.Up, k.Down, k.Select, k.ToggleOrder, k.Language, k.NextResults, k.PrevResults}
}

func (p *detailPage) SetSize(w, h int) tea.Cmd {
	p.width, p.height = w, h
	p.chapters.SetSize(w, max(3, h-coverRows-3))
	p.renderDescription()
	return nil
}

func (p *detailPage) infoWidth() int {
	return max(10, p.width-coverCols-2)
}

// getRenderer reuses the glamour renderer until the wrap width drifts.
func (p *detailPage) getRenderer(wordWrapWidth int) (*glamour.TermRenderer, error) {
	if p.glamourRenderer == nil || abs(p.rendererWidth-wordWrapWidth) > 4 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		p.glamourRenderer = r
		p.rendererWidth = wordWrapWidth
	}
	return p.glamourRenderer, nil
}

func (p *detailPage) renderDescription() {
	text := strings.TrimSpace(p.item.Description)
	if text == "" {
		p.description = renderMuted("No description.")
		return
	}

	desc := p.s.cfg.UI.Description
	wrap := clampInt(p.infoWidth(), desc.WordWrapMinWidth, desc.WordWrapMaxWidth)
	r, err := p.getRenderer(wrap)
	if err != nil {
		debuglog.Warnf("detail: glamour renderer: %v", err)
		p.description = text
		return
	}
	out, err := r.Render(text)
	if err != nil {
		debuglog.Warnf("detail: render description: %v", err)
		p.description = text
		return
	}
	p.description = strings.Trim(out, "\n")
}

func (p *detailPage) HandleEvent(ev event.Event) tea.Cmd {
	switch ev := ev.(type) {
	case event.Key:
		return p.handleKey(ev)
	case event.Mouse:
		switch ev.Button {
		case "wheel up":
			p.actions.Push(event.MoveCursor{Delta: -1})
		case "wheel down":
			p.actions.Push(event.MoveCursor{Delta: 1})
		}
	case event.CoverLoaded:
		p.cover, p.coverErr = ev.Picture, ev.Err
	case event.ChaptersLoaded:
		p.applyChapters(ev)
	case event.ProgressLoaded:
		if ev.Err != nil {
			p.status = status{text: MsgHistoryOff, kind: StatusWarn}
		}
		for id := range ev.Read {
			p.read[id] = true
		}
		p.refreshItems()
	case event.PageSetLoaded:
		return p.applyPageSet(ev)
	case event.ProgressSaved:
		if ev.Err != nil {
			debuglog.Warnf("detail: %v", ev.Err)
			p.status = status{text: MsgHistoryOff, kind: StatusWarn}
		}
	}
	return nil
}

func (p *detailPage) handleKey(k event.Key) tea.Cmd {
	keys := p.s.keys
	switch {
	case matches(k, keys.Back):
		return event.Emit(event.NavigateBack{})
	case matches(k, keys.Up):
		p.actions.Push(event.MoveCursor{Delta: -1})
	case matches(k, keys.Down):
		p.actions.Push(event.MoveCursor{Delta: 1})
	case matches(k, keys.Select):
		p.actions.Push(event.OpenChapter{Index: p.chapters.Index()})
	case matches(k, keys.ToggleOrder):
		p.actions.Push(event.ToggleOrder{})
	case matches(k, keys.Language):
		p.actions.Push(event.CycleLanguage{})
	case matches(k, keys.NextResults):
		p.actions.Push(event.ChangeResultsPage{Delta: 1})
	case matches(k, keys.PrevResults):
		p.actions.Push(event.ChangeResultsPage{Delta: -1})
	}
	return nil
}

func (p *detailPage) HandleAction(a event.Action) tea.Cmd {
	switch a := a.(type) {
	case event.MoveCursor:
		if n := len(p.chapters.Items()); n > 0 {
			p.chapters.Select(clampInt(p.chapters.Index()+a.Delta, 0, n-1))
		}
	case event.OpenChapter:
		if p.opening || a.Index < 0 || a.Index >= len(p.feed.Chapters) {
			return nil
		}
		p.opening = true
		p.status = status{text: MsgOpeningChapter}
		return pageSetTask(p.s.ctx, p.s.catalog, p.gen, p.feed.Chapters[a.Index])
	case event.ToggleOrder:
		p.order = p.order.Toggle()
		p.chapterPage = 1
		return p.loadChapters()
	case event.CycleLanguage:
		p.lang = catalog.NextLanguage(p.lang)
		p.chapterPage = 1
		return p.loadChapters()
	case event.ChangeResultsPage:
		pages := max(1, (p.feed.Total+catalog.ChapterPageSize-1)/catalog.ChapterPageSize)
		next := clampInt(p.chapterPage+a.Delta, 1, pages)
		if next == p.chapterPage || p.loading {
			return nil
		}
		p.chapterPage = next
		return p.loadChapters()
	}
	return nil
}

func (p *detailPage) loadChapters() tea.Cmd {
	p.chapterSeq++
	p.loading = true
	p.status = status{text: MsgLoadingChapters}
	return chaptersTask(p.s.ctx, p.s.catalog, p.gen, p.chapterSeq, p.item.ID, p.chapterPage, p.lang, p.order)
}

func (p *detailPage) applyChapters(ev event.ChaptersLoaded) {
	if ev.Seq != p.chapterSeq {
		debuglog.Debugf("detail: dropping superseded chapters seq=%d current=%d", ev.Seq, p.chapterSeq)
		return
	}
	p.loading = false
	if ev.Err != nil {
		p.status = status{text: describeFailure("chapters", ev.Err), kind: StatusError}
		return
	}
	p.feed = ev.Feed
	p.refreshItems()
	p.chapters.Select(0)
	if len(ev.Feed.Chapters) == 0 {
		p.status = status{text: MsgNoChapters}
		return
	}
	p.status = status{}
}

func (p *detailPage) refreshItems() {
	items := make([]list.Item, len(p.feed.Chapters))
	for i, ch := range p.feed.Chapters {
		items[i] = chapterItem{chapter: ch, read: p.read[ch.ID]}
	}
	idx := p.chapters.Index()
	p.chapters.SetItems(items)
	if len(items) > 0 {
		p.chapters.Select(clampInt(idx, 0, len(items)-1))
	}
}

// applyPageSet records progress and hands the chapter to a reader.
func (p *detailPage) applyPageSet(ev event.PageSetLoaded) tea.Cmd {
	p.opening = false
	if ev.Err != nil {
		p.status = status{text: describeFailure("chapter", ev.Err), kind: StatusError}
		return nil
	}
	p.status = status{}
	p.read[ev.Chapter.ID] = true
	p.refreshItems()

	progress := history.Progress{
		ItemID:    p.item.ID,
		ItemTitle: p.item.Title,
		UnitID:    ev.Chapter.ID,
		UnitTitle: ev.Chapter.Label(),
	}
	return tea.Batch(
		saveProgressTask(p.s.ctx, p.s.history, p.gen, progress),
		event.Emit(event.NavigateToReader{Chapter: ev.Chapter, Set: ev.Set}),
	)
}

func (p *detailPage) Render(w, h int) string {
	infoW := max(10, w-coverCols-2)

	var cover string
	switch {
	case !p.cover.Empty():
		cover = padBlock(p.cover.Data, coverCols)
	case p.coverErr != nil:
		cover = renderCentered(coverCols, coverRows, renderMuted("no cover"))
	default:
		cover = renderCentered(coverCols, coverRows, renderMuted("…"))
	}
	cover = lipgloss.NewStyle().Width(coverCols).Height(coverRows).MaxHeight(coverRows).Render(cover)

	var meta []string
	if p.item.Author != "" {
		meta = append(meta, p.item.Author)
	}
	if p.item.Year > 0 {
		meta = append(meta, fmt.Sprint(p.item.Year))
	}
	if p.item.Status != "" {
		meta = append(meta, p.item.Status)
	}
	info := []string{renderHeader(p.item.Title, strings.Join(meta, " • "), infoW)}
	if len(p.item.Tags) > 0 {
		info = append(info, TagStyle.Render(truncateEnd(strings.Join(p.item.Tags, " · "), infoW)))
	}
	info = append(info, "", p.description)
	infoBlock := lipgloss.NewStyle().
		Width(infoW).
		Height(coverRows).
		MaxHeight(coverRows).
		Render(lipgloss.JoinVertical(lipgloss.Top, info...))

	top := lipgloss.JoinHorizontal(lipgloss.Top, cover, "  ", infoBlock)

	pages := max(1, (p.feed.Total+catalog.ChapterPageSize-1)/catalog.ChapterPageSize)
	heading := fmt.Sprintf("› chapters • %s • %s • page %d/%d", p.lang.Name, p.order, p.chapterPage, pages)
	listHeader := HeaderStyle.Render(truncateEnd(heading, w))

	return lipgloss.NewStyle().
		Width(w).
		Height(h).
		MaxHeight(h).
		Render(lipgloss.JoinVertical(lipgloss.Top, top, listHeader, p.status.render(w), p.chapters.View()))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
