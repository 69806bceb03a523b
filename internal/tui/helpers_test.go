package tui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/pders01/tankobon/internal/catalog"
	"github.com/pders01/tankobon/internal/config"
	"github.com/pders01/tankobon/internal/event"
	"github.com/pders01/tankobon/internal/history"
	"github.com/pders01/tankobon/internal/imaging"
	"github.com/pders01/tankobon/internal/library"
)

var errOffline = errors.New("dial tcp: connection refused")

type fakeCatalog struct {
	mu        sync.Mutex
	search    catalog.SearchPage
	searchErr error
	chapters  catalog.ChapterFeed
	pageSet   catalog.PageSet
	image     []byte
	fetched   []string
}

func (f *fakeCatalog) Search(_ context.Context, term string, page int) (catalog.SearchPage, error) {
	if f.searchErr != nil {
		return catalog.SearchPage{}, f.searchErr
	}
	res := f.search
	res.Page = page
	return res, nil
}

func (f *fakeCatalog) Cover(context.Context, string, string) ([]byte, error) {
	return f.image, nil
}

func (f *fakeCatalog) Chapters(_ context.Context, itemID string, _ int, lang catalog.Language, order catalog.Order) (catalog.ChapterFeed, error) {
	feed := f.chapters
	feed.ItemID, feed.Language, feed.Order = itemID, lang, order
	return feed, nil
}

func (f *fakeCatalog) PageSet(_ context.Context, chapterID string) (catalog.PageSet, error) {
	set := f.pageSet
	set.ChapterID = chapterID
	return set, nil
}

func (f *fakeCatalog) PageBytes(_ context.Context, endpoint, fileName string) ([]byte, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, endpoint+"/"+fileName)
	f.mu.Unlock()
	return f.image, nil
}

func (f *fakeCatalog) fetchedURLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.fetched...)
}

func testImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 12))
	for y := 0; y < 12; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: uint8(20 * x), G: uint8(20 * y), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func files(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%d.jpg", prefix, i+1)
	}
	return out
}

func newFakeCatalog(t *testing.T) *fakeCatalog {
	return &fakeCatalog{
		search: catalog.SearchPage{
			Total: 2,
			Items: []catalog.ItemSummary{
				{ID: "m1", Title: "Yotsuba&!", Author: "Azuma Kiyohiko"},
				{ID: "m2", Title: "Berserk", Author: "Miura Kentaro"},
			},
		},
		chapters: catalog.ChapterFeed{
			Total: 2,
			Chapters: []catalog.Chapter{
				{ID: "c1", ItemID: "m1", Number: "1", Title: "Yotsuba & Moving"},
				{ID: "c2", ItemID: "m1", Number: "2", Title: "Yotsuba & Cicadas"},
			},
		},
		pageSet: catalog.PageSet{
			BaseURL: "https://img.example.org",
			Hash:    "h",
			Low:     files("l", 12),
			Full:    files("f", 12),
		},
		image: testImage(t),
	}
}

type testApp struct {
	*App
	catalog *fakeCatalog
	history *history.SQLStore
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	cfg := config.TestConfig()
	fc := newFakeCatalog(t)

	store, err := history.OpenSQL(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	lib, err := library.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = lib.Close() })

	app := NewApp(Options{
		Config:   cfg,
		Catalog:  fc,
		History:  store,
		Library:  lib,
		Protocol: imaging.Halfblocks,
	})
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return &testApp{App: app, catalog: fc, history: store}
}

// step feeds one message through Update and returns the command it produced.
func (a *testApp) step(msg tea.Msg) tea.Cmd {
	_, cmd := a.Update(msg)
	return cmd
}

// collect runs a command tree and returns the messages it produces. Timer
// ticks are skipped so tests never wait on the clock.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	switch msg := msg.(type) {
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, collect(c)...)
		}
		return out
	case nil:
		return nil
	}
	return []tea.Msg{msg}
}

// events keeps only application events from msgs.
func events(msgs []tea.Msg) []event.Event {
	var out []event.Event
	for _, m := range msgs {
		if ev, ok := m.(event.Event); ok {
			out = append(out, ev)
		}
	}
	return out
}

// settle delivers every event produced by cmd, and by the commands those
// events produce, until nothing is left.
func (a *testApp) settle(cmd tea.Cmd) {
	pending := events(collect(cmd))
	for len(pending) > 0 {
		ev := pending[0]
		pending = pending[1:]
		pending = append(pending, events(collect(a.step(ev)))...)
	}
}

func press(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func teaResize(w, h int) tea.WindowSizeMsg {
	return tea.WindowSizeMsg{Width: w, Height: h}
}
