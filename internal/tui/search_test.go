package tui

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/tankobon/internal/catalog"
	"github.com/pders01/tankobon/internal/event"
	"github.com/pders01/tankobon/internal/failure"
)

func TestSearchInitListsFrontPage(t *testing.T) {
	app := newTestApp(t)
	app.settle(app.search.Init())

	page := app.search
	assert.False(t, page.loading)
	assert.Len(t, page.results.Items(), 2)
	assert.True(t, page.Typing(), "empty query keeps the input focused")
	assert.Equal(t, MsgResultsSummary(2, 1, 1), page.status.text)
	assert.Equal(t, 2, app.sess.library.Len())
}

func TestSearchFallsBackToLibraryWhenOffline(t *testing.T) {
	app := newTestApp(t)
	app.settle(app.search.Init())
	app.catalog.searchErr = errOffline

	app.step(press("yotsuba"))
	app.settle(app.step(press("enter")))

	page := app.search
	require.True(t, page.offline)
	assert.Equal(t, StatusWarn, page.status.kind)
	assert.Equal(t, MsgOfflineResults(1), page.status.text)
	require.Len(t, page.results.Items(), 1)
	assert.Equal(t, "m1", page.results.Items()[0].(resultItem).item.ID)

	assert.Nil(t, page.HandleAction(event.ChangeResultsPage{Delta: 1}), "offline results have a single page")
}

func TestSearchReportsNonNetworkFailure(t *testing.T) {
	app := newTestApp(t)
	app.catalog.searchErr = fmt.Errorf("lookup: %w", failure.ErrNotFound)

	app.settle(app.search.Init())

	page := app.search
	assert.False(t, page.offline)
	assert.Equal(t, StatusError, page.status.kind)
	assert.Equal(t, "search: not found", page.status.text)
	assert.Empty(t, page.results.Items())
}

func TestSearchDropsSupersededResults(t *testing.T) {
	app := newTestApp(t)
	page := app.search
	stale := page.fetch()
	fresh := page.fetch()

	app.settle(stale)
	assert.True(t, page.loading, "older request does not finish the newer one")
	assert.Empty(t, page.results.Items())

	app.settle(fresh)
	assert.False(t, page.loading)
	assert.Len(t, page.results.Items(), 2)
}

func TestSearchResultsPaging(t *testing.T) {
	app := newTestApp(t)
	app.catalog.search.Total = 3 * catalog.SearchPageSize
	app.settle(app.search.Init())
	page := app.search
	require.Equal(t, 3, page.pages)

	app.step(press("down"))
	require.False(t, page.Typing())

	app.settle(app.step(press("]")))
	assert.Equal(t, 2, page.page)

	app.settle(app.step(press("[")))
	app.settle(app.step(press("[")))
	assert.Equal(t, 1, page.page)
}

func TestSearchCursorAndFocus(t *testing.T) {
	app := newTestApp(t)
	app.settle(app.search.Init())
	page := app.search

	app.step(press("down"))
	require.False(t, page.Typing())
	assert.Equal(t, 0, page.results.Index())

	app.step(press("down"))
	assert.Equal(t, 1, page.results.Index())
	app.step(press("down"))
	assert.Equal(t, 1, page.results.Index(), "cursor saturates at the last result")

	app.step(press("up"))
	app.step(press("up"))
	assert.True(t, page.Typing(), "up on the first result returns to the input")

	app.step(press("esc"))
	app.step(press("/"))
	assert.True(t, page.Typing())
}

func TestSearchRenderShowsStatus(t *testing.T) {
	app := newTestApp(t)
	app.settle(app.search.Init())

	out := app.search.Render(100, 37)
	assert.Contains(t, out, "Yotsuba&!")
	assert.Contains(t, out, "2 results")
}
