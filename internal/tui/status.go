package tui

import (
	"fmt"
	"strings"
)

// Canonical short status messages used across the app.
const (
	MsgSearching       = "Searching…"
	MsgLoadingChapters = "Loading chapters…"
	MsgOpeningChapter  = "Opening chapter…"
	MsgNoResults       = "No results"
	MsgNoChapters      = "No chapters in this language"
	MsgHistoryOff      = "Reading history unavailable"
	MsgEmptyChapter    = "This chapter has no pages"
)

func MsgResultsCount(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}

func MsgResultsSummary(total, page, pages int) string {
	return fmt.Sprintf("%s • page %d/%d", MsgResultsCount(total), page, pages)
}

func MsgOfflineResults(n int) string {
	return fmt.Sprintf("Offline: %s from this session", strings.ToLower(MsgResultsCount(n)))
}

func MsgLoadingPage(pos, total int) string {
	return fmt.Sprintf("Loading page %d/%d…", pos, total)
}
