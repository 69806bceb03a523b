package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/tankobon/internal/catalog"
	"github.com/pders01/tankobon/internal/chapter"
	"github.com/pders01/tankobon/internal/debuglog"
	"github.com/pders01/tankobon/internal/event"
	"github.com/pders01/tankobon/internal/failure"
	"github.com/pders01/tankobon/internal/history"
	"github.com/pders01/tankobon/internal/imaging"
	"github.com/pders01/tankobon/internal/library"
)

// Every task below runs off the UI goroutine and reports back with exactly
// one result event, success or not.

func searchTask(ctx context.Context, f catalog.Fetcher, lib *library.Library, gen, seq uint64, term string, page int) tea.Cmd {
	return func() tea.Msg {
		res, err := f.Search(ctx, term, page)
		if err == nil {
			if lib != nil {
				lib.Add(res.Items)
			}
			return event.SearchLoaded{Gen: gen, Seq: seq, Term: term, Page: res}
		}

		fail := failure.Classify("search", err)
		debuglog.WithFields(debuglog.Fields{"term": term, "page": page}).Warnf("search failed: %v", fail)
		if fail.Reason == failure.Network && lib != nil {
			items, libErr := lib.Search(term, catalog.SearchPageSize)
			if libErr != nil {
				debuglog.Warnf("library search: %v", libErr)
			}
			return event.SearchLoaded{
				Gen:     gen,
				Seq:     seq,
				Term:    term,
				Page:    catalog.SearchPage{Items: items, Page: 1, Total: len(items)},
				Offline: true,
				Err:     fail,
			}
		}
		return event.SearchLoaded{Gen: gen, Seq: seq, Term: term, Err: fail}
	}
}

func coverTask(ctx context.Context, f catalog.Fetcher, gen uint64, item catalog.ItemSummary, protocol imaging.Protocol, cols, rows int) tea.Cmd {
	return func() tea.Msg {
		data, err := f.Cover(ctx, item.ID, item.CoverFile)
		if err != nil {
			return event.CoverLoaded{Gen: gen, ItemID: item.ID, Err: failure.Classify("cover", err)}
		}
		pic, err := imaging.DecodeAndEncode(data, protocol, cols, rows)
		if err != nil {
			return event.CoverLoaded{Gen: gen, ItemID: item.ID, Err: failure.Classify("cover", err)}
		}
		return event.CoverLoaded{Gen: gen, ItemID: item.ID, Picture: pic}
	}
}

func chaptersTask(ctx context.Context, f catalog.Fetcher, gen, seq uint64, itemID string, page int, lang catalog.Language, order catalog.Order) tea.Cmd {
	return func() tea.Msg {
		feed, err := f.Chapters(ctx, itemID, page, lang, order)
		return event.ChaptersLoaded{Gen: gen, Seq: seq, Page: page, Feed: feed, Err: failure.Classify("chapters", err)}
	}
}

func progressTask(ctx context.Context, h history.Store, gen uint64, itemID string) tea.Cmd {
	return func() tea.Msg {
		ids, err := h.ReadChapters(ctx, itemID)
		read := make(map[string]bool, len(ids))
		for _, id := range ids {
			read[id] = true
		}
		return event.ProgressLoaded{Gen: gen, ItemID: itemID, Read: read, Err: persistenceFailure("read progress", err)}
	}
}

func pageSetTask(ctx context.Context, f catalog.Fetcher, gen uint64, ch catalog.Chapter) tea.Cmd {
	return func() tea.Msg {
		set, err := f.PageSet(ctx, ch.ID)
		return event.PageSetLoaded{Gen: gen, Chapter: ch, Set: set, Err: failure.Classify("page set", err)}
	}
}

func saveProgressTask(ctx context.Context, h history.Store, gen uint64, p history.Progress) tea.Cmd {
	return func() tea.Msg {
		err := h.SaveProgress(ctx, p)
		return event.ProgressSaved{Gen: gen, ChapterID: p.UnitID, Err: persistenceFailure("save progress", err)}
	}
}

func pageTask(ctx context.Context, f catalog.Fetcher, gen uint64, set catalog.PageSet, ref chapter.PageRef, protocol imaging.Protocol, cols, rows int) tea.Cmd {
	return func() tea.Msg {
		log := debuglog.WithFields(debuglog.Fields{"chapter": set.ChapterID, "page": ref.Position, "tier": ref.Tier})
		data, err := f.PageBytes(ctx, set.Endpoint(ref.Tier), ref.FileName)
		if err != nil {
			log.Warnf("fetch failed: %v", err)
			return event.PageLoaded{Gen: gen, Position: ref.Position, Tier: ref.Tier, Err: failure.Classify("page", err)}
		}
		pic, err := imaging.DecodeAndEncode(data, protocol, cols, rows)
		if err != nil {
			log.Warnf("decode failed: %v", err)
			return event.PageLoaded{Gen: gen, Position: ref.Position, Tier: ref.Tier, Err: failure.Classify("page", err)}
		}
		log.Debugf("page ready %dx%d", pic.Cols, pic.Rows)
		return event.PageLoaded{Gen: gen, Position: ref.Position, Tier: ref.Tier, Picture: pic}
	}
}

// persistenceFailure keeps history errors in their own class regardless of
// what the driver returned.
func persistenceFailure(op string, err error) *failure.Error {
	if err == nil {
		return nil
	}
	var classified *failure.Error
	if errors.As(err, &classified) && classified.Reason == failure.PersistenceUnavailable {
		return classified
	}
	return failure.New(failure.PersistenceUnavailable, op, err)
}
