// Package library remembers catalog entries seen during this session and
// answers searches against them when the catalog cannot be reached.
package library

import (
	"strings"
	"sync"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/pders01/tankobon/internal/catalog"
	"github.com/pders01/tankobon/internal/debuglog"
)

// Library is an in-memory full text index of item summaries. It is safe for
// concurrent use; fetch tasks add to it while the UI searches it.
type Library struct {
	idx   bleve.Index
	mu    sync.RWMutex
	items map[string]catalog.ItemSummary
}

func New() (*Library, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, err
	}
	return &Library{idx: idx, items: make(map[string]catalog.ItemSummary)}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()

	title := bleve.NewTextFieldMapping()
	title.Analyzer = standard.Name
	title.IncludeTermVectors = true

	text := func() *mapping.FieldMapping {
		f := bleve.NewTextFieldMapping()
		f.Analyzer = standard.Name
		f.Store = false
		return f
	}

	dm.AddFieldMappingsAt("title", title)
	dm.AddFieldMappingsAt("author", text())
	dm.AddFieldMappingsAt("tags", text())
	dm.AddFieldMappingsAt("description", text())

	im.DefaultMapping = dm
	return im
}

// Add indexes items, replacing earlier copies with the same id.
func (l *Library) Add(items []catalog.ItemSummary) {
	if len(items) == 0 {
		return
	}
	batch := l.idx.NewBatch()
	for _, it := range items {
		_ = batch.Index(it.ID, map[string]any{
			"title":       it.Title,
			"author":      it.Author,
			"tags":        strings.Join(it.Tags, " "),
			"description": it.Description,
		})
	}
	if err := l.idx.Batch(batch); err != nil {
		debuglog.Warnf("library: index batch: %v", err)
		return
	}

	l.mu.Lock()
	for _, it := range items {
		l.items[it.ID] = it
	}
	l.mu.Unlock()
}

// Len is the number of remembered items.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// Search returns up to limit items ranked by relevance. Queries shorter than
// two characters match nothing.
func (l *Library) Search(term string, limit int) ([]catalog.ItemSummary, error) {
	if len(strings.TrimSpace(term)) < 2 || limit <= 0 {
		return nil, nil
	}

	var qs []bleveQuery.Query
	for _, tok := range tokenize(term) {
		qs = append(qs,
			fieldMatch(tok, "title", 4.0),
			fieldPrefix(tok, "title", 3.5),
			fieldMatch(tok, "author", 2.0),
			fieldMatch(tok, "tags", 1.5),
			fieldMatch(tok, "description", 1.0),
			fieldPrefix(tok, "description", 0.8),
		)
	}
	if len(qs) == 0 {
		return nil, nil
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(qs...), limit, 0, false)
	res, err := l.idx.Search(req)
	if err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]catalog.ItemSummary, 0, len(res.Hits))
	for _, h := range res.Hits {
		if it, ok := l.items[h.ID]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

func (l *Library) Close() error {
	return l.idx.Close()
}

func fieldMatch(tok, field string, boost float64) bleveQuery.Query {
	q := bleve.NewMatchQuery(tok)
	q.SetField(field)
	q.SetBoost(boost)
	return q
}

func fieldPrefix(tok, field string, boost float64) bleveQuery.Query {
	q := bleve.NewPrefixQuery(tok)
	q.SetField(field)
	q.SetBoost(boost)
	return q
}

func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) >= 2 {
			out = append(out, f)
		}
	}
	return out
}
