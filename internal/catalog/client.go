// Package catalog talks to the remote manga catalog: search, item covers,
// chapter feeds, chapter page sets and page images.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pders01/tankobon/internal/debuglog"
	"github.com/pders01/tankobon/internal/failure"
)

const (
	// SearchPageSize is the number of items per search page.
	SearchPageSize = 32
	// ChapterPageSize is the number of chapters requested per feed page.
	ChapterPageSize = 50

	defaultAPIBaseURL   = "https://api.mangadex.org"
	defaultCoverBaseURL = "https://uploads.mangadex.org/covers"
	defaultUserAgent    = "tankobon/1.0"
	defaultTimeout      = 20 * time.Second
	maxImageBytes       = 20 << 20
)

// Fetcher is the set of catalog operations the UI depends on.
type Fetcher interface {
	Search(ctx context.Context, term string, page int) (SearchPage, error)
	Cover(ctx context.Context, itemID, fileName string) ([]byte, error)
	Chapters(ctx context.Context, itemID string, page int, lang Language, order Order) (ChapterFeed, error)
	PageSet(ctx context.Context, chapterID string) (PageSet, error)
	PageBytes(ctx context.Context, endpoint, fileName string) ([]byte, error)
}

var _ Fetcher = (*Client)(nil)

// Cache stores raw image bytes keyed by their URL.
type Cache interface {
	Get(key string) ([]byte, bool)
	Put(key string, data []byte) error
}

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	APIBaseURL   string
	CoverBaseURL string
	UserAgent    string
	Timeout      time.Duration
	HTTPClient   *http.Client
	Cache        Cache
}

// Client is safe for concurrent use and is shared by every page.
type Client struct {
	apiBase   *url.URL
	coverBase string
	userAgent string
	http      *http.Client
	cache     Cache
}

// NewClient builds a Client from opts.
func NewClient(opts Options) (*Client, error) {
	apiBase := strings.TrimSpace(opts.APIBaseURL)
	if apiBase == "" {
		apiBase = defaultAPIBaseURL
	}
	base, err := url.Parse(strings.TrimRight(apiBase, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api base url %q: %w", opts.APIBaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("api base url %q must use http or https", opts.APIBaseURL)
	}

	coverBase := strings.TrimRight(strings.TrimSpace(opts.CoverBaseURL), "/")
	if coverBase == "" {
		coverBase = defaultCoverBaseURL
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		apiBase:   base,
		coverBase: coverBase,
		userAgent: userAgent,
		http:      httpClient,
		cache:     opts.Cache,
	}, nil
}

// Search finds items whose title matches term. An empty term lists the
// catalog. Pages are 1-based.
func (c *Client) Search(ctx context.Context, term string, page int) (SearchPage, error) {
	if page < 1 {
		page = 1
	}
	values := url.Values{}
	if term = strings.TrimSpace(term); term != "" {
		values.Set("title", term)
	}
	values.Set("limit", fmt.Sprint(SearchPageSize))
	values.Set("offset", offsetFor(page, SearchPageSize))
	values.Add("includes[]", "cover_art")
	values.Add("includes[]", "author")
	for _, rating := range []string{"safe", "suggestive", "erotica"} {
		values.Add("contentRating[]", rating)
	}
	values.Set("includedTagsMode", "AND")
	values.Set("excludedTagsMode", "OR")

	var payload searchResponse
	if err := c.getJSON(ctx, "/manga", values, &payload); err != nil {
		return SearchPage{}, err
	}

	out := SearchPage{Page: page, Total: payload.Total, Items: make([]ItemSummary, 0, len(payload.Data))}
	for _, m := range payload.Data {
		out.Items = append(out.Items, m.summary("en"))
	}
	return out, nil
}

// Cover downloads the cover image of an item.
func (c *Client) Cover(ctx context.Context, itemID, fileName string) ([]byte, error) {
	if strings.TrimSpace(fileName) == "" {
		return nil, fmt.Errorf("cover for %s: %w", itemID, failure.ErrNotFound)
	}
	return c.getBytes(ctx, c.coverBase+"/"+url.PathEscape(itemID)+"/"+url.PathEscape(fileName)+".512.jpg")
}

// Chapters lists one page of an item's chapters in the given language.
func (c *Client) Chapters(ctx context.Context, itemID string, page int, lang Language, order Order) (ChapterFeed, error) {
	if itemID == "" {
		return ChapterFeed{}, fmt.Errorf("chapters: item id required")
	}
	values := url.Values{}
	values.Set("limit", fmt.Sprint(ChapterPageSize))
	values.Set("offset", offsetFor(page, ChapterPageSize))
	values.Set("order[volume]", order.String())
	values.Set("order[chapter]", order.String())
	values.Add("translatedLanguage[]", lang.Code)
	values.Add("includes[]", "scanlation_group")

	var payload chapterFeedResponse
	if err := c.getJSON(ctx, "/manga/"+url.PathEscape(itemID)+"/feed", values, &payload); err != nil {
		return ChapterFeed{}, err
	}

	feed := ChapterFeed{ItemID: itemID, Total: payload.Total, Language: lang, Order: order}
	for _, ch := range payload.Data {
		feed.Chapters = append(feed.Chapters, ch.chapter(itemID))
	}
	return feed, nil
}

// PageSet resolves the image server and file names for a chapter.
func (c *Client) PageSet(ctx context.Context, chapterID string) (PageSet, error) {
	var payload atHomeResponse
	if err := c.getJSON(ctx, "/at-home/server/"+url.PathEscape(chapterID), nil, &payload); err != nil {
		return PageSet{}, err
	}
	if payload.BaseURL == "" || payload.Chapter.Hash == "" {
		return PageSet{}, fmt.Errorf("page set %s: %w: missing base url or hash", chapterID, failure.ErrDecode)
	}
	if len(payload.Chapter.Data) == 0 && len(payload.Chapter.DataSaver) == 0 {
		return PageSet{}, fmt.Errorf("page set %s: %w", chapterID, failure.ErrNotFound)
	}
	return PageSet{
		ChapterID: chapterID,
		BaseURL:   payload.BaseURL,
		Hash:      payload.Chapter.Hash,
		Low:       payload.Chapter.DataSaver,
		Full:      payload.Chapter.Data,
	}, nil
}

// PageBytes downloads one page image from endpoint.
func (c *Client) PageBytes(ctx context.Context, endpoint, fileName string) ([]byte, error) {
	if fileName == "" {
		return nil, fmt.Errorf("page: %w", failure.ErrNotFound)
	}
	return c.getBytes(ctx, strings.TrimRight(endpoint, "/")+"/"+url.PathEscape(fileName))
}

func (c *Client) getJSON(ctx context.Context, path string, values url.Values, dest any) error {
	rel := &url.URL{Path: c.apiBase.Path + path}
	if values != nil {
		rel.RawQuery = values.Encode()
	}
	reqURL := c.apiBase.ResolveReference(rel)

	resp, err := c.do(ctx, reqURL.String(), "application/json")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%s: %w: %v", path, failure.ErrDecode, err)
	}
	return nil
}

func (c *Client) getBytes(ctx context.Context, rawURL string) ([]byte, error) {
	if c.cache != nil {
		if data, ok := c.cache.Get(rawURL); ok {
			return data, nil
		}
	}

	resp, err := c.do(ctx, rawURL, "image/*")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("image %s: %w", rawURL, failure.ErrNotFound)
	}

	if c.cache != nil {
		if err := c.cache.Put(rawURL, data); err != nil {
			debuglog.Warnf("cache put %s: %v", rawURL, err)
		}
	}
	return data, nil
}

func (c *Client) do(ctx context.Context, rawURL, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	debuglog.Debugf("GET %s -> %d (%s)", rawURL, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_ = resp.Body.Close()
		return nil, fmt.Errorf("GET %s: %w", rawURL, failure.ErrNotFound)
	case resp.StatusCode >= 400:
		_ = resp.Body.Close()
		return nil, fmt.Errorf("GET %s returned status %d", rawURL, resp.StatusCode)
	}
	return resp, nil
}
