package catalog

import (
	"strconv"
	"strings"
	"time"
)

// ItemSummary is one catalog entry as returned by search.
type ItemSummary struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Author        string   `json:"author"`
	Status        string   `json:"status"`
	ContentRating string   `json:"content_rating"`
	Tags          []string `json:"tags"`
	CoverFile     string   `json:"cover_file"`
	Year          int      `json:"year"`
}

// SearchPage is one page of search results.
type SearchPage struct {
	Items []ItemSummary
	Page  int
	Total int
}

// Pages returns how many result pages exist for the query.
func (p SearchPage) Pages() int {
	if p.Total <= 0 {
		return 1
	}
	return (p.Total + SearchPageSize - 1) / SearchPageSize
}

// Chapter is one readable unit of an item.
type Chapter struct {
	ID         string    `json:"id"`
	ItemID     string    `json:"item_id"`
	Title      string    `json:"title"`
	Volume     string    `json:"volume"`
	Number     string    `json:"number"`
	Language   string    `json:"language"`
	Pages      int       `json:"pages"`
	Group      string    `json:"group"`
	ReadableAt time.Time `json:"readable_at"`
}

// Label is the human readable chapter heading.
func (c Chapter) Label() string {
	var b strings.Builder
	if c.Volume != "" {
		b.WriteString("Vol. " + c.Volume + " ")
	}
	if c.Number != "" {
		b.WriteString("Ch. " + c.Number)
	} else {
		b.WriteString("Oneshot")
	}
	if t := strings.TrimSpace(c.Title); t != "" {
		b.WriteString(" - " + t)
	}
	return b.String()
}

// ChapterFeed is an ordered list of chapters for one item.
type ChapterFeed struct {
	ItemID   string
	Chapters []Chapter
	Total    int
	Language Language
	Order    Order
}

// PageSet describes where a chapter's images live. Low and Full are the
// bandwidth-saving and full-fidelity file name lists.
type PageSet struct {
	ChapterID string
	BaseURL   string
	Hash      string
	Low       []string
	Full      []string
}

// Fidelity selects one of the two image variants.
type Fidelity int

const (
	LowFidelity Fidelity = iota
	FullFidelity
)

func (f Fidelity) String() string {
	if f == LowFidelity {
		return "data-saver"
	}
	return "data"
}

// Endpoint is the URL prefix that a page file name is appended to.
func (s PageSet) Endpoint(f Fidelity) string {
	return strings.TrimRight(s.BaseURL, "/") + "/" + f.String() + "/" + s.Hash
}

// Order sorts a chapter feed.
type Order int

const (
	Ascending Order = iota
	Descending
)

func (o Order) String() string {
	if o == Descending {
		return "desc"
	}
	return "asc"
}

// Toggle flips the sort direction.
func (o Order) Toggle() Order {
	if o == Descending {
		return Ascending
	}
	return Descending
}

// Wire representations.

type localized map[string]string

func (l localized) pick(lang string) string {
	if v, ok := l[lang]; ok && v != "" {
		return v
	}
	if v, ok := l["en"]; ok && v != "" {
		return v
	}
	for _, v := range l {
		if v != "" {
			return v
		}
	}
	return ""
}

type relationship struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Attributes *struct {
		FileName string `json:"fileName"`
		Name     string `json:"name"`
	} `json:"attributes"`
}

type mangaData struct {
	ID         string `json:"id"`
	Attributes struct {
		Title         localized   `json:"title"`
		AltTitles     []localized `json:"altTitles"`
		Description   localized   `json:"description"`
		Status        string      `json:"status"`
		ContentRating string      `json:"contentRating"`
		Year          *int        `json:"year"`
		Tags          []struct {
			Attributes struct {
				Name localized `json:"name"`
			} `json:"attributes"`
		} `json:"tags"`
	} `json:"attributes"`
	Relationships []relationship `json:"relationships"`
}

type searchResponse struct {
	Result string      `json:"result"`
	Data   []mangaData `json:"data"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
	Total  int         `json:"total"`
}

type chapterData struct {
	ID         string `json:"id"`
	Attributes struct {
		Volume             *string   `json:"volume"`
		Chapter            *string   `json:"chapter"`
		Title              *string   `json:"title"`
		TranslatedLanguage string    `json:"translatedLanguage"`
		Pages              int       `json:"pages"`
		ReadableAt         time.Time `json:"readableAt"`
	} `json:"attributes"`
	Relationships []relationship `json:"relationships"`
}

type chapterFeedResponse struct {
	Result string        `json:"result"`
	Data   []chapterData `json:"data"`
	Total  int           `json:"total"`
}

type atHomeResponse struct {
	Result  string `json:"result"`
	BaseURL string `json:"baseUrl"`
	Chapter struct {
		Hash      string   `json:"hash"`
		Data      []string `json:"data"`
		DataSaver []string `json:"dataSaver"`
	} `json:"chapter"`
}

func (m mangaData) summary(lang string) ItemSummary {
	item := ItemSummary{
		ID:            m.ID,
		Title:         m.Attributes.Title.pick(lang),
		Description:   m.Attributes.Description.pick(lang),
		Status:        m.Attributes.Status,
		ContentRating: m.Attributes.ContentRating,
	}
	if item.Title == "" {
		for _, alt := range m.Attributes.AltTitles {
			if t := alt.pick(lang); t != "" {
				item.Title = t
				break
			}
		}
	}
	if m.Attributes.Year != nil {
		item.Year = *m.Attributes.Year
	}
	for _, tag := range m.Attributes.Tags {
		if name := tag.Attributes.Name.pick(lang); name != "" {
			item.Tags = append(item.Tags, name)
		}
	}
	for _, rel := range m.Relationships {
		if rel.Attributes == nil {
			continue
		}
		switch rel.Type {
		case "cover_art":
			item.CoverFile = rel.Attributes.FileName
		case "author":
			item.Author = rel.Attributes.Name
		}
	}
	return item
}

func (c chapterData) chapter(itemID string) Chapter {
	ch := Chapter{
		ID:         c.ID,
		ItemID:     itemID,
		Language:   c.Attributes.TranslatedLanguage,
		Pages:      c.Attributes.Pages,
		ReadableAt: c.Attributes.ReadableAt,
	}
	if c.Attributes.Volume != nil {
		ch.Volume = *c.Attributes.Volume
	}
	if c.Attributes.Chapter != nil {
		ch.Number = *c.Attributes.Chapter
	}
	if c.Attributes.Title != nil {
		ch.Title = *c.Attributes.Title
	}
	for _, rel := range c.Relationships {
		if rel.Type == "scanlation_group" && rel.Attributes != nil {
			ch.Group = rel.Attributes.Name
		}
	}
	return ch
}

func offsetFor(page, size int) string {
	if page < 1 {
		page = 1
	}
	return strconv.Itoa((page - 1) * size)
}
