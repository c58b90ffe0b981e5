// Package feedparser extracts entries from RSS and Atom documents without a
// strict XML parser, so feeds with broken markup still yield what they can.
package feedparser

import (
	"errors"
	"strings"
)

// Feed formats reported in Result.Format.
const (
	FormatRSS  = "rss"
	FormatAtom = "atom"
)

// DefaultLimit applies when Parse is called with a non-positive limit.
const DefaultLimit = 10

var (
	ErrEmptyFeed = errors.New("feed document is empty")
	ErrNotAFeed  = errors.New("document is not an RSS or Atom feed")
)

// Entry is one feed item. Empty strings mean the field was absent.
type Entry struct {
	Title       string   `json:"title"`
	Link        string   `json:"link"`
	Summary     string   `json:"summary"`
	RawSummary  string   `json:"rawSummary"`
	PublishedAt string   `json:"publishedAt"`
	Categories  []string `json:"categories"`
	Author      string   `json:"author"`
	ImageURL    string   `json:"imageUrl"`
}

// Result is the parse output.
type Result struct {
	Format string  `json:"format"`
	Items  []Entry `json:"items"`
}

// Parse scans at most 2*limit entry blocks and returns at most limit entries.
// Blocks with neither a title nor a link are dropped. A trailing block with no
// closing tag is ignored.
func Parse(raw string, limit int) (Result, error) {
	if strings.TrimSpace(raw) == "" {
		return Result{}, ErrEmptyFeed
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	doc := newScanner(raw)
	format := FormatRSS
	blockTag := "item"
	if doc.has("entry") || doc.has("feed") {
		format = FormatAtom
		blockTag = "entry"
	}

	blocks := doc.elements(blockTag, limit*2)
	if len(blocks) == 0 && !looksLikeFeed(doc) {
		return Result{}, ErrNotAFeed
	}

	items := make([]Entry, 0, min(len(blocks), limit))
	for _, block := range blocks {
		entry := parseBlock(block.inner, format)
		if entry.Title == "" && entry.Link == "" {
			continue
		}
		items = append(items, entry)
		if len(items) == limit {
			break
		}
	}

	return Result{Format: format, Items: items}, nil
}

func looksLikeFeed(doc scanner) bool {
	for _, root := range []string{"rss", "feed", "rdf:rdf", "channel"} {
		if doc.has(root) {
			return true
		}
	}
	return false
}

func parseBlock(inner, format string) Entry {
	b := newScanner(inner)

	rawSummary := firstInner(b, "description", "summary")
	if strings.TrimSpace(stripCDATA(rawSummary)) == "" {
		rawSummary = firstInner(b, "content", "content:encoded")
	}
	rawSummary = cleanHTML(rawSummary)

	entry := Entry{
		Title:       cleanText(firstInner(b, "title")),
		Summary:     collapseSpace(stripTags(rawSummary)),
		RawSummary:  rawSummary,
		PublishedAt: cleanText(firstInner(b, "pubdate", "updated", "published", "dc:date")),
		Categories:  categories(b),
		Author:      author(b),
		ImageURL:    mediaImage(b),
	}

	if format == FormatAtom {
		entry.Link = atomLink(b)
	} else {
		entry.Link = rssLink(b)
	}
	return entry
}

// firstInner returns the inner text of the first named element with a
// non-blank body.
func firstInner(b scanner, names ...string) string {
	for _, name := range names {
		if el, ok := b.element(0, name); ok && strings.TrimSpace(el.inner) != "" {
			return el.inner
		}
	}
	return ""
}

func rssLink(b scanner) string {
	if link := cleanText(firstInner(b, "link")); link != "" {
		return link
	}
	// some feeds only carry the permalink in guid
	if guid := cleanText(firstInner(b, "guid")); strings.HasPrefix(guid, "http://") || strings.HasPrefix(guid, "https://") {
		return guid
	}
	return ""
}

func atomLink(b scanner) string {
	links := b.openTags("link")
	var fallback string
	for _, t := range links {
		attrs := parseAttrs(t.attrs)
		href := strings.TrimSpace(attrs["href"])
		if href == "" {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(attrs["rel"]), "alternate") {
			return href
		}
		if fallback == "" {
			fallback = href
		}
	}
	if fallback != "" {
		return fallback
	}
	return cleanText(firstInner(b, "link"))
}

func categories(b scanner) []string {
	var out []string
	seen := map[string]struct{}{}
	pos := 0
	for {
		t, ok := b.openTag(pos, "category")
		if !ok {
			break
		}
		pos = t.end

		attrs := parseAttrs(t.attrs)
		value := strings.TrimSpace(attrs["term"])
		if value == "" {
			value = strings.TrimSpace(attrs["label"])
		}
		if value == "" && !t.selfClosing {
			if el, ok := b.element(t.start, "category"); ok {
				value = cleanText(el.inner)
				pos = el.next
			}
		}
		if value == "" {
			continue
		}
		key := strings.ToLower(value)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, value)
	}
	return out
}

func author(b scanner) string {
	if el, ok := b.element(0, "author"); ok {
		if name := cleanText(firstInner(newScanner(el.inner), "name")); name != "" {
			return name
		}
	}
	return cleanText(firstInner(b, "dc:creator", "creator", "author"))
}

// mediaImage reads media RSS thumbnails and image enclosures.
func mediaImage(b scanner) string {
	for _, name := range []string{"media:thumbnail", "media:content", "enclosure"} {
		for _, t := range b.openTags(name) {
			attrs := parseAttrs(t.attrs)
			u := strings.TrimSpace(attrs["url"])
			if u == "" {
				continue
			}
			typ := strings.ToLower(attrs["type"])
			switch name {
			case "enclosure":
				if !strings.HasPrefix(typ, "image/") {
					continue
				}
			case "media:content":
				if typ != "" && !strings.HasPrefix(typ, "image/") && attrs["medium"] != "image" {
					continue
				}
			}
			return u
		}
	}
	return ""
}
