package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samvad-hq/geekfeed/internal/domain"
	"github.com/samvad-hq/geekfeed/pkg/feedparser"
	"github.com/samvad-hq/geekfeed/pkg/httpclient"
)

// Provider types served by type-level fetchers.
const (
	ProviderTypeRSS     = domain.SourceTypeRSS
	ProviderTypeSitemap = domain.SourceTypeSitemap
	ProviderTypeLocal   = domain.SourceTypeLocal
)

const (
	rssUserAgent = "GeekFeedBot/1.0 (+https://geekageddon.com)"
	rssAccept    = "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8"
)

// rssFetcher implements Fetcher for any RSS or Atom feed in the catalog.
type rssFetcher struct {
	deps Deps
}

func NewRSSFetcher(deps Deps) Fetcher {
	return &rssFetcher{deps: deps.withDefaults()}
}

func (f *rssFetcher) ID() string {
	return ProviderTypeRSS
}

func (f *rssFetcher) Fetch(ctx context.Context, cfg Provider, limit int) ([]domain.RawItem, error) {
	if !strings.EqualFold(cfg.Type, ProviderTypeRSS) {
		return nil, fmt.Errorf("rss fetcher received incompatible provider type %q", cfg.Type)
	}
	if strings.TrimSpace(cfg.SourceURL) == "" {
		return nil, fmt.Errorf("provider %q source_url is empty", cfg.ID)
	}

	headers := mergeHeaders(map[string]string{
		"User-Agent": rssUserAgent,
		"Accept":     rssAccept,
	}, Headers(cfg))

	body, err := httpclient.FetchText(ctx, f.deps.Client, cfg.SourceURL, httpclient.Options{
		Headers: headers,
		Timeout: cfg.Timeout(f.deps.Timeout),
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s feed: %w", cfg.ID, err)
	}

	feed, err := feedparser.Parse(string(body), limit)
	if err != nil {
		return nil, &FeedError{ProviderID: cfg.ID, Err: err}
	}

	items := make([]domain.RawItem, 0, len(feed.Items))
	for i, entry := range feed.Items {
		items = append(items, domain.RawItem{
			URL:         entry.Link,
			Title:       entry.Title,
			Summary:     entry.Summary,
			RawSummary:  entry.RawSummary,
			Author:      entry.Author,
			PublishedAt: entry.PublishedAt,
			Categories:  entry.Categories,
			Tags:        append(append([]string{}, entry.Categories...), cfg.DefaultTags...),
			Badges:      cfg.DefaultBadges,
			ImageURL:    firstNonEmpty(entry.ImageURL, firstImage(entry.RawSummary)),
			Language:    cfg.Language,
			Extras: map[string]any{
				"feedUrl":  cfg.SourceURL,
				"position": i,
			},
			Raw: entry,
		})
	}
	return items, nil
}

// FeedError wraps a document the feed parser rejected.
type FeedError struct {
	ProviderID string
	Err        error
}

func (e *FeedError) Error() string {
	return fmt.Sprintf("parse %s feed: %v", e.ProviderID, e.Err)
}

func (e *FeedError) Unwrap() error { return e.Err }
func (e *FeedError) Code() string  { return httpclient.CodeParse }

// firstImage returns the src of the first <img> in an HTML fragment.
func firstImage(html string) string {
	if !strings.Contains(strings.ToLower(html), "<img") {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	if src, ok := doc.Find("img[src]").First().Attr("src"); ok {
		return strings.TrimSpace(src)
	}
	return ""
}
