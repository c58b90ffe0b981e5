package providers

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/samvad-hq/geekfeed/internal/domain"
	"github.com/samvad-hq/geekfeed/pkg/httpclient"
)

type googleNewsSitemap struct {
	URLs []googleNewsURL `xml:"url"`
}

type googleNewsURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod"`
	News    struct {
		Title           string `xml:"title"`
		PublicationDate string `xml:"publication_date"`
		Keywords        string `xml:"keywords"`
		Publication     struct {
			Name     string `xml:"name"`
			Language string `xml:"language"`
		} `xml:"publication"`
	} `xml:"news"`
	Image struct {
		Loc string `xml:"loc"`
	} `xml:"image"`
}

func parseGoogleNewsSitemap(data []byte) ([]googleNewsURL, error) {
	var sitemap googleNewsSitemap
	if err := xml.Unmarshal(data, &sitemap); err != nil {
		return nil, err
	}
	return sitemap.URLs, nil
}

// sitemapFetcher implements Fetcher for Google News sitemaps.
type sitemapFetcher struct {
	deps Deps
}

func NewSitemapFetcher(deps Deps) Fetcher {
	return &sitemapFetcher{deps: deps.withDefaults()}
}

func (f *sitemapFetcher) ID() string {
	return ProviderTypeSitemap
}

func (f *sitemapFetcher) Fetch(ctx context.Context, cfg Provider, limit int) ([]domain.RawItem, error) {
	if !strings.EqualFold(cfg.Type, ProviderTypeSitemap) {
		return nil, fmt.Errorf("sitemap fetcher received incompatible provider type %q", cfg.Type)
	}
	if strings.TrimSpace(cfg.SourceURL) == "" {
		return nil, fmt.Errorf("provider %q source_url is empty", cfg.ID)
	}

	raw, err := httpclient.FetchText(ctx, f.deps.Client, cfg.SourceURL, httpclient.Options{
		Headers: Headers(cfg),
		Timeout: cfg.Timeout(f.deps.Timeout),
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s sitemap: %w", cfg.ID, err)
	}

	urls, err := parseGoogleNewsSitemap(raw)
	if err != nil {
		return nil, &FeedError{ProviderID: cfg.ID, Err: fmt.Errorf("decode google news sitemap: %w", err)}
	}
	return buildItemsFromSitemap(cfg, urls, limit), nil
}

func buildItemsFromSitemap(cfg Provider, urls []googleNewsURL, limit int) []domain.RawItem {
	items := make([]domain.RawItem, 0, min(len(urls), limit))
	for _, entry := range urls {
		if len(items) == limit {
			break
		}
		loc := strings.TrimSpace(entry.Loc)
		if loc == "" {
			continue
		}

		var keywords []string
		for _, k := range strings.Split(entry.News.Keywords, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keywords = append(keywords, k)
			}
		}

		items = append(items, domain.RawItem{
			URL:         loc,
			Title:       strings.TrimSpace(entry.News.Title),
			PublishedAt: firstNonEmpty(entry.News.PublicationDate, entry.LastMod),
			Categories:  keywords,
			Tags:        cfg.DefaultTags,
			Badges:      nonEmpty(append(append([]string{}, cfg.DefaultBadges...), entry.News.Publication.Name)...),
			ImageURL:    strings.TrimSpace(entry.Image.Loc),
			Language:    firstNonEmpty(entry.News.Publication.Language, cfg.Language),
			Extras: map[string]any{
				"sitemapUrl": cfg.SourceURL,
				"position":   len(items),
			},
			Raw: entry,
		})
	}
	return items
}
