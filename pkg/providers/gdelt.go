package providers

import (
	"context"
	"fmt"

	"github.com/samvad-hq/geekfeed/internal/domain"
	"github.com/samvad-hq/geekfeed/pkg/httpclient"
)

const (
	ProviderIDGDELT   = "gdelt"
	defaultGDELTQuery = `technology OR tech OR "artificial intelligence" OR "software"`
)

type gdeltArticle struct {
	URL                string   `json:"url"`
	SourceURL          string   `json:"sourceurl"`
	DocumentIdentifier string   `json:"documentidentifier"`
	Title              string   `json:"title"`
	Excerpt            string   `json:"excerpt"`
	SeenDate           string   `json:"seendate"`
	Date               string   `json:"date"`
	SocialImage        string   `json:"socialimage"`
	Domain             string   `json:"domain"`
	Language           string   `json:"language"`
	SourceCountry      string   `json:"sourcecountry"`
	Taxonomy           string   `json:"taxonomy"`
	SocialShares       *float64 `json:"socialshares"`
	Relevance          *float64 `json:"relevance"`
}

type gdeltResponse struct {
	Articles []gdeltArticle `json:"articles"`
}

// gdeltFetcher reads the GDELT 2.0 DOC API article list.
type gdeltFetcher struct {
	deps Deps
}

func NewGDELTFetcher(deps Deps) Fetcher {
	return &gdeltFetcher{deps: deps.withDefaults()}
}

func (f *gdeltFetcher) ID() string { return ProviderIDGDELT }

func (f *gdeltFetcher) Fetch(ctx context.Context, cfg Provider, limit int) ([]domain.RawItem, error) {
	var resp gdeltResponse
	err := fetchJSON(ctx, f.deps, cfg, httpclient.Options{
		Query: map[string]any{
			"query":      ConfigString(cfg, "query", defaultGDELTQuery),
			"mode":       "artlist",
			"format":     "json",
			"maxrecords": clampFetch(limit, 10, 250),
			"sort":       "datedesc",
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", cfg.ID, err)
	}

	articles := resp.Articles
	if len(articles) > limit {
		articles = articles[:limit]
	}

	items := make([]domain.RawItem, 0, len(articles))
	for i, a := range articles {
		var tags []string
		if a.Taxonomy != "" {
			tags = []string{a.Taxonomy}
		}
		items = append(items, domain.RawItem{
			ID:          firstNonEmpty(a.DocumentIdentifier, a.URL),
			URL:         firstNonEmpty(a.URL, a.SourceURL),
			Title:       a.Title,
			Summary:     firstNonEmpty(a.Excerpt, a.Title),
			PublishedAt: firstNonEmpty(a.SeenDate, a.Date),
			Categories:  nonEmpty(a.Domain, a.SourceCountry, a.Language),
			Tags:        tags,
			Badges:      nonEmpty(a.Language, a.SourceCountry),
			ImageURL:    a.SocialImage,
			Language:    a.Language,
			Score:       a.SocialShares,
			Extras: map[string]any{
				"domain":    a.Domain,
				"sourceUrl": a.SourceURL,
				"relevance": a.Relevance,
				"position":  i,
			},
			Raw: a,
		})
	}
	return items, nil
}
