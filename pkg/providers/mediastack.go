package providers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/samvad-hq/geekfeed/internal/domain"
	"github.com/samvad-hq/geekfeed/pkg/httpclient"
)

const ProviderIDMediastack = "mediastack-tech"

type mediastackArticle struct {
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	Image       string `json:"image"`
	Category    string `json:"category"`
	Language    string `json:"language"`
	Country     string `json:"country"`
	PublishedAt string `json:"published_at"`
}

type mediastackResponse struct {
	Data  []mediastackArticle `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// mediastackFetcher reads the mediastack news endpoint.
type mediastackFetcher struct {
	deps Deps
}

func NewMediastackFetcher(deps Deps) Fetcher {
	return &mediastackFetcher{deps: deps.withDefaults()}
}

func (f *mediastackFetcher) ID() string { return ProviderIDMediastack }

func (f *mediastackFetcher) Fetch(ctx context.Context, cfg Provider, limit int) ([]domain.RawItem, error) {
	apiKey, err := Credential(cfg, f.deps.Lookup)
	if err != nil {
		return nil, err
	}

	var resp mediastackResponse
	err = fetchJSON(ctx, f.deps, cfg, httpclient.Options{
		Query: map[string]any{
			"access_key": apiKey,
			"categories": ConfigString(cfg, "categories", "technology"),
			"languages":  firstNonEmpty(cfg.Language, "en"),
			"limit":      clampFetch(limit*2, limit, 100),
			"sort":       "published_desc",
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", cfg.ID, err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("fetch %s: api error %s: %s", cfg.ID, resp.Error.Code, resp.Error.Message)
	}

	articles := resp.Data
	if len(articles) > limit {
		articles = articles[:limit]
	}

	items := make([]domain.RawItem, 0, len(articles))
	for i, a := range articles {
		items = append(items, domain.RawItem{
			ID:          firstNonEmpty(a.URL, a.Title, strconv.Itoa(i)),
			URL:         a.URL,
			Title:       a.Title,
			Summary:     a.Description,
			Author:      a.Author,
			PublishedAt: a.PublishedAt,
			Categories:  nonEmpty(a.Category),
			Badges:      nonEmpty(a.Source),
			ImageURL:    a.Image,
			Language:    a.Language,
			Extras: map[string]any{
				"source":   a.Source,
				"country":  a.Country,
				"position": i,
			},
			Raw: a,
		})
	}
	return items, nil
}
