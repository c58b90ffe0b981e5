package providers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/samvad-hq/geekfeed/internal/domain"
	"github.com/samvad-hq/geekfeed/pkg/httpclient"
)

const ProviderIDNewsAPI = "newsapi-tech"

type newsAPIArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
}

type newsAPIResponse struct {
	Status   string           `json:"status"`
	Message  string           `json:"message"`
	Articles []newsAPIArticle `json:"articles"`
}

// newsAPIFetcher reads NewsAPI top headlines for the technology category.
type newsAPIFetcher struct {
	deps Deps
}

func NewNewsAPIFetcher(deps Deps) Fetcher {
	return &newsAPIFetcher{deps: deps.withDefaults()}
}

func (f *newsAPIFetcher) ID() string { return ProviderIDNewsAPI }

func (f *newsAPIFetcher) Fetch(ctx context.Context, cfg Provider, limit int) ([]domain.RawItem, error) {
	apiKey, err := Credential(cfg, f.deps.Lookup)
	if err != nil {
		return nil, err
	}

	var resp newsAPIResponse
	err = fetchJSON(ctx, f.deps, cfg, httpclient.Options{
		Query: map[string]any{
			"category": ConfigString(cfg, "category", "technology"),
			"language": firstNonEmpty(cfg.Language, "en"),
			"pageSize": clampFetch(limit*2, limit, 100),
			"page":     1,
		},
		Headers: map[string]string{"X-Api-Key": apiKey},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", cfg.ID, err)
	}
	if resp.Status == "error" {
		return nil, fmt.Errorf("fetch %s: api error: %s", cfg.ID, resp.Message)
	}

	articles := resp.Articles
	if len(articles) > limit {
		articles = articles[:limit]
	}

	items := make([]domain.RawItem, 0, len(articles))
	for i, a := range articles {
		items = append(items, domain.RawItem{
			ID:          firstNonEmpty(a.URL, a.Title, strconv.Itoa(i)),
			URL:         a.URL,
			Title:       a.Title,
			Summary:     firstNonEmpty(a.Description, a.Content),
			Author:      a.Author,
			PublishedAt: a.PublishedAt,
			Categories:  nonEmpty(a.Source.Name),
			Badges:      nonEmpty(a.Source.Name),
			ImageURL:    a.URLToImage,
			Language:    firstNonEmpty(cfg.Language, "en"),
			Extras: map[string]any{
				"sourceName": a.Source.Name,
				"position":   i,
			},
			Raw: a,
		})
	}
	return items, nil
}
