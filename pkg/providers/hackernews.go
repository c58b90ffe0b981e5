package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/samvad-hq/geekfeed/internal/domain"
	"github.com/samvad-hq/geekfeed/pkg/httpclient"
)

const ProviderIDHackerNewsSearch = "hacker-news-search"

type hnHit struct {
	ObjectID    string   `json:"objectID"`
	Title       string   `json:"title"`
	StoryTitle  string   `json:"story_title"`
	URL         string   `json:"url"`
	StoryText   string   `json:"story_text"`
	CommentText string   `json:"comment_text"`
	Author      string   `json:"author"`
	CreatedAt   string   `json:"created_at"`
	Points      *int     `json:"points"`
	NumComments *int     `json:"num_comments"`
	Tags        []string `json:"_tags"`
}

type hnResponse struct {
	Hits []hnHit `json:"hits"`
}

// hackerNewsSearchFetcher queries the Algolia HN search API.
type hackerNewsSearchFetcher struct {
	deps Deps
}

func NewHackerNewsSearchFetcher(deps Deps) Fetcher {
	return &hackerNewsSearchFetcher{deps: deps.withDefaults()}
}

func (f *hackerNewsSearchFetcher) ID() string { return ProviderIDHackerNewsSearch }

func (f *hackerNewsSearchFetcher) Fetch(ctx context.Context, cfg Provider, limit int) ([]domain.RawItem, error) {
	var resp hnResponse
	err := fetchJSON(ctx, f.deps, cfg, httpclient.Options{
		Query: map[string]any{
			"tags":           "story",
			"query":          ConfigString(cfg, "query", "technology"),
			"hitsPerPage":    clampFetch(limit, 20, 0),
			"numericFilters": fmt.Sprintf("points>%d", ConfigInt(cfg, "min_points", 10)),
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", cfg.ID, err)
	}

	hits := resp.Hits
	if len(hits) > limit {
		hits = hits[:limit]
	}

	items := make([]domain.RawItem, 0, len(hits))
	for i, hit := range hits {
		link := hit.URL
		if link == "" {
			link = "https://news.ycombinator.com/item?id=" + hit.ObjectID
		}

		var categories []string
		tags := make([]string, 0, len(hit.Tags))
		for _, t := range hit.Tags {
			if t == "show_hn" {
				categories = append(categories, "Show HN")
			}
			if t != "" && !strings.HasPrefix(t, "author_") {
				tags = append(tags, t)
			}
		}

		var badges []string
		var score *float64
		if hit.Points != nil {
			badges = append(badges, fmt.Sprintf("%d points", *hit.Points))
			s := float64(*hit.Points)
			score = &s
		}
		if hit.NumComments != nil {
			badges = append(badges, fmt.Sprintf("%d comments", *hit.NumComments))
		}

		items = append(items, domain.RawItem{
			ID:          hit.ObjectID,
			URL:         link,
			Title:       firstNonEmpty(hit.Title, hit.StoryTitle),
			Summary:     firstNonEmpty(hit.StoryText, hit.CommentText, hit.Title),
			PublishedAt: hit.CreatedAt,
			Categories:  categories,
			Tags:        tags,
			Badges:      badges,
			Language:    firstNonEmpty(cfg.Language, "en"),
			Score:       score,
			Extras: map[string]any{
				"author":       hit.Author,
				"commentCount": hit.NumComments,
				"position":     i,
			},
			Raw: hit,
		})
	}
	return items, nil
}
