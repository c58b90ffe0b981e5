package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/samvad-hq/geekfeed/internal/domain"
	"github.com/samvad-hq/geekfeed/pkg/httpclient"
)

const ProviderIDProductHunt = "product-hunt"

const productHuntQuery = `
query LatestTechPosts($first: Int!) {
  posts(order: RANKING, first: $first) {
    edges {
      node {
        id
        name
        tagline
        url
        slug
        votesCount
        featuredAt
        createdAt
        thumbnail { url }
        topics(first: 10) { edges { node { name } } }
        makers(first: 5) { edges { node { name } } }
      }
    }
  }
}`

type phNameConnection struct {
	Edges []struct {
		Node *struct {
			Name string `json:"name"`
		} `json:"node"`
	} `json:"edges"`
}

func (c phNameConnection) names() []string {
	out := make([]string, 0, len(c.Edges))
	for _, e := range c.Edges {
		if e.Node != nil && strings.TrimSpace(e.Node.Name) != "" {
			out = append(out, e.Node.Name)
		}
	}
	return out
}

type phPost struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Tagline    string `json:"tagline"`
	URL        string `json:"url"`
	Slug       string `json:"slug"`
	VotesCount *int   `json:"votesCount"`
	FeaturedAt string `json:"featuredAt"`
	CreatedAt  string `json:"createdAt"`
	Thumbnail  *struct {
		URL string `json:"url"`
	} `json:"thumbnail"`
	Topics phNameConnection `json:"topics"`
	Makers phNameConnection `json:"makers"`
}

type phResponse struct {
	Data struct {
		Posts struct {
			Edges []struct {
				Node *phPost `json:"node"`
			} `json:"edges"`
		} `json:"posts"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// productHuntFetcher queries the Product Hunt GraphQL API.
type productHuntFetcher struct {
	deps Deps
}

func NewProductHuntFetcher(deps Deps) Fetcher {
	return &productHuntFetcher{deps: deps.withDefaults()}
}

func (f *productHuntFetcher) ID() string { return ProviderIDProductHunt }

func (f *productHuntFetcher) Fetch(ctx context.Context, cfg Provider, limit int) ([]domain.RawItem, error) {
	token, err := Credential(cfg, f.deps.Lookup)
	if err != nil {
		return nil, err
	}

	var resp phResponse
	err = fetchJSON(ctx, f.deps, cfg, httpclient.Options{
		Method:  http.MethodPost,
		Headers: map[string]string{"Authorization": "Bearer " + token},
		Body: map[string]any{
			"query":     productHuntQuery,
			"variables": map[string]any{"first": clampFetch(limit, 10, 0)},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", cfg.ID, err)
	}
	if len(resp.Errors) > 0 {
		msgs := make([]error, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			msgs = append(msgs, errors.New(e.Message))
		}
		return nil, fmt.Errorf("fetch %s: graphql: %w", cfg.ID, errors.Join(msgs...))
	}

	siteURL := firstNonEmpty(cfg.URL, "https://www.producthunt.com")
	items := make([]domain.RawItem, 0, limit)
	for _, edge := range resp.Data.Posts.Edges {
		if len(items) == limit {
			break
		}
		node := edge.Node
		if node == nil {
			continue
		}

		topics := node.Topics.names()
		var badges []string
		var score *float64
		if node.VotesCount != nil {
			badges = []string{fmt.Sprintf("%d votes", *node.VotesCount)}
			s := float64(*node.VotesCount)
			score = &s
		}
		var image string
		if node.Thumbnail != nil {
			image = node.Thumbnail.URL
		}

		items = append(items, domain.RawItem{
			ID:          node.ID,
			URL:         firstNonEmpty(node.URL, siteURL+"/posts/"+node.Slug),
			Title:       node.Name,
			Summary:     node.Tagline,
			PublishedAt: firstNonEmpty(node.FeaturedAt, node.CreatedAt),
			Categories:  topics,
			Tags:        topics,
			Badges:      badges,
			ImageURL:    image,
			Language:    firstNonEmpty(cfg.Language, "en"),
			Score:       score,
			Extras: map[string]any{
				"makers":   node.Makers.names(),
				"slug":     node.Slug,
				"position": len(items),
			},
			Raw: node,
		})
	}
	return items, nil
}
