package providers

import (
	"context"
	"fmt"

	"github.com/samvad-hq/geekfeed/internal/domain"
	"github.com/samvad-hq/geekfeed/pkg/httpclient"
)

const ProviderIDGuardian = "guardian-tech"

type guardianResult struct {
	ID                 string `json:"id"`
	Type               string `json:"type"`
	SectionID          string `json:"sectionId"`
	SectionName        string `json:"sectionName"`
	PillarName         string `json:"pillarName"`
	WebPublicationDate string `json:"webPublicationDate"`
	WebTitle           string `json:"webTitle"`
	WebURL             string `json:"webUrl"`
	APIURL             string `json:"apiUrl"`
	Fields             struct {
		TrailText  string `json:"trailText"`
		Standfirst string `json:"standfirst"`
		BodyText   string `json:"bodyText"`
		Thumbnail  string `json:"thumbnail"`
		Byline     string `json:"byline"`
	} `json:"fields"`
}

type guardianResponse struct {
	Response struct {
		Edition struct {
			Edition string `json:"edition"`
		} `json:"edition"`
		Results []guardianResult `json:"results"`
	} `json:"response"`
}

// guardianFetcher reads the Guardian Content API technology section.
type guardianFetcher struct {
	deps Deps
}

func NewGuardianFetcher(deps Deps) Fetcher {
	return &guardianFetcher{deps: deps.withDefaults()}
}

func (f *guardianFetcher) ID() string { return ProviderIDGuardian }

func (f *guardianFetcher) Fetch(ctx context.Context, cfg Provider, limit int) ([]domain.RawItem, error) {
	apiKey, err := Credential(cfg, f.deps.Lookup)
	if err != nil {
		return nil, err
	}

	var resp guardianResponse
	err = fetchJSON(ctx, f.deps, cfg, httpclient.Options{
		Query: map[string]any{
			"api-key":     apiKey,
			"page-size":   clampFetch(limit*2, limit, 50),
			"order-by":    "newest",
			"show-fields": "trailText,standfirst,bodyText,thumbnail,byline",
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", cfg.ID, err)
	}

	results := resp.Response.Results
	if len(results) > limit {
		results = results[:limit]
	}
	language := firstNonEmpty(resp.Response.Edition.Edition, cfg.Language, "en")

	items := make([]domain.RawItem, 0, len(results))
	for i, r := range results {
		items = append(items, domain.RawItem{
			ID:          firstNonEmpty(r.ID, r.WebURL),
			URL:         r.WebURL,
			Title:       r.WebTitle,
			Summary:     firstNonEmpty(r.Fields.TrailText, r.Fields.Standfirst, r.Fields.BodyText),
			RawSummary:  r.Fields.BodyText,
			Author:      r.Fields.Byline,
			PublishedAt: r.WebPublicationDate,
			Categories:  nonEmpty(r.SectionName, r.PillarName),
			Tags:        nonEmpty(r.SectionID, r.Type),
			Badges:      []string{"The Guardian"},
			ImageURL:    r.Fields.Thumbnail,
			Language:    language,
			Extras: map[string]any{
				"apiUrl":   r.APIURL,
				"position": i,
			},
			Raw: r,
		})
	}
	return items, nil
}
