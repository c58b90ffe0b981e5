package api

import (
	"github.com/samvad-hq/geekfeed/internal/aggregator"
	"github.com/samvad-hq/geekfeed/internal/domain"
)

// SourceInfo describes one catalog entry to clients.
type SourceInfo struct {
	domain.SourceRef
	Enabled bool `json:"enabled"`
}

// Meta carries facets and the catalog alongside a feed response.
type Meta struct {
	AvailableSources []SourceInfo        `json:"availableSources"`
	Summary          aggregator.Summary  `json:"summary"`
	Taxonomy         aggregator.Taxonomy `json:"taxonomy"`
}

// FeedResponse is the body of GET /api/geekfeed.
type FeedResponse struct {
	Success        bool                       `json:"success"`
	FetchedAt      string                     `json:"fetchedAt"`
	LimitPerSource int                        `json:"limitPerSource"`
	TotalItems     int                        `json:"totalItems"`
	Message        *string                    `json:"message"`
	Sources        []aggregator.SourceOutcome `json:"sources"`
	Taxonomy       aggregator.Taxonomy        `json:"taxonomy"`
	Items          []domain.Item              `json:"items"`
	Meta           Meta                       `json:"meta"`
}
