package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samvad-hq/geekfeed/internal/aggregator"
	"github.com/samvad-hq/geekfeed/pkg/providers"
)

const (
	defaultLimit = 10
	maxLimit     = 25
	cacheControl = "s-maxage=900, stale-while-revalidate=300"
)

// Aggregator runs one aggregation per request.
type Aggregator interface {
	Aggregate(ctx context.Context, req aggregator.Request) aggregator.Result
}

// Catalog lists every known source, enabled or not.
type Catalog interface {
	All() []providers.Provider
}

// Limits bounds the per-source limit clients may ask for.
type Limits struct {
	Default int
	Max     int
}

type Handler struct {
	aggregator Aggregator
	catalog    Catalog
	limits     Limits
	now        func() time.Time
}

func NewHandler(agg Aggregator, catalog Catalog, limits Limits) *Handler {
	if limits.Default <= 0 {
		limits.Default = defaultLimit
	}
	if limits.Max <= 0 {
		limits.Max = maxLimit
	}
	if limits.Default > limits.Max {
		limits.Default = limits.Max
	}
	return &Handler{
		aggregator: agg,
		catalog:    catalog,
		limits:     limits,
		now:        time.Now,
	}
}

// GetFeed aggregates the selected sources. Partial success answers 207, total
// failure 503.
func (h *Handler) GetFeed(c *gin.Context) {
	limit := h.parseLimit(c.Query("limit"))
	sourceIDs := parseSourceIDs(c.QueryArray("source"))

	result := h.aggregator.Aggregate(c.Request.Context(), aggregator.Request{
		LimitPerSource: limit,
		SourceIDs:      sourceIDs,
	})

	status := http.StatusServiceUnavailable
	switch {
	case result.Success && result.HasErrors():
		status = http.StatusMultiStatus
	case result.Success:
		status = http.StatusOK
	}

	c.Header("Cache-Control", cacheControl)
	c.JSON(status, FeedResponse{
		Success:        result.Success,
		FetchedAt:      result.FetchedAt,
		LimitPerSource: result.LimitPerSource,
		TotalItems:     result.TotalItems,
		Message:        responseMessage(result),
		Sources:        result.Sources,
		Taxonomy:       result.Taxonomy,
		Items:          result.Items,
		Meta: Meta{
			AvailableSources: h.availableSources(),
			Summary:          result.Summary,
			Taxonomy:         result.Taxonomy,
		},
	})
}

// ListSources returns the catalog.
func (h *Handler) ListSources(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"sources": h.availableSources(),
	})
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) availableSources() []SourceInfo {
	all := h.catalog.All()
	out := make([]SourceInfo, 0, len(all))
	for _, p := range all {
		out = append(out, SourceInfo{SourceRef: p.Ref(), Enabled: p.IsEnabled()})
	}
	return out
}

// parseLimit falls back to the default for anything that is not a positive integer.
func (h *Handler) parseLimit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return h.limits.Default
	}
	return min(n, h.limits.Max)
}

// parseSourceIDs accepts repeated and comma-separated values.
func parseSourceIDs(values []string) []string {
	var ids []string
	for _, v := range values {
		for _, id := range strings.Split(v, ",") {
			if id = strings.ToLower(strings.TrimSpace(id)); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

func responseMessage(result aggregator.Result) *string {
	if result.Message != "" {
		return &result.Message
	}
	if len(result.Summary.ErrorMessages) > 0 {
		msg := result.Summary.ErrorMessages[0]
		return &msg
	}
	return nil
}
