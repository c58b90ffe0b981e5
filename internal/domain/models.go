package domain

// Domain contains the canonical content models shared by connectors,
// normalization and aggregation.

// Source types recognised by the catalog.
const (
	SourceTypeRSS     = "rss"
	SourceTypeNewsAPI = "news-api"
	SourceTypeGraphQL = "graphql"
	SourceTypeLocal   = "local"
	SourceTypeSitemap = "sitemap"
)

// SourceRef identifies the catalog entry an item came from.
type SourceRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	URL  string `json:"url"`
}

// RawItem is what a connector hands to normalization. Empty strings mean absent.
type RawItem struct {
	ID          string         `json:"id,omitempty"`
	URL         string         `json:"url,omitempty"`
	Title       string         `json:"title,omitempty"`
	Summary     string         `json:"summary,omitempty"`
	RawSummary  string         `json:"rawSummary,omitempty"`
	Author      string         `json:"author,omitempty"`
	PublishedAt string         `json:"publishedAt,omitempty"`
	Categories  []string       `json:"categories,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Badges      []string       `json:"badges,omitempty"`
	ImageURL    string         `json:"imageUrl,omitempty"`
	Language    string         `json:"language,omitempty"`
	Score       *float64       `json:"score,omitempty"`
	Extras      map[string]any `json:"extras,omitempty"`
	Raw         any            `json:"raw,omitempty"`
}

// Item is the canonical, normalized content record. Nullable fields are pointers
// and serialize as JSON null.
type Item struct {
	ID          string         `json:"id"`
	Source      SourceRef      `json:"source"`
	Title       *string        `json:"title"`
	URL         *string        `json:"url"`
	Summary     *string        `json:"summary"`
	RawSummary  *string        `json:"rawSummary"`
	Author      *string        `json:"author"`
	PublishedAt *string        `json:"publishedAt"`
	Categories  []string       `json:"categories"`
	Tags        []string       `json:"tags"`
	Badges      []string       `json:"badges"`
	ImageURL    *string        `json:"imageUrl"`
	Language    *string        `json:"language"`
	Score       *float64       `json:"score"`
	Extras      map[string]any `json:"extras"`
	Raw         any            `json:"raw"`
}

// StringValue dereferences p, returning "" for nil.
func StringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// StringPtr returns nil for an empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
