// Package normalize turns connector output into canonical items. Everything
// here is pure: no I/O, no clocks.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/samvad-hq/geekfeed/internal/domain"
)

// Item converts one raw connector record into a canonical item.
func Item(src domain.SourceRef, raw domain.RawItem) domain.Item {
	title := strings.TrimSpace(raw.Title)
	link := strings.TrimSpace(raw.URL)
	summary := strings.TrimSpace(raw.Summary)
	published := ToISODate(raw.PublishedAt)

	id := strings.TrimSpace(raw.ID)
	if id == "" {
		id = HashID(src.ID, title, link, domain.StringValue(published))
	}

	categories := DedupeStrings(raw.Categories)
	keywords := ExtractKeywords(title+" "+summary, MaxKeywords)

	extras := make(map[string]any, len(raw.Extras))
	for k, v := range raw.Extras {
		extras[k] = v
	}

	return domain.Item{
		ID:          id,
		Source:      src,
		Title:       domain.StringPtr(title),
		URL:         domain.StringPtr(link),
		Summary:     domain.StringPtr(summary),
		RawSummary:  domain.StringPtr(raw.RawSummary),
		Author:      domain.StringPtr(strings.TrimSpace(raw.Author)),
		PublishedAt: published,
		Categories:  categories,
		Tags:        DedupeStrings(raw.Tags, categories, keywords),
		Badges:      DedupeStrings(raw.Badges),
		ImageURL:    domain.StringPtr(strings.TrimSpace(raw.ImageURL)),
		Language:    domain.StringPtr(strings.TrimSpace(raw.Language)),
		Score:       raw.Score,
		Extras:      extras,
		Raw:         raw.Raw,
	}
}

// HashID derives a stable identifier from parts. Every part keeps its slot,
// empty or not, so distinct tuples never share an input.
func HashID(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])
}
