package aggregator

import (
	"sort"

	"github.com/samvad-hq/geekfeed/internal/domain"
	"github.com/samvad-hq/geekfeed/pkg/normalize"
)

// Merge drops duplicates keyed by url (id when the url is missing), keeping the
// first occurrence, then removes any residual duplicate id. Merge is idempotent.
func Merge(items []domain.Item) []domain.Item {
	byKey := make(map[string]struct{}, len(items))
	firstPass := make([]domain.Item, 0, len(items))
	for _, it := range items {
		key := domain.StringValue(it.URL)
		if key == "" {
			key = it.ID
		}
		if _, dup := byKey[key]; dup {
			continue
		}
		byKey[key] = struct{}{}
		firstPass = append(firstPass, it)
	}

	byID := make(map[string]struct{}, len(firstPass))
	out := make([]domain.Item, 0, len(firstPass))
	for _, it := range firstPass {
		if _, dup := byID[it.ID]; dup {
			continue
		}
		byID[it.ID] = struct{}{}
		out = append(out, it)
	}
	return out
}

// SortByRecency orders items newest first in place. Missing or unparseable
// dates count as the epoch; equal timestamps keep their input order.
func SortByRecency(items []domain.Item) {
	type keyed struct {
		item domain.Item
		ts   int64
	}
	ordered := make([]keyed, len(items))
	for i, it := range items {
		ordered[i] = keyed{item: it, ts: publishedUnixMilli(it)}
	}
	sort.SliceStable(ordered, func(a, b int) bool {
		return ordered[a].ts > ordered[b].ts
	})
	for i := range ordered {
		items[i] = ordered[i].item
	}
}

func publishedUnixMilli(it domain.Item) int64 {
	t, ok := normalize.ParseDate(domain.StringValue(it.PublishedAt))
	if !ok {
		return 0
	}
	return t.UnixMilli()
}

// CollectTaxonomy gathers the facets of the final item set.
func CollectTaxonomy(items []domain.Item) Taxonomy {
	tags := make([][]string, 0, len(items))
	badges := make([][]string, 0, len(items))
	categories := make([][]string, 0, len(items))
	for _, it := range items {
		tags = append(tags, it.Tags)
		badges = append(badges, it.Badges)
		categories = append(categories, it.Categories)
	}
	return Taxonomy{
		Tags:       normalize.DedupeStrings(tags...),
		Badges:     normalize.DedupeStrings(badges...),
		Categories: normalize.DedupeStrings(categories...),
	}
}

// Summarize counts outcomes by status and collects their messages.
func Summarize(outcomes []SourceOutcome) Summary {
	s := Summary{ErrorMessages: []string{}, SkippedMessages: []string{}}
	for _, o := range outcomes {
		switch o.Status {
		case StatusOK:
			s.OK++
		case StatusSkipped:
			s.Skipped++
			if o.Error != nil && o.Error.Message != "" {
				s.SkippedMessages = append(s.SkippedMessages, o.Error.Message)
			}
		case StatusError:
			s.Errors++
			if o.Error != nil && o.Error.Message != "" {
				s.ErrorMessages = append(s.ErrorMessages, o.Error.Message)
			}
		}
	}
	return s
}
