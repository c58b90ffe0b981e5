package providers

import (
	"context"
	"fmt"

	"github.com/samvad-hq/geekfeed/internal/domain"
)

// localFetcher serves curated items from the local store. Missing data is an
// empty result rather than an error.
type localFetcher struct {
	deps Deps
}

func NewLocalFetcher(deps Deps) Fetcher {
	return &localFetcher{deps: deps.withDefaults()}
}

func (f *localFetcher) ID() string { return ProviderTypeLocal }

func (f *localFetcher) Fetch(ctx context.Context, cfg Provider, limit int) ([]domain.RawItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.deps.Local == nil {
		return []domain.RawItem{}, nil
	}

	collection := ConfigString(cfg, "collection", cfg.ID)
	stored, err := f.deps.Local.Items(collection, limit)
	if err != nil {
		return nil, fmt.Errorf("load %s local items: %w", cfg.ID, err)
	}

	defaultCategories := ConfigStrings(cfg, "default_categories", nil)
	defaultTags := ConfigStrings(cfg, "default_tags", cfg.DefaultTags)

	items := make([]domain.RawItem, 0, len(stored))
	for i, it := range stored {
		if len(items) == limit {
			break
		}
		if it.ID == "" {
			it.ID = fmt.Sprintf("%s-%d", collection, i)
		}
		if it.Categories == nil {
			it.Categories = defaultCategories
		}
		if it.Tags == nil {
			it.Tags = defaultTags
		}
		if len(it.Badges) == 0 {
			it.Badges = cfg.DefaultBadges
		}
		if it.Language == "" {
			it.Language = cfg.Language
		}

		extras := make(map[string]any, len(it.Extras)+2)
		for k, v := range it.Extras {
			extras[k] = v
		}
		extras["type"] = collection
		extras["position"] = i
		it.Extras = extras

		if it.Raw == nil {
			it.Raw = stored[i]
		}
		items = append(items, it)
	}
	return items, nil
}
