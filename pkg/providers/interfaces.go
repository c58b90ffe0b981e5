package providers

import (
	"context"

	"github.com/samvad-hq/geekfeed/internal/domain"
	"github.com/samvad-hq/geekfeed/pkg/httpclient"
)

// Fetcher retrieves up to limit raw items for a catalog entry.
// Concrete implementations live in source-specific files (e.g., rss.go).
type Fetcher interface {
	ID() string
	Fetch(ctx context.Context, cfg Provider, limit int) ([]domain.RawItem, error)
}

// FetcherRegistry resolves the fetcher implementation for a given provider config.
type FetcherRegistry interface {
	FetcherFor(cfg Provider) (Fetcher, error)
}

// LocalItemSource serves curated items stored locally, keyed by collection.
type LocalItemSource interface {
	Items(collection string, limit int) ([]domain.RawItem, error)
}

// HTTPClient aliases the shared httpclient.Client interface for clarity within providers.
type HTTPClient = httpclient.Client

// EnvLookup resolves an environment variable; os.LookupEnv in production.
type EnvLookup func(key string) (string, bool)
