package providers

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/samvad-hq/geekfeed/pkg/httpclient"
)

// fetcherRegistry implements FetcherRegistry.
type fetcherRegistry struct {
	fetchersByID   map[string]Fetcher
	fetchersByType map[string]Fetcher
	mu             sync.RWMutex
}

// NewFetcherRegistry builds a registry for the provided fetcher implementations keyed by provider id.
func NewFetcherRegistry(fetchers ...Fetcher) FetcherRegistry {
	return NewTypeFetcherRegistry(nil, fetchers...)
}

// NewTypeFetcherRegistry builds a registry with optional type-based fetchers and provider-specific fetchers.
func NewTypeFetcherRegistry(typeFetchers map[string]Fetcher, fetchers ...Fetcher) FetcherRegistry {
	reg := &fetcherRegistry{
		fetchersByID:   make(map[string]Fetcher),
		fetchersByType: make(map[string]Fetcher),
	}

	for _, f := range fetchers {
		reg.registerIDFetcher(f)
	}
	for typ, f := range typeFetchers {
		reg.registerTypeFetcher(typ, f)
	}

	return reg
}

// registerIDFetcher registers a fetcher by its provider ID.
func (r *fetcherRegistry) registerIDFetcher(f Fetcher) {
	if f == nil {
		return
	}
	key := strings.ToLower(strings.TrimSpace(f.ID()))
	if key == "" {
		return
	}

	r.mu.Lock()
	r.fetchersByID[key] = f
	r.mu.Unlock()
}

// registerTypeFetcher registers a fetcher by provider type.
func (r *fetcherRegistry) registerTypeFetcher(typ string, f Fetcher) {
	if f == nil {
		return
	}
	key := strings.ToLower(strings.TrimSpace(typ))
	if key == "" {
		return
	}

	r.mu.Lock()
	r.fetchersByType[key] = f
	r.mu.Unlock()
}

// FetcherFor selects the fetcher for the given provider based on its id or type.
func (r *fetcherRegistry) FetcherFor(cfg Provider) (Fetcher, error) {
	if r == nil {
		return nil, fmt.Errorf("fetcher registry is nil")
	}
	if strings.TrimSpace(cfg.ID) == "" {
		return nil, fmt.Errorf("provider id is empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	idKey := strings.ToLower(strings.TrimSpace(cfg.ID))
	if f, ok := r.fetchersByID[idKey]; ok {
		return f, nil
	}

	typeKey := strings.ToLower(strings.TrimSpace(cfg.Type))
	if typeKey != "" {
		if f, ok := r.fetchersByType[typeKey]; ok {
			return f, nil
		}
	}

	return nil, &NoFetcherError{ProviderID: cfg.ID, Type: cfg.Type}
}

// CodeNoFetcher marks a catalog entry nothing knows how to fetch.
const CodeNoFetcher = "NO_FETCHER"

// NoFetcherError is returned by FetcherFor when neither the id nor the type is registered.
type NoFetcherError struct {
	ProviderID string
	Type       string
}

func (e *NoFetcherError) Error() string {
	return fmt.Sprintf("no fetcher registered for provider %q (type %q)", e.ProviderID, e.Type)
}

func (e *NoFetcherError) Code() string { return CodeNoFetcher }

// Deps carries what connectors share.
type Deps struct {
	Client HTTPClient
	// Timeout bounds each request when the catalog entry sets no timeout_ms.
	Timeout time.Duration
	Lookup  EnvLookup
	Local   LocalItemSource
}

func (d Deps) withDefaults() Deps {
	if d.Client == nil {
		d.Client = DefaultHTTPClient()
	}
	if d.Timeout <= 0 {
		d.Timeout = httpclient.DefaultTimeout
	}
	if d.Lookup == nil {
		d.Lookup = os.LookupEnv
	}
	return d
}

// DefaultHTTPClient returns a resty-backed client; per-request deadlines come from the fetch options.
func DefaultHTTPClient() HTTPClient { return httpclient.NewRestyClient(0) }

// DefaultFetcherRegistry wires up every known connector.
func DefaultFetcherRegistry(deps Deps) FetcherRegistry {
	deps = deps.withDefaults()

	typeFetchers := map[string]Fetcher{
		ProviderTypeRSS:     NewRSSFetcher(deps),
		ProviderTypeSitemap: NewSitemapFetcher(deps),
		ProviderTypeLocal:   NewLocalFetcher(deps),
	}

	return NewTypeFetcherRegistry(typeFetchers,
		NewGDELTFetcher(deps),
		NewHackerNewsSearchFetcher(deps),
		NewGuardianFetcher(deps),
		NewNewsAPIFetcher(deps),
		NewMediastackFetcher(deps),
		NewProductHuntFetcher(deps),
	)
}
