package app

import (
	"context"
	"fmt"

	"github.com/samvad-hq/geekfeed/internal/aggregator"
	"github.com/samvad-hq/geekfeed/internal/config"
	"github.com/samvad-hq/geekfeed/internal/domain"
	"github.com/samvad-hq/geekfeed/internal/logger"
	"github.com/samvad-hq/geekfeed/internal/storage"
	"github.com/samvad-hq/geekfeed/pkg/httpclient"
	"github.com/samvad-hq/geekfeed/pkg/providers"
)

// Runtime holds everything one geekfeed process shares: the catalog, the
// curated store, the outbound client and the aggregator built on them.
type Runtime struct {
	cfg        *config.Config
	catalog    *providers.Registry
	store      storage.Store
	aggregator *aggregator.Service
	log        logger.Logger
}

// Option customizes a Runtime before it is assembled.
type Option func(*runtimeOptions)

type runtimeOptions struct {
	client   providers.HTTPClient
	lookup   providers.EnvLookup
	fetchers providers.FetcherRegistry
}

// WithHTTPClient replaces the resty-backed outbound client.
func WithHTTPClient(c providers.HTTPClient) Option {
	return func(o *runtimeOptions) { o.client = c }
}

// WithEnvLookup replaces os.LookupEnv for credential resolution.
func WithEnvLookup(lookup providers.EnvLookup) Option {
	return func(o *runtimeOptions) { o.lookup = lookup }
}

// WithFetchers replaces the default connector set.
func WithFetchers(reg providers.FetcherRegistry) Option {
	return func(o *runtimeOptions) { o.fetchers = reg }
}

// NewRuntime builds a runtime from config.
func NewRuntime(cfg *config.Config, log logger.Logger, opts ...Option) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	var o runtimeOptions
	for _, opt := range opts {
		opt(&o)
	}

	catalog, err := providers.LoadRegistry(cfg.ProvidersFile)
	if err != nil {
		return nil, fmt.Errorf("load providers registry: %w", err)
	}
	enabled := catalog.Enabled()
	enabledIDs := make([]string, 0, len(enabled))
	for _, p := range enabled {
		enabledIDs = append(enabledIDs, p.ID)
	}
	log.InfoObj("providers registry loaded", "providers_meta", map[string]any{
		"count":   len(catalog.All()),
		"enabled": enabledIDs,
	})

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type": cfg.StorageType,
		"path": cfg.BBoltPath,
	})

	if o.client == nil {
		o.client = httpclient.NewRestyClient(0,
			httpclient.WithUserAgent(cfg.UserAgent),
			httpclient.WithRateLimit(cfg.HTTPRateLimit),
		)
	}
	if o.fetchers == nil {
		o.fetchers = providers.DefaultFetcherRegistry(providers.Deps{
			Client:  o.client,
			Timeout: cfg.HTTPTimeout,
			Lookup:  o.lookup,
			Local:   store,
		})
	}

	svc := aggregator.NewService(catalog, o.fetchers, log, aggregator.Options{
		SourceTimeout: cfg.HTTPTimeout,
		Deadline:      cfg.AggregateTimeout,
	})

	return &Runtime{
		cfg:        cfg,
		catalog:    catalog,
		store:      store,
		aggregator: svc,
		log:        log,
	}, nil
}

// Catalog returns the immutable source catalog.
func (r *Runtime) Catalog() *providers.Registry { return r.catalog }

// Aggregate runs one aggregation with the configured default limit when none is given.
func (r *Runtime) Aggregate(ctx context.Context, req aggregator.Request) aggregator.Result {
	if req.LimitPerSource <= 0 {
		req.LimitPerSource = r.cfg.DefaultLimit
	}
	return r.aggregator.Aggregate(ctx, req)
}

// ImportItems appends curated items to a local collection.
func (r *Runtime) ImportItems(collection string, items []domain.RawItem) error {
	if err := r.store.PutItems(collection, items); err != nil {
		return fmt.Errorf("import into %q: %w", collection, err)
	}
	r.log.InfoObj("local items imported", "storage_import", map[string]any{
		"collection": collection,
		"count":      len(items),
	})
	return nil
}

// Close releases the storage backend, logging any errors encountered.
func (r *Runtime) Close() {
	if r == nil || r.store == nil {
		return
	}
	if err := r.store.Close(); err != nil {
		r.log.ErrorObj("storage close failed", "error", err)
	}
}
