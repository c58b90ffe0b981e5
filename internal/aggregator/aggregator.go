// Package aggregator fans a request out to every selected source, isolates
// their failures and folds the results into one ranked, de-duplicated feed.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/geekfeed/internal/domain"
	"github.com/samvad-hq/geekfeed/internal/logger"
	"github.com/samvad-hq/geekfeed/pkg/httpclient"
	"github.com/samvad-hq/geekfeed/pkg/normalize"
	"github.com/samvad-hq/geekfeed/pkg/providers"
	"golang.org/x/sync/errgroup"
)

const (
	// CodePanic marks a connector that panicked instead of returning an error.
	CodePanic = "PANIC"
	// CodeCancelled marks a source abandoned because the caller went away.
	CodeCancelled = "CANCELLED"
)

const (
	DefaultLimitPerSource = 10
	defaultSourceTimeout  = httpclient.DefaultTimeout
	// sourceGrace lets a connector report its own timeout before it is abandoned.
	sourceGrace = 2 * time.Second
)

// Catalog resolves which sources take part in a request.
type Catalog interface {
	Select(ids []string) []providers.Provider
}

// Options tunes a Service.
type Options struct {
	// SourceTimeout applies to entries without their own timeout_ms.
	SourceTimeout time.Duration
	// Deadline bounds a whole aggregation; zero leaves only per-source bounds.
	Deadline time.Duration
	Now      func() time.Time
}

// Service coordinates aggregation across the catalog.
type Service struct {
	catalog  Catalog
	registry providers.FetcherRegistry
	log      logger.Logger
	opts     Options
}

// NewService wires an aggregator with the catalog and the fetcher registry.
func NewService(catalog Catalog, reg providers.FetcherRegistry, log logger.Logger, opts Options) *Service {
	if log == nil {
		log = logger.NopLogger{}
	}
	if opts.SourceTimeout <= 0 {
		opts.SourceTimeout = defaultSourceTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		catalog:  catalog,
		registry: reg,
		log:      log,
		opts:     opts,
	}
}

// Aggregate runs one aggregation. It always returns a complete Result; source
// failures only show up in the per-source outcomes and the summary.
func (s *Service) Aggregate(ctx context.Context, req Request) Result {
	limit := req.LimitPerSource
	if limit <= 0 {
		limit = DefaultLimitPerSource
	}

	selected := s.catalog.Select(req.SourceIDs)
	if len(selected) == 0 {
		s.log.WarnObj("no matching sources", "aggregate_request", map[string]any{
			"source_ids": req.SourceIDs,
		})
		return Result{
			Success:        false,
			FetchedAt:      s.timestamp(),
			LimitPerSource: limit,
			Taxonomy:       Taxonomy{Tags: []string{}, Badges: []string{}, Categories: []string{}},
			Summary:        Summary{ErrorMessages: []string{}, SkippedMessages: []string{}},
			Sources:        []SourceOutcome{},
			Items:          []domain.Item{},
			Message:        NoMatchingSourcesMessage,
		}
	}

	requestID := uuid.NewString()
	started := s.opts.Now()
	if s.opts.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Deadline)
		defer cancel()
	}

	outcomes := s.runAll(ctx, requestID, selected, limit)

	// catalog order, so the earlier source wins a merge tie
	var combined []domain.Item
	for _, o := range outcomes {
		combined = append(combined, o.Items...)
	}
	combined = Merge(combined)
	SortByRecency(combined)

	summary := Summarize(outcomes)
	s.log.InfoObj("aggregation completed", "aggregate_result", map[string]any{
		"request_id":  requestID,
		"sources":     len(outcomes),
		"ok":          summary.OK,
		"skipped":     summary.Skipped,
		"errors":      summary.Errors,
		"total_items": len(combined),
		"duration_ms": s.opts.Now().Sub(started).Milliseconds(),
	})

	return Result{
		Success:        summary.OK > 0,
		FetchedAt:      s.timestamp(),
		LimitPerSource: limit,
		TotalItems:     len(combined),
		Taxonomy:       CollectTaxonomy(combined),
		Summary:        summary,
		Sources:        outcomes,
		Items:          combined,
	}
}

// runAll fans out one task per source and waits for every one of them. Each
// task writes only its own slot.
func (s *Service) runAll(ctx context.Context, requestID string, cfgs []providers.Provider, limit int) []SourceOutcome {
	outcomes := make([]SourceOutcome, len(cfgs))

	var g errgroup.Group
	for i, cfg := range cfgs {
		g.Go(func() error {
			outcomes[i] = s.runSource(ctx, requestID, cfg, limit)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (s *Service) runSource(ctx context.Context, requestID string, cfg providers.Provider, limit int) SourceOutcome {
	started := s.opts.Now()
	outcome := SourceOutcome{SourceRef: cfg.Ref(), Items: []domain.Item{}}

	raw, err := s.fetch(ctx, cfg, limit)
	outcome.DurationMs = s.opts.Now().Sub(started).Milliseconds()

	if err != nil {
		status, code := classify(err)
		outcome.Status = status
		outcome.Error = &OutcomeError{Message: err.Error(), Code: code}

		fields := map[string]any{
			"request_id":  requestID,
			"provider_id": cfg.ID,
			"status":      status,
			"duration_ms": outcome.DurationMs,
			"error":       err.Error(),
		}
		if status == StatusSkipped {
			s.log.InfoObj("provider skipped", "provider_result", fields)
		} else {
			s.log.ErrorObj("provider fetch failed", "provider_error", fields)
		}
		return outcome
	}

	ref := cfg.Ref()
	for _, r := range raw {
		if len(outcome.Items) == limit {
			break
		}
		outcome.Items = append(outcome.Items, normalize.Item(ref, r))
	}
	outcome.Status = StatusOK
	outcome.Count = len(outcome.Items)

	s.log.DebugObj("provider fetch completed", "provider_result", map[string]any{
		"request_id":  requestID,
		"provider_id": cfg.ID,
		"items":       outcome.Count,
		"duration_ms": outcome.DurationMs,
	})
	return outcome
}

type fetchResult struct {
	items []domain.RawItem
	err   error
}

// fetch runs the connector in its own goroutine so that a connector which
// ignores cancellation, or panics, cannot stall or crash the request.
func (s *Service) fetch(ctx context.Context, cfg providers.Provider, limit int) ([]domain.RawItem, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("fetcher registry is not initialized")
	}
	fetcher, err := s.registry.FetcherFor(cfg)
	if err != nil {
		return nil, err
	}

	bound := cfg.Timeout(s.opts.SourceTimeout) + sourceGrace
	started := time.Now()
	taskCtx, cancel := context.WithTimeout(ctx, bound)
	defer cancel()

	done := make(chan fetchResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fetchResult{err: &PanicError{ProviderID: cfg.ID, Value: r}}
			}
		}()
		items, err := fetcher.Fetch(taskCtx, cfg, limit)
		done <- fetchResult{items: items, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && ctx.Err() != nil {
			return nil, abandoned(ctx, cfg, started)
		}
		return res.items, res.err
	case <-taskCtx.Done():
		// the parent ended first: caller cancellation or the aggregation deadline
		if ctx.Err() != nil {
			return nil, abandoned(ctx, cfg, started)
		}
		return nil, &httpclient.TimeoutError{URL: cfg.SourceURL, Timeout: bound, Err: taskCtx.Err()}
	}
}

func abandoned(ctx context.Context, cfg providers.Provider, started time.Time) error {
	return &AbandonedError{
		ProviderID: cfg.ID,
		After:      time.Since(started).Round(time.Millisecond),
		Err:        ctx.Err(),
	}
}

// classify maps a connector error to an outcome status and its code.
func classify(err error) (string, *string) {
	var coded interface{ Code() string }
	var code string
	switch {
	case errors.As(err, &coded):
		code = coded.Code()
	case errors.Is(err, context.DeadlineExceeded):
		code = httpclient.CodeTimeout
	}

	if code == providers.CodeMissingToken {
		return StatusSkipped, &code
	}
	if code == "" {
		return StatusError, nil
	}
	return StatusError, &code
}

func (s *Service) timestamp() string {
	return s.opts.Now().UTC().Format(normalize.ISOLayout)
}

// PanicError carries the value a connector panicked with.
type PanicError struct {
	ProviderID string
	Value      any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("provider %s panicked: %v", e.ProviderID, e.Value)
}

func (e *PanicError) Code() string { return CodePanic }

// AbandonedError reports a source still running when the whole request ended,
// either because the caller cancelled it or the aggregation deadline passed.
type AbandonedError struct {
	ProviderID string
	After      time.Duration
	Err        error
}

func (e *AbandonedError) Error() string {
	if errors.Is(e.Err, context.Canceled) {
		return fmt.Sprintf("provider %s abandoned: request cancelled after %s", e.ProviderID, e.After)
	}
	return fmt.Sprintf("provider %s abandoned: aggregation deadline exceeded after %s", e.ProviderID, e.After)
}

func (e *AbandonedError) Unwrap() error { return e.Err }

func (e *AbandonedError) Code() string {
	if errors.Is(e.Err, context.Canceled) {
		return CodeCancelled
	}
	return httpclient.CodeTimeout
}
