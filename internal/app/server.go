package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/samvad-hq/geekfeed/internal/api"
)

const shutdownTimeout = 10 * time.Second

// Handler returns the HTTP surface of the runtime.
func (r *Runtime) Handler() http.Handler {
	h := api.NewHandler(r, r.catalog, api.Limits{
		Default: r.cfg.DefaultLimit,
		Max:     r.cfg.MaxLimit,
	})
	return api.NewServer(h, r.log)
}

// Serve listens on the configured address until the context is cancelled,
// then drains in-flight requests.
func (r *Runtime) Serve(ctx context.Context) error {
	if r == nil || r.aggregator == nil {
		return fmt.Errorf("runtime is not initialized")
	}

	srv := &http.Server{
		Addr:              r.cfg.HTTPAddr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		// an aggregation may take up to its deadline
		WriteTimeout: r.cfg.AggregateTimeout + 5*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		r.log.InfoObj("http server listening", "http_server", map[string]any{
			"addr": r.cfg.HTTPAddr,
		})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		r.log.InfoObj("http server shutting down", "reason", ctx.Err())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		return nil
	}
}
