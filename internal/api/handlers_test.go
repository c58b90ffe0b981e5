package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/samvad-hq/geekfeed/internal/aggregator"
	"github.com/samvad-hq/geekfeed/internal/domain"
	"github.com/samvad-hq/geekfeed/internal/logger"
	"github.com/samvad-hq/geekfeed/pkg/providers"
)

// fakeAggregator records the request and returns a canned result.
type fakeAggregator struct {
	result aggregator.Result
	got    *aggregator.Request
}

func (f *fakeAggregator) Aggregate(_ context.Context, req aggregator.Request) aggregator.Result {
	f.got = &req
	res := f.result
	res.LimitPerSource = req.LimitPerSource
	return res
}

type fakeCatalog []providers.Provider

func (c fakeCatalog) All() []providers.Provider { return c }

func newTestServer(agg *fakeAggregator) http.Handler {
	disabled := false
	catalog := fakeCatalog{
		{ID: "techcrunch", Name: "TechCrunch", Type: "rss", URL: "https://techcrunch.com"},
		{ID: "the-verge", Name: "The Verge", Type: "rss", URL: "https://www.theverge.com", Enabled: &disabled},
	}
	return NewServer(NewHandler(agg, catalog, Limits{}), logger.NopLogger{})
}

func outcome(id, status string) aggregator.SourceOutcome {
	return aggregator.SourceOutcome{SourceRef: domain.SourceRef{ID: id}, Status: status}
}

func perform(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGetFeedStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		result aggregator.Result
		want   int
	}{
		{"all ok", aggregator.Result{Success: true, Sources: []aggregator.SourceOutcome{outcome("a", aggregator.StatusOK)}}, http.StatusOK},
		{"skipped only is still ok", aggregator.Result{Success: true, Sources: []aggregator.SourceOutcome{outcome("a", aggregator.StatusOK), outcome("b", aggregator.StatusSkipped)}}, http.StatusOK},
		{"partial", aggregator.Result{Success: true, Sources: []aggregator.SourceOutcome{outcome("a", aggregator.StatusOK), outcome("b", aggregator.StatusError)}}, http.StatusMultiStatus},
		{"all failed", aggregator.Result{Success: false, Sources: []aggregator.SourceOutcome{outcome("b", aggregator.StatusError)}}, http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := perform(t, newTestServer(&fakeAggregator{result: tc.result}), http.MethodGet, "/api/geekfeed")
			if rec.Code != tc.want {
				t.Fatalf("status = %d want %d", rec.Code, tc.want)
			}
			if got := rec.Header().Get("Cache-Control"); got != cacheControl {
				t.Fatalf("Cache-Control = %q", got)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
				t.Fatalf("missing CORS header")
			}
		})
	}
}

func TestGetFeedParsesQuery(t *testing.T) {
	cases := []struct {
		target    string
		wantLimit int
		wantIDs   []string
	}{
		{"/api/geekfeed", 10, nil},
		{"/api/geekfeed?limit=5", 5, nil},
		{"/api/geekfeed?limit=500", 25, nil},
		{"/api/geekfeed?limit=-3", 10, nil},
		{"/api/geekfeed?limit=abc", 10, nil},
		{"/api/geekfeed?source=TechCrunch,%20gdelt,,", 10, []string{"techcrunch", "gdelt"}},
		{"/api/geekfeed?source=a&source=B", 10, []string{"a", "b"}},
	}

	for _, tc := range cases {
		agg := &fakeAggregator{result: aggregator.Result{Success: true}}
		perform(t, newTestServer(agg), http.MethodGet, tc.target)
		if agg.got == nil {
			t.Fatalf("%s: aggregator not called", tc.target)
		}
		if agg.got.LimitPerSource != tc.wantLimit {
			t.Fatalf("%s: limit = %d want %d", tc.target, agg.got.LimitPerSource, tc.wantLimit)
		}
		if !reflect.DeepEqual(agg.got.SourceIDs, tc.wantIDs) {
			t.Fatalf("%s: ids = %v want %v", tc.target, agg.got.SourceIDs, tc.wantIDs)
		}
	}
}

func TestGetFeedBody(t *testing.T) {
	agg := &fakeAggregator{result: aggregator.Result{
		Success:    true,
		FetchedAt:  "2024-07-01T12:00:00.000Z",
		TotalItems: 1,
		Summary:    aggregator.Summary{OK: 1, Errors: 1, ErrorMessages: []string{"gdelt timed out"}, SkippedMessages: []string{}},
		Sources:    []aggregator.SourceOutcome{outcome("a", aggregator.StatusOK), outcome("gdelt", aggregator.StatusError)},
		Items:      []domain.Item{{ID: "1", Title: domain.StringPtr("Hello")}},
	}}

	rec := perform(t, newTestServer(agg), http.MethodGet, "/api/geekfeed?limit=3")

	var body struct {
		Success        bool             `json:"success"`
		LimitPerSource int              `json:"limitPerSource"`
		Message        *string          `json:"message"`
		Items          []map[string]any `json:"items"`
		Meta           struct {
			AvailableSources []SourceInfo       `json:"availableSources"`
			Summary          aggregator.Summary `json:"summary"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.Success || body.LimitPerSource != 3 || len(body.Items) != 1 {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
	if body.Message == nil || *body.Message != "gdelt timed out" {
		t.Fatalf("expected first error message, got %v", body.Message)
	}
	if len(body.Meta.AvailableSources) != 2 || body.Meta.AvailableSources[1].Enabled {
		t.Fatalf("unexpected available sources %+v", body.Meta.AvailableSources)
	}
	if body.Meta.Summary.Errors != 1 {
		t.Fatalf("meta summary missing: %+v", body.Meta.Summary)
	}
}

func TestGetFeedEmptySelection(t *testing.T) {
	agg := &fakeAggregator{result: aggregator.Result{Success: false, Message: aggregator.NoMatchingSourcesMessage}}
	rec := perform(t, newTestServer(agg), http.MethodGet, "/api/geekfeed?source=nope")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["message"] != aggregator.NoMatchingSourcesMessage {
		t.Fatalf("message = %v", body["message"])
	}
}

func TestPreflightAndMethodNotAllowed(t *testing.T) {
	agg := &fakeAggregator{}
	srv := newTestServer(agg)

	rec := perform(t, srv, http.MethodOptions, "/api/geekfeed")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("OPTIONS status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET,OPTIONS" {
		t.Fatalf("Allow-Methods = %q", got)
	}

	rec = perform(t, srv, http.MethodPost, "/api/geekfeed")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST status = %d", rec.Code)
	}
	if agg.got != nil {
		t.Fatalf("aggregator must not run for rejected methods")
	}
}

func TestListSourcesAndHealth(t *testing.T) {
	srv := newTestServer(&fakeAggregator{})

	rec := perform(t, srv, http.MethodGet, "/api/geekfeed/sources")
	if rec.Code != http.StatusOK {
		t.Fatalf("sources status = %d", rec.Code)
	}
	var body struct {
		Sources []SourceInfo `json:"sources"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Sources) != 2 || body.Sources[0].ID != "techcrunch" || !body.Sources[0].Enabled {
		t.Fatalf("unexpected sources %+v", body.Sources)
	}

	if rec := perform(t, srv, http.MethodGet, "/health"); rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}
}
