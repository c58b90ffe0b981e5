package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type fakeResponse struct {
	body   []byte
	status int
}

func (f fakeResponse) Body() []byte    { return f.body }
func (f fakeResponse) StatusCode() int { return f.status }

type fakeClient struct {
	resp Response
	err  error
	got  Request
}

func (f *fakeClient) Do(_ context.Context, req Request) (Response, error) {
	f.got = req
	return f.resp, f.err
}

func TestBuildURLSkipsEmptyAndRepeatsSlices(t *testing.T) {
	got, err := BuildURL("https://example.com/api?x=1", map[string]any{
		"q":       "go",
		"empty":   "",
		"missing": nil,
		"tag":     []string{"a", "", "b"},
		"n":       25,
	})
	if err != nil {
		t.Fatalf("BuildURL: %v", err)
	}
	want := "https://example.com/api?n=25&q=go&tag=a&tag=b&x=1"
	if got != want {
		t.Fatalf("BuildURL got %q want %q", got, want)
	}
}

func TestFetchTextReturnsStatusError(t *testing.T) {
	client := &fakeClient{resp: fakeResponse{status: 503, body: []byte("unavailable")}}

	_, err := FetchText(context.Background(), client, "https://example.com/feed", Options{})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != 503 || statusErr.Body != "unavailable" || statusErr.Code() != CodeHTTPStatus {
		t.Fatalf("unexpected status error %+v", statusErr)
	}
}

func TestFetchTextWrapsTransportErrors(t *testing.T) {
	client := &fakeClient{err: errors.New("connection refused")}

	_, err := FetchText(context.Background(), client, "https://example.com", Options{})
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected RequestError, got %v", err)
	}
	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) {
		t.Fatalf("transport failure must not be reported as timeout")
	}
}

func TestFetchTextTimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client := NewRestyClient(0)
	start := time.Now()
	_, err := FetchText(context.Background(), client, srv.URL, Options{Timeout: 50 * time.Millisecond})

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
	if timeoutErr.Code() != CodeTimeout {
		t.Fatalf("unexpected code %q", timeoutErr.Code())
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("timeout not enforced, took %s", elapsed)
	}
}

func TestFetchJSONDecodesAndSendsHeaders(t *testing.T) {
	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hits":[{"title":"one"}]}`))
	}))
	defer srv.Close()

	client := NewRestyClient(time.Second, WithUserAgent("GeekFeedTest/1.0"))
	var out struct {
		Hits []struct {
			Title string `json:"title"`
		} `json:"hits"`
	}
	if err := FetchJSON(context.Background(), client, srv.URL, Options{}, &out); err != nil {
		t.Fatalf("FetchJSON: %v", err)
	}
	if len(out.Hits) != 1 || out.Hits[0].Title != "one" {
		t.Fatalf("unexpected payload %+v", out)
	}
	if gotUA != "GeekFeedTest/1.0" {
		t.Fatalf("expected default user agent, got %q", gotUA)
	}
	if gotAccept != "application/json" {
		t.Fatalf("expected json accept header, got %q", gotAccept)
	}
}

func TestFetchJSONParseError(t *testing.T) {
	client := &fakeClient{resp: fakeResponse{status: 200, body: []byte("<html>nope</html>")}}

	var out map[string]any
	err := FetchJSON(context.Background(), client, "https://example.com", Options{}, &out)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestFetchJSONEmptyBodyLeavesOutUntouched(t *testing.T) {
	client := &fakeClient{resp: fakeResponse{status: 200, body: []byte("  ")}}

	out := map[string]any{"keep": true}
	if err := FetchJSON(context.Background(), client, "https://example.com", Options{}, &out); err != nil {
		t.Fatalf("FetchJSON: %v", err)
	}
	if out["keep"] != true {
		t.Fatalf("expected output untouched, got %v", out)
	}
}

func TestFetchTextEncodesJSONBody(t *testing.T) {
	var gotBody, gotType, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		gotType = r.Header.Get("Content-Type")
		gotMethod = r.Method
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := NewRestyClient(time.Second)
	body, err := FetchText(context.Background(), client, srv.URL, Options{
		Method: http.MethodPost,
		Body:   map[string]any{"query": "{ posts }"},
	})
	if err != nil {
		t.Fatalf("FetchText: %v", err)
	}
	if string(body) != "ok" {
		t.Fatalf("unexpected body %q", body)
	}
	if gotMethod != http.MethodPost || !strings.Contains(gotBody, `"query"`) || gotType != "application/json" {
		t.Fatalf("unexpected request method=%s type=%s body=%s", gotMethod, gotType, gotBody)
	}
}

func TestRestyClientRateLimitHonoursContext(t *testing.T) {
	client := NewRestyClient(time.Second, WithRateLimit(0.001))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// first token is available; cancelled context still fails the wait
	if _, err := client.Do(ctx, Request{URL: "http://127.0.0.1:0"}); err == nil {
		t.Fatalf("expected error with cancelled context")
	}
}

func TestSnippet(t *testing.T) {
	if got := Snippet(nil); got != "<empty>" {
		t.Fatalf("Snippet(nil) = %q", got)
	}
	long := strings.Repeat("x", 600)
	if got := Snippet([]byte(long)); len(got) != 515 {
		t.Fatalf("expected truncated snippet, got len %d", len(got))
	}
}
