package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout bounds a single fetch when Options.Timeout is unset.
const DefaultTimeout = 10 * time.Second

// Options describes one fetch. Query values that are nil or empty are skipped;
// slice values become repeated keys.
type Options struct {
	Method  string
	Query   map[string]any
	Headers map[string]string
	// Body is sent as-is when it is []byte or string; anything else is JSON encoded.
	Body    any
	Timeout time.Duration
}

// BuildURL appends query parameters to base.
func BuildURL(base string, query map[string]any) (string, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", base, err)
	}
	if len(query) == 0 {
		return u.String(), nil
	}

	values := u.Query()
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		for _, v := range queryValues(query[key]) {
			values.Add(key, v)
		}
	}
	u.RawQuery = values.Encode()
	return u.String(), nil
}

func queryValues(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	case []string:
		out := make([]string, 0, len(val))
		for _, s := range val {
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, queryValues(item)...)
		}
		return out
	case int:
		return []string{strconv.Itoa(val)}
	case int64:
		return []string{strconv.FormatInt(val, 10)}
	case float64:
		return []string{strconv.FormatFloat(val, 'f', -1, 64)}
	case bool:
		return []string{strconv.FormatBool(val)}
	default:
		s := fmt.Sprint(val)
		if s == "" {
			return nil
		}
		return []string{s}
	}
}

// FetchText performs the request and returns the body of a 2xx response.
func FetchText(ctx context.Context, client Client, rawURL string, opts Options) ([]byte, error) {
	if client == nil {
		return nil, errors.New("http client is nil")
	}

	target, err := BuildURL(rawURL, opts.Query)
	if err != nil {
		return nil, err
	}

	body, headers, err := encodeBody(opts)
	if err != nil {
		return nil, err
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := client.Do(tctx, Request{
		Method:  opts.Method,
		URL:     target,
		Headers: headers,
		Body:    body,
	})
	if err != nil {
		if isTimeout(tctx, err) {
			return nil, &TimeoutError{URL: target, Timeout: timeout, Err: err}
		}
		return nil, &RequestError{URL: target, Err: err}
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		return nil, &StatusError{URL: target, StatusCode: status, Body: Snippet(resp.Body())}
	}
	return resp.Body(), nil
}

// FetchJSON performs the request and decodes a JSON body into out. An empty
// body leaves out untouched.
func FetchJSON(ctx context.Context, client Client, rawURL string, opts Options, out any) error {
	if opts.Headers == nil {
		opts.Headers = map[string]string{}
	}
	if _, ok := headerLookup(opts.Headers, "Accept"); !ok {
		opts.Headers["Accept"] = "application/json"
	}

	body, err := FetchText(ctx, client, rawURL, opts)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &ParseError{URL: rawURL, Err: err}
	}
	return nil
}

func encodeBody(opts Options) ([]byte, map[string]string, error) {
	headers := make(map[string]string, len(opts.Headers)+1)
	for k, v := range opts.Headers {
		headers[k] = v
	}

	switch b := opts.Body.(type) {
	case nil:
		return nil, headers, nil
	case []byte:
		return b, headers, nil
	case string:
		return []byte(b), headers, nil
	default:
		encoded, err := json.Marshal(b)
		if err != nil {
			return nil, nil, fmt.Errorf("encode request body: %w", err)
		}
		if _, ok := headerLookup(headers, "Content-Type"); !ok {
			headers["Content-Type"] = "application/json"
		}
		return encoded, headers, nil
	}
}

func headerLookup(headers map[string]string, name string) (string, bool) {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
