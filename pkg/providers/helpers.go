package providers

import (
	"context"
	"strings"

	"github.com/samvad-hq/geekfeed/pkg/httpclient"
)

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// fetchJSON runs a JSON request bounded by the entry's timeout.
func fetchJSON(ctx context.Context, deps Deps, cfg Provider, opts httpclient.Options, out any) error {
	opts.Timeout = cfg.Timeout(deps.Timeout)
	opts.Headers = mergeHeaders(opts.Headers, Headers(cfg))
	return httpclient.FetchJSON(ctx, deps.Client, cfg.SourceURL, opts, out)
}

// clampFetch widens a requested limit to at least floor and at most ceiling.
func clampFetch(limit, floor, ceiling int) int {
	n := limit
	if n < floor {
		n = floor
	}
	if ceiling > 0 && n > ceiling {
		n = ceiling
	}
	return n
}
