package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client    *resty.Client
	limiter   *rate.Limiter
	userAgent string
}

// RestyOption customizes a RestyClient.
type RestyOption func(*RestyClient)

// WithUserAgent sets the User-Agent sent when a request does not carry its own.
func WithUserAgent(ua string) RestyOption {
	return func(c *RestyClient) { c.userAgent = strings.TrimSpace(ua) }
}

// WithRateLimit paces outbound requests to perSecond (burst of the same size).
// Zero or negative disables pacing.
func WithRateLimit(perSecond float64) RestyOption {
	return func(c *RestyClient) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewRestyClient creates a new RestyClient with the specified transport timeout.
func NewRestyClient(timeout time.Duration, opts ...RestyOption) *RestyClient {
	c := &RestyClient{client: newRestyBaseClient(timeout)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// newRestyBaseClient creates a new resty.Client with the specified timeout.
func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return c
}

// Do performs the request with the given context.
func (r *RestyClient) Do(ctx context.Context, in Request) (Response, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	req := r.client.R().SetContext(ctx)
	if r.userAgent != "" {
		req.SetHeader("User-Agent", r.userAgent)
	}
	if len(in.Headers) > 0 {
		req.SetHeaders(in.Headers)
	}
	if len(in.Body) > 0 {
		req.SetBody(in.Body)
	}

	method := strings.ToUpper(strings.TrimSpace(in.Method))
	if method == "" {
		method = http.MethodGet
	}

	resp, err := req.Execute(method, in.URL)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte    { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int { return r.resp.StatusCode() }
