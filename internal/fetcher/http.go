package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/url"
	"sync"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// MaxBodyBytes caps how much of a response body is read.
const MaxBodyBytes = 5 << 20

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent         string
	Timeout           time.Duration
	CloudflareBypass  bool
	RequestsPerSecond float64
	MaxRedirects      int
}

// AdaptiveLimiter wraps a rate.Limiter with adaptive rate adjustment.
// On success it increases the rate by 20% (up to 2x initial).
// On 429 it halves the rate (down to initial/4 minimum).
type AdaptiveLimiter struct {
	mu          sync.Mutex
	limiter     *rate.Limiter
	maxRate     rate.Limit
	minRate     rate.Limit
	currentRate rate.Limit
}

// NewAdaptiveLimiter creates an adaptive rate limiter that auto-tunes.
func NewAdaptiveLimiter(initialRate rate.Limit, burst int) *AdaptiveLimiter {
	return &AdaptiveLimiter{
		limiter:     rate.NewLimiter(initialRate, burst),
		maxRate:     initialRate * 2,
		minRate:     initialRate / 4,
		currentRate: initialRate,
	}
}

// Wait blocks until the limiter allows an event.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// OnSuccess increases the rate by 20%, up to 2x initial.
func (a *AdaptiveLimiter) OnSuccess() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.currentRate = min(a.currentRate*1.2, a.maxRate)
	a.limiter.SetLimit(a.currentRate)
}

// OnRateLimit halves the rate after a 429. The request itself is not retried.
func (a *AdaptiveLimiter) OnRateLimit(host string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.currentRate = max(a.currentRate*0.5, a.minRate)
	a.limiter.SetLimit(a.currentRate)
	zap.L().Warn("fetcher: slowing host after 429",
		zap.String("host", host),
		zap.Float64("new_rate", float64(a.currentRate)),
	)
}

// Limit returns the current rate limit.
func (a *AdaptiveLimiter) Limit() rate.Limit {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentRate
}

// HTTPFetcher implements Fetcher on a resty client. It never retries.
type HTTPFetcher struct {
	client *resty.Client
	opts   HTTPOptions

	mu       sync.Mutex
	limiters map[string]*AdaptiveLimiter
}

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0 (compatible; storefront-insights/1.0)"
	}
	if opts.MaxRedirects == 0 {
		opts.MaxRedirects = 10
	}

	client := resty.New()
	client.SetLogger(zap.S())
	client.SetTimeout(opts.Timeout)
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(opts.MaxRedirects))
	client.SetHeaders(map[string]string{
		"User-Agent":      opts.UserAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9",
	})
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}

	return &HTTPFetcher{
		client:   client,
		opts:     opts,
		limiters: make(map[string]*AdaptiveLimiter),
	}
}

func (f *HTTPFetcher) limiterFor(host string) *AdaptiveLimiter {
	if f.opts.RequestsPerSecond <= 0 || host == "" {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	lim, ok := f.limiters[host]
	if !ok {
		burst := int(math.Ceil(f.opts.RequestsPerSecond))
		lim = NewAdaptiveLimiter(rate.Limit(f.opts.RequestsPerSecond), burst)
		f.limiters[host] = lim
	}
	return lim
}

type rawResponse struct {
	status   int
	finalURL string
	header   http.Header
	body     []byte
}

func (f *HTTPFetcher) get(ctx context.Context, rawURL, accept string) (*rawResponse, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, &TransportError{URL: rawURL, Err: eris.Errorf("invalid url %q", rawURL)}
	}

	lim := f.limiterFor(u.Host)
	if lim != nil {
		if err := lim.Wait(ctx); err != nil {
			return nil, &TransportError{URL: rawURL, Err: eris.Wrap(err, "rate limiter wait")}
		}
	}

	req := f.client.R().SetContext(ctx).SetDoNotParseResponse(true)
	if accept != "" {
		req.SetHeader("Accept", accept)
	}
	resp, err := req.Get(rawURL)
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: err}
	}
	raw := resp.RawBody()
	defer raw.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(raw, MaxBodyBytes))
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: eris.Wrap(err, "read body")}
	}

	out := &rawResponse{
		status:   resp.StatusCode(),
		finalURL: rawURL,
		header:   resp.Header(),
		body:     body,
	}
	if resp.RawResponse != nil && resp.RawResponse.Request != nil {
		out.finalURL = resp.RawResponse.Request.URL.String()
	}

	if lim != nil {
		switch {
		case out.status == http.StatusTooManyRequests:
			lim.OnRateLimit(u.Host)
		case out.status < 400:
			lim.OnSuccess()
		}
	}

	return out, nil
}

// Fetch performs a GET and parses the body as HTML.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	resp, err := f.get(ctx, rawURL, "")
	if err != nil {
		return nil, err
	}
	blocked, bt := DetectBlock(resp.status, resp.header, resp.body)
	if blocked {
		zap.L().Warn("fetcher: page looks like an anti-bot challenge",
			zap.String("url", rawURL),
			zap.Int("status", resp.status),
			zap.String("block_type", string(bt)),
		)
	}
	if err := classifyStatus(rawURL, resp.status, bt); err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.body))
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: parse html %s", rawURL)
	}

	page := &Page{
		URL:        rawURL,
		FinalURL:   resp.finalURL,
		StatusCode: resp.status,
		HTML:       string(resp.body),
		Doc:        doc,
		Blocked:    blocked,
		BlockType:  bt,
	}
	return page, nil
}

// FetchJSON performs a GET and decodes the JSON body into v.
func (f *HTTPFetcher) FetchJSON(ctx context.Context, rawURL string, v any) error {
	resp, err := f.get(ctx, rawURL, "application/json")
	if err != nil {
		return err
	}
	if err := classifyStatus(rawURL, resp.status, BlockNone); err != nil {
		return err
	}
	if err := json.Unmarshal(resp.body, v); err != nil {
		return eris.Wrapf(err, "fetcher: decode json %s", rawURL)
	}
	return nil
}
