package transport

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/dshkol/cancensus-go/config"
	"github.com/dshkol/cancensus-go/errors"
	"github.com/dshkol/cancensus-go/pkg/retry"
)

// defaultRateLimitWait is used when a 429 response carries no Retry-After
// header; the service normally sends one.
const defaultRateLimitWait = 5 * time.Second

// maxResponseBytes bounds a single response body. Geometry payloads for a
// whole province run tens of megabytes; anything past this is a broken
// stream, not data.
const maxResponseBytes = 512 << 20

// Client executes HTTP calls against the census service with pooled
// connections, client-side rate limiting, bounded retry with jittered
// backoff, and the classified error taxonomy.
type Client struct {
	cfg        config.Config
	base       *url.URL
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	metrics    *transportMetrics
	sleep      func(ctx context.Context, d time.Duration) error
}

// Option configures the transport.
type Option func(*Client)

// WithLogger sets the structured logger. Nil keeps slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client. Tests use this to
// point the transport at a scripted server with short timeouts.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithMetrics enables Prometheus instrumentation of requests and failures.
func WithMetrics(reg prometheusRegisterer) Option {
	return func(c *Client) {
		if reg != nil {
			m, err := newTransportMetrics(reg)
			if err == nil {
				c.metrics = m
			} else {
				c.logger.Warn("transport metrics registration failed", "error", err)
			}
		}
	}
}

// New creates a transport client from configuration. The connection pool
// is sized for repeated sequential calls to the single census host.
func New(cfg config.Config, opts ...Option) (*Client, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, errors.InvalidSpec("transport", "New", "parse base url", err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	var limiter *rate.Limiter
	if !cfg.DisableRateLimit && cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	c := &Client{
		cfg:  cfg,
		base: base,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: limiter,
		logger:  slog.Default(),
		sleep:   sleepCtx,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Execute performs a GET against endpoint with query parameters. The API
// key is attached here so callers never handle the credential directly.
func (c *Client) Execute(ctx context.Context, method, endpoint string, params url.Values) ([]byte, error) {
	if method != http.MethodGet {
		return nil, errors.InvalidSpec("transport", "Execute",
			"unsupported method "+method+" (use PostForm for form posts)", nil)
	}
	q := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("api_key", c.cfg.APIKey)

	u := c.resolve(endpoint)
	u.RawQuery = q.Encode()
	target := u.String()

	return c.do(ctx, endpoint, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.cfg.UserAgent)
		return req, nil
	})
}

// PostForm performs a multipart form POST, the shape the data and geometry
// endpoints expect. The API key is added as a form field.
func (c *Client) PostForm(ctx context.Context, endpoint string, fields map[string]string) ([]byte, error) {
	target := c.resolve(endpoint).String()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("api_key", c.cfg.APIKey); err != nil {
		return nil, errors.Wrap(err, "transport", "PostForm", "encode form")
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, errors.Wrap(err, "transport", "PostForm", "encode form")
		}
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, "transport", "PostForm", "finalize form")
	}
	payload := body.Bytes()
	contentType := w.FormDataContentType()

	return c.do(ctx, endpoint, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("User-Agent", c.cfg.UserAgent)
		return req, nil
	})
}

func (c *Client) resolve(endpoint string) *url.URL {
	ref := &url.URL{Path: strings.TrimPrefix(endpoint, "/")}
	return c.base.ResolveReference(ref)
}

// do runs one logical call: a bounded retry loop over transient failures,
// plus the single server-directed retry after a 429. A second 429 is
// surfaced as the rate-limit error carrying the server's wait.
func (c *Client) do(ctx context.Context, endpoint string, build func() (*http.Request, error)) ([]byte, error) {
	body, err := c.doWithRetry(ctx, endpoint, build)
	if err == nil || !errors.IsRateLimit(err) {
		return body, err
	}

	wait := errors.WaitOf(err)
	c.logger.Info("rate limited by census service, honoring retry-after",
		"endpoint", endpoint, "wait", wait)
	if serr := c.sleep(ctx, wait); serr != nil {
		return nil, errors.Connection("transport", "do", "cancelled during rate-limit wait", serr)
	}

	body, err = c.doWithRetry(ctx, endpoint, build)
	return body, err
}

// doWithRetry executes the request under the configured backoff policy.
// Authentication and rate-limit failures abort the loop immediately.
func (c *Client) doWithRetry(ctx context.Context, endpoint string, build func() (*http.Request, error)) ([]byte, error) {
	body, err := retry.DoWithResult(ctx, c.cfg.Retry, func() ([]byte, error) {
		return c.attempt(ctx, endpoint, build)
	})
	if err != nil {
		// Surface the classified error, not the retry wrapper text.
		var ce *errors.Error
		if errors.As(err, &ce) {
			return nil, ce
		}
		return nil, err
	}
	return body, nil
}

// attempt performs exactly one HTTP exchange and classifies the outcome.
func (c *Client) attempt(ctx context.Context, endpoint string, build func() (*http.Request, error)) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, retry.NonRetryable(errors.Connection("transport", "attempt", "rate limiter wait", err))
		}
	}
	req, err := build()
	if err != nil {
		return nil, retry.NonRetryable(errors.InvalidSpec("transport", "attempt", "build request", err))
	}

	if c.metrics != nil {
		c.metrics.recordRequest(endpoint)
	}
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.countFailure(errors.KindConnection)
		return nil, errors.Connection("transport", "attempt", "round trip "+endpoint, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("census api call",
		"endpoint", endpoint, "status", resp.StatusCode, "elapsed", time.Since(start))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			c.countFailure(errors.KindConnection)
			return nil, errors.Connection("transport", "attempt", "read body", err)
		}
		return body, nil

	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.countFailure(errors.KindAuthentication)
		return nil, retry.NonRetryable(errors.Authentication("transport", "attempt",
			"status "+strconv.Itoa(resp.StatusCode), nil))

	case resp.StatusCode == http.StatusTooManyRequests:
		c.countFailure(errors.KindRateLimit)
		wait, ok := parseRetryAfter(resp.Header.Get("Retry-After"))
		if !ok {
			wait = defaultRateLimitWait
		}
		return nil, retry.NonRetryable(errors.RateLimit("transport", "attempt",
			"status 429", wait, nil))

	case resp.StatusCode >= 500:
		c.countFailure(errors.KindService)
		return nil, errors.Service("transport", "attempt",
			"status "+strconv.Itoa(resp.StatusCode), nil)

	default:
		// Remaining 4xx: the request itself is wrong; retrying cannot help.
		c.countFailure(errors.KindInvalidSpec)
		return nil, retry.NonRetryable(errors.InvalidSpec("transport", "attempt",
			"status "+strconv.Itoa(resp.StatusCode), nil))
	}
}

func (c *Client) countFailure(kind errors.Kind) {
	if c.metrics != nil {
		c.metrics.recordFailure(kind)
	}
}

// parseRetryAfter handles both forms of the header: delta-seconds and an
// HTTP date. The second return reports whether a usable value was present;
// an explicit "0" is usable and means retry immediately.
func parseRetryAfter(v string) (time.Duration, bool) {
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d, true
		}
	}
	return 0, false
}
