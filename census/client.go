package census

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dshkol/cancensus-go/cachestore"
	"github.com/dshkol/cancensus-go/config"
	"github.com/dshkol/cancensus-go/errors"
	"github.com/dshkol/cancensus-go/frame"
	"github.com/dshkol/cancensus-go/pkg/cache"
	"github.com/dshkol/cancensus-go/transport"
)

// Transport is the wire surface the client needs. *transport.Client
// satisfies it; tests substitute scripted fakes.
type Transport interface {
	Execute(ctx context.Context, method, endpoint string, params url.Values) ([]byte, error)
	PostForm(ctx context.Context, endpoint string, fields map[string]string) ([]byte, error)
}

// Store is the persistence surface the client needs. *cachestore.Store
// satisfies it.
type Store interface {
	Get(key string) (*cachestore.Payload, bool, error)
	Put(key string, p *cachestore.Payload) error
}

// Client retrieves census data and catalog metadata. It is safe for
// concurrent use.
type Client struct {
	cfg      config.Config
	tp       Transport
	store    Store
	logger   *slog.Logger
	observer Observer

	// catalog memo holds list_* responses for the life of the client so
	// repeated lookups within a process stay off the wire.
	catalog *cache.Cache[*frame.Table]

	metricsReg prometheus.Registerer
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver installs a progress observer for Fetch calls.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithMetrics enables prometheus instrumentation on the transport the
// client builds. It has no effect when WithTransport supplies one.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Client) {
		c.metricsReg = reg
	}
}

// WithTransport replaces the HTTP transport.
func WithTransport(tp Transport) Option {
	return func(c *Client) {
		if tp != nil {
			c.tp = tp
		}
	}
}

// WithStore replaces the persistent cache store.
func WithStore(st Store) Option {
	return func(c *Client) {
		if st != nil {
			c.store = st
		}
	}
}

// New builds a Client from cfg. Unless overridden by options, it wires a
// transport.Client and a cachestore.Store from the same configuration.
func New(cfg config.Config, opts ...Option) (*Client, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "census", "New", "config rejected")
	}
	memo, err := cache.New[*frame.Table]()
	if err != nil {
		return nil, errors.Wrap(err, "census", "New", "build catalog memo")
	}
	c := &Client{
		cfg:      cfg,
		logger:   slog.Default(),
		observer: nopObserver{},
		catalog:  memo,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tp == nil {
		topts := []transport.Option{transport.WithLogger(c.logger)}
		if c.metricsReg != nil {
			topts = append(topts, transport.WithMetrics(c.metricsReg))
		}
		tp, err := transport.New(cfg, topts...)
		if err != nil {
			return nil, err
		}
		c.tp = tp
	}
	if c.store == nil {
		st, err := cachestore.New(cfg, cachestore.WithLogger(c.logger))
		if err != nil {
			return nil, err
		}
		c.store = st
	}
	return c, nil
}
