package minreqs

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// Option configures resolution behavior.
type Option func(*resolverConfig) error

// resolverConfig holds all resolution configuration.
type resolverConfig struct {
	catalog        Catalog
	httpClient     *http.Client
	timeout        time.Duration
	indexURL       string
	pipPath        string
	maxConcurrency int
	memo           bool

	// logger is the structured logger for debug/info output.
	// If nil, logging is disabled (silent mode).
	logger *slog.Logger
}

// WithCatalog sets the catalog backend directly, bypassing the policy-driven
// backend selection. Intended for tests and custom catalog sources.
func WithCatalog(catalog Catalog) Option {
	return func(c *resolverConfig) error {
		c.catalog = catalog
		return nil
	}
}

// WithHTTPClient sets a custom HTTP client for registry catalog queries.
func WithHTTPClient(client *http.Client) Option {
	return func(c *resolverConfig) error {
		c.httpClient = client
		return nil
	}
}

// WithTimeout sets the per-query catalog timeout. Zero or negative values
// use the default (15 seconds). A timed-out query counts as catalog
// unavailability, never a hard failure.
func WithTimeout(d time.Duration) Option {
	return func(c *resolverConfig) error {
		c.timeout = d
		return nil
	}
}

// WithIndexURL sets the registry base URL for the JSON metadata endpoint.
// The default is https://pypi.org.
func WithIndexURL(url string) Option {
	return func(c *resolverConfig) error {
		c.indexURL = url
		return nil
	}
}

// WithPipExecutable sets the pip executable used by the subprocess backend.
// The default is the first "pip" found on PATH.
func WithPipExecutable(path string) Option {
	return func(c *resolverConfig) error {
		c.pipPath = path
		return nil
	}
}

// WithMaxConcurrency bounds the worker pool used by ResolveAll.
// Zero uses the default of 5.
func WithMaxConcurrency(n int) Option {
	return func(c *resolverConfig) error {
		c.maxConcurrency = n
		return nil
	}
}

// WithMemo enables or disables the in-process memo cache that deduplicates
// catalog queries per distribution name. Enabled by default.
func WithMemo(enabled bool) Option {
	return func(c *resolverConfig) error {
		c.memo = enabled
		return nil
	}
}

// WithLogger sets a structured logger for resolution diagnostics.
// If not set, logging is disabled (silent mode).
//
// The library uses log/slog, so any backend can be plugged in via a handler.
//
// Example:
//
//	// Use default logger
//	minreqs.Resolve(ctx, spec, policy, minreqs.WithLogger(slog.Default()))
//
//	// Use custom logger with attributes
//	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil)).With("component", "minreqs")
//	minreqs.Resolve(ctx, spec, policy, minreqs.WithLogger(logger))
func WithLogger(l *slog.Logger) Option {
	return func(c *resolverConfig) error {
		c.logger = l
		return nil
	}
}

// validate checks the configuration for logical consistency.
func (c *resolverConfig) validate() error {
	if c.timeout < 0 {
		return errors.New("timeout must be positive")
	}
	if c.maxConcurrency < 0 {
		return errors.New("max concurrency must be positive")
	}
	return nil
}

// log returns the configured logger, or a no-op logger if none was set.
// This allows internal code to call logging methods without nil checks.
// Libraries should be silent by default; users opt in via WithLogger.
func (c *resolverConfig) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.New(discardHandler{})
}

// discardHandler is a slog.Handler that discards all log records.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// newResolverConfig creates a resolver configuration by applying the given
// options and validating the result.
func newResolverConfig(opts ...Option) (*resolverConfig, error) {
	c := &resolverConfig{memo: true}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}
