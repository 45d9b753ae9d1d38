package pypi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// DefaultBaseURL is the canonical package index.
const DefaultBaseURL = "https://pypi.org"

// Client configuration defaults.
const (
	DefaultMaxIdleConns        = 50
	DefaultMaxIdleConnsPerHost = 20
	DefaultIdleConnTimeout     = 90 * time.Second
	DefaultRequestTimeout      = 15 * time.Second
)

// Client fetches project data from a package index JSON API.
type Client struct {
	baseURL string
	client  *http.Client

	// Cache for project documents
	projectCache sync.Map // map[string]*Project keyed by distribution name
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// WithTimeout sets a custom HTTP request timeout.
// Zero or negative values fall back to the default timeout (15 seconds).
// This option is useful for slow networks or testing scenarios.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.client.Timeout = timeout
		} else {
			c.client.Timeout = DefaultRequestTimeout
		}
	}
}

// NewClient creates a client for the given index URL. An empty URL
// selects the canonical index.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	transport := &http.Transport{
		MaxIdleConns:        DefaultMaxIdleConns,
		MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:     DefaultIdleConnTimeout,
		DisableCompression:  false,
	}

	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout:   DefaultRequestTimeout,
			Transport: transport,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the index base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// StatusError reports a non-OK HTTP response from the index.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.URL)
}

// GetProject fetches and parses a distribution's project document.
// Results are cached by name; pass the canonical name so equivalent
// spellings share a cache entry.
func (c *Client) GetProject(ctx context.Context, name string) (*Project, error) {
	if cached, ok := c.projectCache.Load(name); ok {
		return cached.(*Project), nil
	}

	url := fmt.Sprintf("%s/pypi/%s/json", c.baseURL, name)
	data, err := c.fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch project %s: %w", name, err)
	}

	var project Project
	if err := json.Unmarshal(data, &project); err != nil {
		return nil, fmt.Errorf("failed to parse project %s: %w", name, err)
	}

	c.projectCache.Store(name, &project)
	return &project, nil
}

// ReleaseVersions returns the installable release versions of a
// distribution, in no particular order. Yanked releases and releases
// whose files were all removed are excluded, matching what an installer
// would offer.
func (c *Client) ReleaseVersions(ctx context.Context, name string) ([]string, error) {
	project, err := c.GetProject(ctx, name)
	if err != nil {
		return nil, err
	}
	return project.InstallableVersions(), nil
}

// ClearCache removes all cached project documents.
func (c *Client) ClearCache() {
	c.projectCache = sync.Map{}
}

// fetch performs an HTTP GET and returns the response body.
func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	return io.ReadAll(resp.Body)
}
