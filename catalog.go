package minreqs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"

	"github.com/minreqs/go-minreqs/pep440"
	"github.com/minreqs/go-minreqs/pypi"
)

// Catalog lists the published versions of a distribution.
//
// Implementations return versions ascending with exact duplicates
// collapsed, pre-releases included. Callers must treat the returned
// slice as read-only; implementations may share it across calls.
type Catalog interface {
	// Versions returns every published version of the named distribution.
	// The name should already be canonical per PEP 503.
	Versions(ctx context.Context, name string) ([]pep440.Version, error)
}

// NewCatalog builds the catalog backend chain a resolver with this policy
// would use: the pip subprocess first when TryPip is set and a pip
// executable is found, with the registry JSON endpoint as fallback;
// otherwise the registry endpoint alone. Offline policies have no
// catalog, so ErrNoCatalog is returned.
func NewCatalog(policy Policy, opts ...Option) (Catalog, error) {
	cfg, err := newResolverConfig(opts...)
	if err != nil {
		return nil, err
	}
	if policy.Offline {
		return nil, ErrNoCatalog
	}
	return newCatalog(policy, cfg), nil
}

// newCatalog selects the backend chain for a policy. Returns nil under
// an offline policy; the resolver never queries in that case.
func newCatalog(policy Policy, cfg *resolverConfig) Catalog {
	if cfg.catalog != nil {
		return wrapMemo(cfg.catalog, cfg)
	}
	if policy.Offline {
		return nil
	}

	var backend Catalog = &registryCatalog{client: newRegistryClient(cfg)}
	if policy.TryPip {
		if pip, err := NewPipCatalog(cfg.pipPath); err == nil {
			backend = newFallbackCatalog(cfg.log(), pip, backend)
		} else {
			cfg.log().Debug("pip backend unavailable", "error", err)
		}
	}
	return wrapMemo(backend, cfg)
}

func wrapMemo(backend Catalog, cfg *resolverConfig) Catalog {
	if !cfg.memo {
		return backend
	}
	return &memoCatalog{backend: backend}
}

func newRegistryClient(cfg *resolverConfig) *pypi.Client {
	opts := []pypi.ClientOption{pypi.WithTimeout(cfg.timeout)}
	if cfg.httpClient != nil {
		opts = append(opts, pypi.WithHTTPClient(cfg.httpClient))
	}
	baseURL := cfg.indexURL
	if baseURL == "" {
		baseURL = pypi.DefaultBaseURL
	}
	return pypi.NewClient(baseURL, opts...)
}

// registryCatalog adapts the pypi client to the Catalog interface.
// A missing distribution is an empty catalog, not an error.
type registryCatalog struct {
	client *pypi.Client
}

var _ Catalog = (*registryCatalog)(nil)

func (c *registryCatalog) Versions(ctx context.Context, name string) ([]pep440.Version, error) {
	releases, err := c.client.ReleaseVersions(ctx, name)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, &CatalogError{Backend: "pypi", Name: name, Err: err}
	}
	return parseVersions(releases), nil
}

func isNotFound(err error) bool {
	var statusErr *pypi.StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}

// parseVersions parses raw version strings, dropping entries that do not
// conform to the version scheme (registries carry legacy uploads), and
// returns them ascending with exact duplicates collapsed.
func parseVersions(raw []string) []pep440.Version {
	versions := make([]pep440.Version, 0, len(raw))
	for _, r := range raw {
		v, err := pep440.Parse(r)
		if err != nil {
			continue
		}
		versions = append(versions, v)
	}
	pep440.Sort(versions)
	return slices.CompactFunc(versions, func(a, b pep440.Version) bool {
		return pep440.Compare(a, b) == 0
	})
}

// fallbackCatalog tries backends in order and remembers which backend
// answered for each distribution, so later queries for that name go
// straight to the backend that served it.
//
// Fallback happens on ANY error, not just missing distributions:
// subprocess failures, HTTP 5xx, TLS errors and timeouts all move on to
// the next backend.
type fallbackCatalog struct {
	backends []Catalog

	// backendFor tracks which backend serves each distribution name.
	backendFor   map[string]int
	backendForMu sync.RWMutex

	log *slog.Logger
}

var _ Catalog = (*fallbackCatalog)(nil)

func newFallbackCatalog(log *slog.Logger, backends ...Catalog) *fallbackCatalog {
	return &fallbackCatalog{
		backends:   backends,
		backendFor: make(map[string]int),
		log:        log,
	}
}

func (f *fallbackCatalog) Versions(ctx context.Context, name string) ([]pep440.Version, error) {
	f.backendForMu.RLock()
	idx, found := f.backendFor[name]
	f.backendForMu.RUnlock()

	if found {
		return f.backends[idx].Versions(ctx, name)
	}

	var errs []error
	for i, backend := range f.backends {
		versions, err := backend.Versions(ctx, name)
		if err == nil {
			f.backendForMu.Lock()
			if _, exists := f.backendFor[name]; !exists {
				f.backendFor[name] = i
			}
			f.backendForMu.Unlock()
			return versions, nil
		}

		f.log.Debug("catalog backend failed, trying next", "name", name, "error", err)
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}

	return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, errors.Join(errs...))
}

// memoCatalog caches successful version lists per distribution name.
// Failures are not cached, so a later query retries the backend. Safe
// for concurrent use; duplicate in-flight queries race harmlessly since
// catalog queries are idempotent.
type memoCatalog struct {
	backend Catalog
	cache   sync.Map // map[string][]pep440.Version keyed by canonical name
}

var _ Catalog = (*memoCatalog)(nil)

func (m *memoCatalog) Versions(ctx context.Context, name string) ([]pep440.Version, error) {
	if cached, ok := m.cache.Load(name); ok {
		return cached.([]pep440.Version), nil
	}

	versions, err := m.backend.Versions(ctx, name)
	if err != nil {
		return nil, err
	}

	m.cache.Store(name, versions)
	return versions, nil
}
