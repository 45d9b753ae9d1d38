package minreqs

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/minreqs/go-minreqs/pep440"
)

// Compile-time interface compliance checks
var _ Catalog = StaticCatalog{}
var _ Catalog = (*FailingCatalog)(nil)
var _ Catalog = (*CountingCatalog)(nil)

// StaticCatalog is a fixed in-memory catalog for testing. Keys are
// canonical distribution names, values version strings in any order.
type StaticCatalog map[string][]string

// Versions returns the configured versions parsed and sorted ascending.
// Unknown names yield an empty catalog, like a registry 404.
func (c StaticCatalog) Versions(ctx context.Context, name string) ([]pep440.Version, error) {
	return parseVersions(c[name]), nil
}

// FailingCatalog is a catalog that always returns an error.
// Useful for testing soft-failure paths.
type FailingCatalog struct {
	Err error
}

// NewFailingCatalog creates a catalog that fails with the given error.
func NewFailingCatalog(err error) *FailingCatalog {
	if err == nil {
		err = errors.New("catalog query failed")
	}
	return &FailingCatalog{Err: err}
}

// Versions always returns an error.
func (c *FailingCatalog) Versions(ctx context.Context, name string) ([]pep440.Version, error) {
	return nil, c.Err
}

// CountingCatalog wraps another catalog and counts queries. Useful for
// asserting which resolutions touch the catalog at all.
type CountingCatalog struct {
	Backend Catalog

	queries atomic.Int64
}

// Versions delegates to the wrapped catalog, counting the call.
func (c *CountingCatalog) Versions(ctx context.Context, name string) ([]pep440.Version, error) {
	c.queries.Add(1)
	return c.Backend.Versions(ctx, name)
}

// Queries returns the number of Versions calls made so far.
func (c *CountingCatalog) Queries() int64 {
	return c.queries.Load()
}
