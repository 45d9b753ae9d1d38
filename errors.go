package minreqs

import (
	"errors"
	"fmt"
)

// Sentinel errors for specifier and catalog failures.
var (
	// ErrMalformedSpecifier indicates the specifier text cannot be parsed.
	ErrMalformedSpecifier = errors.New("malformed specifier")

	// ErrCatalogUnavailable indicates no catalog backend could answer a
	// version query.
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrNoSatisfyingVersion indicates no known release satisfies every
	// clause of a specifier.
	ErrNoSatisfyingVersion = errors.New("no satisfying version")

	// ErrNoCatalog indicates a catalog query was attempted while no
	// backend is configured, typically under an offline policy.
	ErrNoCatalog = errors.New("no catalog configured")
)

// MalformedSpecifierError reports a specifier that failed to parse.
// It wraps ErrMalformedSpecifier for errors.Is checks.
type MalformedSpecifierError struct {
	// Input is the specifier text as given.
	Input string

	// Reason describes what made the input unparsable.
	Reason string
}

func (e *MalformedSpecifierError) Error() string {
	return fmt.Sprintf("malformed specifier %q: %s", e.Input, e.Reason)
}

func (e *MalformedSpecifierError) Unwrap() error {
	return ErrMalformedSpecifier
}

// CatalogError reports a catalog backend failure for one distribution.
type CatalogError struct {
	// Backend names the backend that failed: "pip" or "pypi".
	Backend string

	// Name is the canonical distribution name that was queried.
	Name string

	// Err is the underlying failure.
	Err error
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("%s catalog: %s: %v", e.Backend, e.Name, e.Err)
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}
