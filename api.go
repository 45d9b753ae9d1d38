// Package minreqs rewrites Python dependency specifiers to pin the
// minimum version that satisfies their constraints.
//
// Projects that declare `pkg >= 1.4` are routinely tested only against the
// latest release, so the floor they advertise rots. Pinning every
// requirement at its declared minimum (`pkg == 1.4`) produces the
// environment for testing whether those floors still hold.
//
// # Overview
//
// The package provides three main components:
//
//   - ParseSpecifier: splits a PEP 508-style requirement string into
//     name, extras, version clauses and environment marker
//   - Resolver: computes the minimum satisfying version for one or many
//     specifiers and rewrites them as exact pins
//   - Catalog: supplies the known versions of a distribution, backed by
//     the pip executable or by the package index JSON API
//
// # Quick Start
//
// The simplest way to resolve specifiers:
//
//	// One specifier, default policy
//	res, err := minreqs.Resolve(ctx, "requests>=2.28", minreqs.DefaultPolicy())
//
//	// A whole requirement list, order preserved
//	results, err := minreqs.ResolveAll(ctx, specs, minreqs.DefaultPolicy())
//
//	// A reusable resolver with a custom index
//	r, err := minreqs.NewResolver(minreqs.DefaultPolicy(),
//	    minreqs.WithIndexURL("https://pypi.example.com"))
//
// # Offline Behavior
//
// Inclusive lower bounds (>=, ~=) and exact pins resolve from the written
// text alone, so they work offline. Shapes that need catalog knowledge
// (bare names, strict bounds, exclusions) degrade gracefully: the
// specifier passes through unchanged and Resolution.Outcome records why.
// Only malformed input is a hard error.
//
// # Thread Safety
//
// All public types in this package are safe for concurrent use.
package minreqs

import "context"

// Resolve parses one specifier and resolves it to its minimum version.
//
// This is the recommended entry point for one-off resolution. Reuse a
// Resolver when processing many specifiers against the same catalog.
func Resolve(ctx context.Context, spec string, policy Policy, opts ...Option) (Resolution, error) {
	r, err := NewResolver(policy, opts...)
	if err != nil {
		return Resolution{}, err
	}
	return r.Resolve(ctx, spec)
}

// ResolveAll resolves a list of specifiers concurrently, preserving
// input order in the results.
func ResolveAll(ctx context.Context, specs []string, policy Policy, opts ...Option) ([]Resolution, error) {
	r, err := NewResolver(policy, opts...)
	if err != nil {
		return nil, err
	}
	return r.ResolveAll(ctx, specs)
}
