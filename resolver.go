package minreqs

import (
	"context"
	"sync"

	"github.com/minreqs/go-minreqs/pep440"
)

const defaultMaxConcurrency = 5

// Resolver computes the minimum satisfying version for dependency
// specifiers and rewrites them as exact pins.
//
// Resolution of one specifier proceeds in three steps:
//  1. Parse: the text splits into name, extras, version clauses, marker.
//  2. Classify: exact clauses and inclusive lower bounds (>=, ~=) answer
//     the minimum from the written text alone; every other constrained
//     shape needs catalog knowledge.
//  3. Select: catalog-backed shapes take the smallest stable release that
//     satisfies every clause, walking the catalog in ascending order.
//
// Catalog backends are probed once at construction. The resolver is safe
// for concurrent use.
type Resolver struct {
	policy  Policy
	catalog Catalog
	cfg     *resolverConfig
}

// NewResolver creates a resolver for the given policy.
func NewResolver(policy Policy, opts ...Option) (*Resolver, error) {
	cfg, err := newResolverConfig(opts...)
	if err != nil {
		return nil, err
	}

	return &Resolver{
		policy:  policy,
		catalog: newCatalog(policy, cfg),
		cfg:     cfg,
	}, nil
}

// Policy returns the policy the resolver was built with.
func (r *Resolver) Policy() Policy {
	return r.policy
}

// Resolve parses one specifier and resolves it to its minimum version.
//
// Parse failures are the only hard errors. Catalog trouble and
// unsatisfiable constraints degrade to an unchanged Resolution carrying
// the reason in Outcome.
func (r *Resolver) Resolve(ctx context.Context, spec string) (Resolution, error) {
	parsed, err := ParseSpecifier(spec)
	if err != nil {
		return Resolution{}, err
	}
	return r.ResolveSpecifier(ctx, parsed), nil
}

// ResolveSpecifier resolves an already-parsed specifier.
func (r *Resolver) ResolveSpecifier(ctx context.Context, spec Specifier) Resolution {
	res := Resolution{Input: spec.Raw, Output: spec.Raw, Specifier: spec}

	if spec.Unconstrained() {
		return r.resolveUnconstrained(ctx, spec, res)
	}

	if exact, ok := exactClause(spec.Clauses); ok {
		if len(spec.Clauses) == 1 {
			res.Outcome = OutcomeAlreadyPinned
			return res
		}
		// An exact clause inside a larger set forces its version: the
		// remaining clauses either admit it or admit nothing at all.
		return r.pin(res, spec, exact.Raw, OutcomePinnedLowerBound)
	}

	if lower, ok := maxLowerBound(spec.Clauses); ok {
		return r.pin(res, spec, lower.Raw, OutcomePinnedLowerBound)
	}

	return r.resolveFromCatalog(ctx, spec, res)
}

// resolveUnconstrained handles bare names: the lowest stable release in
// the catalog, when policy allows pinning them at all.
func (r *Resolver) resolveUnconstrained(ctx context.Context, spec Specifier, res Resolution) Resolution {
	if !r.policy.PinUnconstrained {
		res.Outcome = OutcomeUnconstrainedSkipped
		return res
	}

	versions, outcome := r.queryCatalog(ctx, spec.CanonicalName)
	if outcome != "" {
		res.Outcome = outcome
		return res
	}

	pick, ok := lowestStable(versions)
	if !ok {
		r.cfg.log().Debug("empty catalog for unconstrained name", "name", spec.CanonicalName)
		res.Outcome = OutcomeNoSatisfyingVersion
		return res
	}
	return r.pin(res, spec, pick.Original, OutcomePinnedFromCatalog)
}

// resolveFromCatalog handles the clause shapes that cannot be answered
// from the written text alone: exclusive lower bounds, upper-bound-only
// sets, exclusions and wildcard matches. The smallest stable release
// satisfying every clause wins.
func (r *Resolver) resolveFromCatalog(ctx context.Context, spec Specifier, res Resolution) Resolution {
	versions, outcome := r.queryCatalog(ctx, spec.CanonicalName)
	if outcome != "" {
		res.Outcome = outcome
		return res
	}

	for _, v := range versions {
		if v.IsPrerelease() {
			continue
		}
		if pep440.Satisfies(v, spec.Clauses) {
			return r.pin(res, spec, v.Original, OutcomePinnedFromCatalog)
		}
	}

	r.cfg.log().Debug("no satisfying version",
		"name", spec.CanonicalName,
		"clauses", pep440.FormatClauses(spec.Clauses),
		"candidates", len(versions))
	res.Outcome = OutcomeNoSatisfyingVersion
	return res
}

// queryCatalog fetches the version list for a name, mapping failures to
// the outcome that explains an unchanged result.
func (r *Resolver) queryCatalog(ctx context.Context, name string) ([]pep440.Version, Outcome) {
	if r.policy.Offline {
		return nil, OutcomeOffline
	}
	if r.catalog == nil {
		return nil, OutcomeCatalogUnavailable
	}

	versions, err := r.catalog.Versions(ctx, name)
	if err != nil {
		r.cfg.log().Warn("catalog query failed", "name", name, "error", err)
		return nil, OutcomeCatalogUnavailable
	}
	return versions, ""
}

// pin fills a Resolution with the pinned output for one version spelling.
func (r *Resolver) pin(res Resolution, spec Specifier, version string, outcome Outcome) Resolution {
	res.Output = spec.pinned(version)
	res.Pinned = version
	res.Outcome = outcome
	res.Changed = res.Output != res.Input
	r.cfg.log().Debug("pinned specifier",
		"name", spec.CanonicalName,
		"version", version,
		"outcome", string(outcome))
	return res
}

// ResolveAll resolves specifiers concurrently with a bounded worker pool,
// preserving input order in the results. The first malformed specifier
// cancels the remaining work; catalog trouble never does.
func (r *Resolver) ResolveAll(ctx context.Context, specs []string) ([]Resolution, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	maxConcurrency := r.cfg.maxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = defaultMaxConcurrency
	}

	results := make([]Resolution, len(specs))
	sem := make(chan struct{}, maxConcurrency)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	setErr := func(err error) {
		if err == nil {
			return
		}
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for i, spec := range specs {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(i int, spec string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}
			res, err := r.Resolve(ctx, spec)
			if err != nil {
				setErr(err)
				return
			}
			results[i] = res
		}(i, spec)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// exactClause returns the first clause that names an exact version:
// non-wildcard equality or arbitrary equality.
func exactClause(clauses []pep440.Clause) (pep440.Clause, bool) {
	for _, c := range clauses {
		if (c.Op == pep440.OpEqual && !c.Wildcard) || c.Op == pep440.OpArbitraryEqual {
			return c, true
		}
	}
	return pep440.Clause{}, false
}

// maxLowerBound returns the inclusive lower-bound clause (>= or ~=) with
// the highest version. The highest bound is the earliest version every
// lower bound admits, so it answers the minimum without the catalog.
func maxLowerBound(clauses []pep440.Clause) (pep440.Clause, bool) {
	var best pep440.Clause
	found := false
	for _, c := range clauses {
		if c.Op != pep440.OpGreaterEqual && c.Op != pep440.OpCompatible {
			continue
		}
		if !found || pep440.Compare(c.Version, best.Version) > 0 {
			best = c
			found = true
		}
	}
	return best, found
}

// lowestStable returns the smallest non-prerelease version, falling back
// to the smallest pre-release when the catalog has no stable release at
// all. The second return is false for an empty catalog.
func lowestStable(versions []pep440.Version) (pep440.Version, bool) {
	for _, v := range versions {
		if !v.IsPrerelease() {
			return v, true
		}
	}
	if len(versions) > 0 {
		return versions[0], true
	}
	return pep440.Version{}, false
}
