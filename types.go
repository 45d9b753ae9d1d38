package minreqs

import (
	"strings"

	"github.com/minreqs/go-minreqs/pep440"
)

// Specifier represents one parsed dependency specifier: a distribution name,
// optional extras, conjunctive version clauses, and an optional environment
// marker.
//
// Reference: https://peps.python.org/pep-0508/
type Specifier struct {
	// Raw is the specifier exactly as given, whitespace included.
	Raw string `json:"raw"`

	// Name is the distribution name as written.
	Name string `json:"name"`

	// CanonicalName is Name normalized for comparison: lowercased, with
	// runs of "-", "_" and "." collapsed to a single "-".
	//
	// Reference: https://peps.python.org/pep-0503/#normalized-names
	CanonicalName string `json:"canonical_name"`

	// Extras lists the requested extras in written order, normalized the
	// same way as names.
	Extras []string `json:"extras,omitempty"`

	// Clauses are the version constraints in written order. All clauses
	// must hold at once. Zero clauses means the name is unconstrained.
	Clauses []pep440.Clause `json:"clauses,omitempty"`

	// Marker is the environment marker: everything after the first ";",
	// captured as written and never interpreted.
	Marker string `json:"marker,omitempty"`

	// prefix is the input text up to the first version clause (the name
	// and extras as written, surrounding whitespace included). Pinned
	// output is assembled from it so the written name survives verbatim.
	prefix string
}

// String returns the specifier as written.
func (s Specifier) String() string {
	return s.Raw
}

// Unconstrained reports whether the specifier carries no version clauses.
func (s Specifier) Unconstrained() bool {
	return len(s.Clauses) == 0
}

// pinned assembles the output for a pin at the given version spelling:
// the written name-and-extras prefix, a single == clause, and the marker
// tail reattached verbatim.
func (s Specifier) pinned(version string) string {
	prefix := s.prefix
	if prefix == "" {
		prefix = s.Name
		if len(s.Extras) > 0 {
			prefix += "[" + strings.Join(s.Extras, ",") + "]"
		}
	}
	out := prefix + "==" + version
	if s.Marker != "" {
		out += ";" + s.Marker
	}
	return out
}

// Policy controls resolution behavior. It is passed explicitly to every
// resolver; the library reads no environment variables itself.
type Policy struct {
	// PinUnconstrained pins bare names (no version clauses) to the lowest
	// stable release in the catalog. When false, bare names pass through
	// unchanged.
	PinUnconstrained bool `json:"pin_unconstrained"`

	// Offline disables all catalog access. Specifiers that can only be
	// resolved with catalog knowledge pass through unchanged.
	Offline bool `json:"offline"`

	// TryPip prefers the pip subprocess backend for catalog queries when
	// a pip executable is on PATH, falling back to the registry backend
	// on any failure.
	TryPip bool `json:"try_pip"`
}

// DefaultPolicy returns the policy used when nothing is configured:
// pin unconstrained names, query the catalog, try pip first.
func DefaultPolicy() Policy {
	return Policy{
		PinUnconstrained: true,
		Offline:          false,
		TryPip:           true,
	}
}

// Outcome identifies which resolution rule produced a result.
type Outcome string

const (
	// OutcomePinnedLowerBound means an inclusive lower bound (>=, ~=) or
	// exact clause answered the minimum directly, with no catalog access.
	OutcomePinnedLowerBound Outcome = "pinned-lower-bound"

	// OutcomePinnedFromCatalog means the minimum was selected from the
	// version catalog.
	OutcomePinnedFromCatalog Outcome = "pinned-from-catalog"

	// OutcomeAlreadyPinned means the specifier already names an exact
	// version; the input is returned unchanged.
	OutcomeAlreadyPinned Outcome = "already-pinned"

	// OutcomeUnconstrainedSkipped means a bare name was left unchanged
	// because Policy.PinUnconstrained is false.
	OutcomeUnconstrainedSkipped Outcome = "unconstrained-skipped"

	// OutcomeOffline means catalog access was required but Policy.Offline
	// is set; the input is returned unchanged.
	OutcomeOffline Outcome = "offline"

	// OutcomeCatalogUnavailable means every catalog backend failed or
	// timed out; the input is returned unchanged.
	OutcomeCatalogUnavailable Outcome = "catalog-unavailable"

	// OutcomeNoSatisfyingVersion means the catalog answered but no known
	// release satisfies every clause; the input is returned unchanged.
	OutcomeNoSatisfyingVersion Outcome = "no-satisfying-version"
)

// Resolution is the result of resolving one specifier.
type Resolution struct {
	// Input is the specifier exactly as given.
	Input string `json:"input"`

	// Output is the resolved specifier. When Changed is false it is
	// byte-for-byte equal to Input.
	Output string `json:"output"`

	// Specifier is the parsed form of the input.
	Specifier Specifier `json:"specifier"`

	// Pinned is the selected minimum version as spelled in Output.
	// Empty when nothing was pinned.
	Pinned string `json:"pinned,omitempty"`

	// Outcome reports which rule produced the result.
	Outcome Outcome `json:"outcome"`

	// Changed reports whether Output differs from Input.
	Changed bool `json:"changed"`
}
