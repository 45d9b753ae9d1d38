package pep440

import (
	"strings"
)

// Operator is a version-specifier comparison operator.
//
// Reference: https://peps.python.org/pep-0440/#version-specifiers
type Operator string

const (
	OpCompatible     Operator = "~="  // compatible release
	OpEqual          Operator = "=="  // version matching
	OpNotEqual       Operator = "!="  // version exclusion
	OpLessEqual      Operator = "<="  // inclusive upper bound
	OpLess           Operator = "<"   // exclusive upper bound
	OpGreaterEqual   Operator = ">="  // inclusive lower bound
	OpGreater        Operator = ">"   // exclusive lower bound
	OpArbitraryEqual Operator = "===" // arbitrary string equality
)

// operatorOrder lists operators longest-first so that prefix scanning never
// mistakes "===" for "==" or ">=" for ">".
var operatorOrder = []Operator{
	OpArbitraryEqual, OpCompatible, OpEqual, OpNotEqual,
	OpLessEqual, OpGreaterEqual, OpLess, OpGreater,
}

// Clause is one (operator, version) constraint within a specifier.
// Immutable once parsed.
type Clause struct {
	Op Operator

	// Version is the parsed comparison version. It is the zero Version for
	// arbitrary equality, which compares raw strings only.
	Version Version

	// Raw is the version text as written, wildcard suffix included.
	Raw string

	// Wildcard marks prefix clauses such as ==1.4.* or !=1.3.*, valid only
	// with the == and != operators.
	Wildcard bool
}

// ParseClause parses a single constraint such as ">=1.20" or "==1.4.*".
func ParseClause(s string) (Clause, error) {
	trimmed := strings.TrimSpace(s)

	var op Operator
	for _, candidate := range operatorOrder {
		if strings.HasPrefix(trimmed, string(candidate)) {
			op = candidate
			break
		}
	}
	if op == "" {
		return Clause{}, &ParseError{Version: s, Message: "missing comparison operator"}
	}

	raw := strings.TrimSpace(trimmed[len(op):])
	if raw == "" {
		return Clause{}, &ParseError{Version: s, Message: "missing version after operator"}
	}

	c := Clause{Op: op, Raw: raw}

	// Arbitrary equality compares the raw string; anything goes.
	if op == OpArbitraryEqual {
		return c, nil
	}

	versionText := raw
	if strings.HasSuffix(versionText, ".*") {
		if op != OpEqual && op != OpNotEqual {
			return Clause{}, &ParseError{Version: s, Message: "wildcard suffix requires == or !="}
		}
		c.Wildcard = true
		versionText = strings.TrimSuffix(versionText, ".*")
	}

	v, err := Parse(versionText)
	if err != nil {
		return Clause{}, err
	}
	if op == OpCompatible && len(v.Release) < 2 {
		// ~= needs something to hold fixed: ~=1 is meaningless.
		return Clause{}, &ParseError{Version: s, Message: "compatible release requires at least two release segments"}
	}
	c.Version = v

	return c, nil
}

func (c Clause) String() string {
	return string(c.Op) + c.Raw
}

// MarshalText renders the clause in specifier syntax, so clauses embed
// as plain strings in JSON documents.
func (c Clause) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses a clause in place.
func (c *Clause) UnmarshalText(text []byte) error {
	parsed, err := ParseClause(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Match reports whether v satisfies the clause.
func (c Clause) Match(v Version) bool {
	switch c.Op {
	case OpEqual:
		if c.Wildcard {
			return matchPrefix(v, c.Version)
		}
		return Compare(v, c.Version) == 0
	case OpNotEqual:
		if c.Wildcard {
			return !matchPrefix(v, c.Version)
		}
		return Compare(v, c.Version) != 0
	case OpLessEqual:
		return Compare(v, c.Version) <= 0
	case OpGreaterEqual:
		return Compare(v, c.Version) >= 0
	case OpLess:
		return matchLess(v, c.Version)
	case OpGreater:
		return matchGreater(v, c.Version)
	case OpCompatible:
		return matchCompatible(v, c.Version)
	case OpArbitraryEqual:
		return strings.EqualFold(v.Original, c.Raw) || strings.EqualFold(v.String(), c.Raw)
	default:
		return false
	}
}

// Satisfies reports whether v satisfies every clause in the set. An empty
// set is satisfied by anything.
func Satisfies(v Version, clauses []Clause) bool {
	for _, c := range clauses {
		if !c.Match(v) {
			return false
		}
	}
	return true
}

// matchPrefix implements wildcard matching: the candidate's release padded
// to the prefix length must equal the prefix, within the same epoch.
// Pre/post/dev segments are ignored, so ==1.1.* matches 1.1a1.
func matchPrefix(v, prefix Version) bool {
	if v.Epoch != prefix.Epoch {
		return false
	}
	for i, want := range prefix.Release {
		got := 0
		if i < len(v.Release) {
			got = v.Release[i]
		}
		if got != want {
			return false
		}
	}
	return true
}

// matchLess implements the exclusive upper bound. A pre-release of the
// bound's own base does not satisfy <V unless V is itself a pre-release.
func matchLess(v, bound Version) bool {
	if Compare(v, bound) >= 0 {
		return false
	}
	if !bound.IsPrerelease() && v.IsPrerelease() && sameBase(v, bound) {
		return false
	}
	return true
}

// matchGreater implements the exclusive lower bound. A post-release or
// local variant of the bound's own base does not satisfy >V unless V is
// itself a post-release.
func matchGreater(v, bound Version) bool {
	if Compare(v, bound) <= 0 {
		return false
	}
	if sameBase(v, bound) {
		if bound.Post == nil && v.Post != nil {
			return false
		}
		if v.Local != "" {
			return false
		}
	}
	return true
}

// matchCompatible implements the compatible release rule:
// ~=X.Y.Z means >=X.Y.Z together with ==X.Y.*.
func matchCompatible(v, bound Version) bool {
	if v.Epoch != bound.Epoch {
		return false
	}
	if Compare(v, bound) < 0 {
		return false
	}
	prefix := bound.Release[:len(bound.Release)-1]
	for i, want := range prefix {
		got := 0
		if i < len(v.Release) {
			got = v.Release[i]
		}
		if got != want {
			return false
		}
	}
	return true
}

// FormatClauses joins clauses back into specifier syntax, comma-separated.
func FormatClauses(clauses []Clause) string {
	parts := make([]string, len(clauses))
	for i, c := range clauses {
		parts[i] = c.String()
	}
	return strings.Join(parts, ",")
}
