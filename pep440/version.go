// Package pep440 implements Python's public version scheme: parsing,
// normalization, total ordering, and version-specifier clause matching.
//
// Reference: https://peps.python.org/pep-0440/
//
// Version format: [N!]N(.N)*[{a|b|rc}N][.postN][.devN][+LOCAL]
//   - N!: optional epoch
//   - N(.N)*: release segments, compared numerically with zero padding
//     (1.0 and 1.0.0 are equal)
//   - aN/bN/rcN: optional pre-release
//   - .postN: optional post-release
//   - .devN: optional developmental release
//   - +LOCAL: local version label, accepted but ignored for ordering
//
// Ordering at the same release: .devN < aN < bN < rcN < final < .postN.
package pep440

import (
	"cmp"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// versionPattern is the permissive parsing pattern from PEP 440 Appendix B,
// without the leading/trailing whitespace groups (callers trim first).
// Alternate spellings (alpha, beta, c, pre, preview, rev, r, -N) are accepted
// and normalized during parsing.
var versionPattern = regexp.MustCompile(`(?i)^v?` +
	`(?:(?P<epoch>[0-9]+)!)?` +
	`(?P<release>[0-9]+(?:\.[0-9]+)*)` +
	`(?:[-_.]?(?P<prel>alpha|beta|preview|pre|a|b|c|rc)[-_.]?(?P<pren>[0-9]+)?)?` +
	`(?:-(?P<postn1>[0-9]+)|[-_.]?(?P<postl>post|rev|r)[-_.]?(?P<postn2>[0-9]+)?)?` +
	`(?:[-_.]?(?P<devl>dev)[-_.]?(?P<devn>[0-9]+)?)?` +
	`(?:\+(?P<local>[a-z0-9]+(?:[-_.][a-z0-9]+)*))?$`)

var (
	epochIdx   = versionPattern.SubexpIndex("epoch")
	releaseIdx = versionPattern.SubexpIndex("release")
	prelIdx    = versionPattern.SubexpIndex("prel")
	prenIdx    = versionPattern.SubexpIndex("pren")
	postn1Idx  = versionPattern.SubexpIndex("postn1")
	postlIdx   = versionPattern.SubexpIndex("postl")
	postn2Idx  = versionPattern.SubexpIndex("postn2")
	devlIdx    = versionPattern.SubexpIndex("devl")
	devnIdx    = versionPattern.SubexpIndex("devn")
	localIdx   = versionPattern.SubexpIndex("local")
)

// PreRelease is a pre-release segment: a normalized phase plus a number.
// Phase is one of "a", "b", "rc" after normalization
// (alpha -> a, beta -> b, c/pre/preview -> rc).
type PreRelease struct {
	Phase  string
	Number int
}

// Version is a parsed PEP 440 version. The zero value is not a valid
// version; use Parse or MustParse.
type Version struct {
	Epoch   int
	Release []int
	Pre     *PreRelease
	Post    *int // nil means no post-release segment
	Dev     *int // nil means no developmental segment
	Local   string

	// Original is the input string as given to Parse, trimmed. Catalog
	// entries carry their source spelling here so output can echo it.
	Original string
}

// ParseError reports an input that does not conform to the version scheme.
type ParseError struct {
	Version string
	Message string
}

func (e *ParseError) Error() string {
	return "bad version " + strconv.Quote(e.Version) + ": " + e.Message
}

// Parse parses a version string into its components. Alternate spellings
// are normalized; missing segment numbers default to zero.
func Parse(s string) (Version, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Version{}, &ParseError{Version: s, Message: "empty version"}
	}

	match := versionPattern.FindStringSubmatch(trimmed)
	if match == nil {
		return Version{}, &ParseError{Version: s, Message: "does not match the public version scheme"}
	}

	v := Version{Original: trimmed}

	var err error
	if v.Epoch, err = segmentNumber(match[epochIdx]); err != nil {
		return Version{}, &ParseError{Version: s, Message: "epoch out of range"}
	}

	for _, part := range strings.Split(match[releaseIdx], ".") {
		n, err := strconv.Atoi(part)
		if err != nil {
			return Version{}, &ParseError{Version: s, Message: "release segment out of range"}
		}
		v.Release = append(v.Release, n)
	}

	if phase := strings.ToLower(match[prelIdx]); phase != "" {
		n, err := segmentNumber(match[prenIdx])
		if err != nil {
			return Version{}, &ParseError{Version: s, Message: "pre-release number out of range"}
		}
		v.Pre = &PreRelease{Phase: normalizePhase(phase), Number: n}
	}

	if match[postn1Idx] != "" || match[postlIdx] != "" {
		n, err := segmentNumber(match[postn1Idx] + match[postn2Idx])
		if err != nil {
			return Version{}, &ParseError{Version: s, Message: "post-release number out of range"}
		}
		v.Post = &n
	}

	if match[devlIdx] != "" {
		n, err := segmentNumber(match[devnIdx])
		if err != nil {
			return Version{}, &ParseError{Version: s, Message: "dev-release number out of range"}
		}
		v.Dev = &n
	}

	v.Local = normalizeLocal(match[localIdx])

	return v, nil
}

// normalizeLocal lowercases a local version label and replaces its
// segment separators with dots, so +Foo_Bar and +foo.bar are the same
// label.
func normalizeLocal(local string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', '_':
			return '.'
		}
		return r
	}, strings.ToLower(local))
}

// MustParse is like Parse but panics on malformed input. Intended for
// tests and package-level literals.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// segmentNumber parses an optional segment number, defaulting to zero
// ("1.0a" and "1.0a0" are the same version).
func segmentNumber(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func normalizePhase(phase string) string {
	switch phase {
	case "alpha":
		return "a"
	case "beta":
		return "b"
	case "c", "pre", "preview":
		return "rc"
	default:
		return phase
	}
}

// IsPrerelease reports whether the version is a pre-release or a
// developmental release. Post-releases of final versions are not
// pre-releases.
func (v Version) IsPrerelease() bool {
	return v.Pre != nil || v.Dev != nil
}

// String returns the normalized form of the version.
func (v Version) String() string {
	var b strings.Builder
	if v.Epoch != 0 {
		b.WriteString(strconv.Itoa(v.Epoch))
		b.WriteByte('!')
	}
	for i, n := range v.Release {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.Itoa(n))
	}
	if v.Pre != nil {
		b.WriteString(v.Pre.Phase)
		b.WriteString(strconv.Itoa(v.Pre.Number))
	}
	if v.Post != nil {
		b.WriteString(".post")
		b.WriteString(strconv.Itoa(*v.Post))
	}
	if v.Dev != nil {
		b.WriteString(".dev")
		b.WriteString(strconv.Itoa(*v.Dev))
	}
	if v.Local != "" {
		b.WriteByte('+')
		b.WriteString(v.Local)
	}
	return b.String()
}

// MarshalText renders the normalized form, so versions embed as plain
// strings in JSON and TOML documents.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText parses a version in place.
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Compare compares two versions per the PEP 440 total order.
// Returns -1 if a < b, 0 if a == b, 1 if a > b. Local labels are ignored.
func Compare(a, b Version) int {
	if c := cmp.Compare(a.Epoch, b.Epoch); c != 0 {
		return c
	}
	if c := compareRelease(a.Release, b.Release); c != 0 {
		return c
	}
	if c := comparePreKey(a, b); c != 0 {
		return c
	}
	if c := comparePostKey(a, b); c != 0 {
		return c
	}
	return compareDevKey(a, b)
}

// compareRelease compares release segments numerically with zero padding,
// so 1.0 == 1.0.0 and 1.2 < 1.2.1.
func compareRelease(a, b []int) int {
	n := max(len(a), len(b))
	for i := 0; i < n; i++ {
		var av, bv int
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if c := cmp.Compare(av, bv); c != 0 {
			return c
		}
	}
	return 0
}

// comparePreKey orders dev-only releases before pre-releases before finals
// at the same release: 1.0.dev1 < 1.0a1 < 1.0b1 < 1.0rc1 < 1.0.
func comparePreKey(a, b Version) int {
	ra, pa, na := preKey(a)
	rb, pb, nb := preKey(b)
	if c := cmp.Compare(ra, rb); c != 0 {
		return c
	}
	if c := cmp.Compare(pa, pb); c != 0 {
		return c
	}
	return cmp.Compare(na, nb)
}

func preKey(v Version) (rank, phase, num int) {
	switch {
	case v.Pre == nil && v.Post == nil && v.Dev != nil:
		return -1, 0, 0
	case v.Pre == nil:
		return 1, 0, 0
	default:
		return 0, phaseRank(v.Pre.Phase), v.Pre.Number
	}
}

func phaseRank(phase string) int {
	switch phase {
	case "a":
		return 0
	case "b":
		return 1
	default: // "rc"
		return 2
	}
}

// comparePostKey orders finals before their post-releases: 1.0 < 1.0.post0.
func comparePostKey(a, b Version) int {
	an, bn := -1, -1
	if a.Post != nil {
		an = *a.Post
	}
	if b.Post != nil {
		bn = *b.Post
	}
	return cmp.Compare(an, bn)
}

// compareDevKey orders dev releases before their target: 1.0a1.dev1 < 1.0a1.
func compareDevKey(a, b Version) int {
	if (a.Dev == nil) != (b.Dev == nil) {
		if a.Dev == nil {
			return 1
		}
		return -1
	}
	if a.Dev == nil {
		return 0
	}
	return cmp.Compare(*a.Dev, *b.Dev)
}

// sameBase reports whether two versions share an epoch and release,
// ignoring pre/post/dev segments. "Base version" in PEP 440 terms.
func sameBase(a, b Version) bool {
	return a.Epoch == b.Epoch && compareRelease(a.Release, b.Release) == 0
}

// Sort sorts versions ascending, in place. Equal versions keep their
// relative input order.
func Sort(versions []Version) {
	slices.SortStableFunc(versions, Compare)
}

// Max returns the higher of two versions; a wins ties.
func Max(a, b Version) Version {
	if Compare(a, b) >= 0 {
		return a
	}
	return b
}
