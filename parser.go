package minreqs

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/minreqs/go-minreqs/pep440"
)

// namePattern is the PEP 508 distribution name grammar: leading and
// trailing characters alphanumeric, separators allowed in between.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?`)

// canonicalSeparators matches runs of name separator characters.
var canonicalSeparators = regexp.MustCompile(`[-_.]+`)

// CanonicalName normalizes a distribution name for comparison: lowercased,
// with runs of "-", "_" and "." collapsed to a single "-".
//
// Reference: https://peps.python.org/pep-0503/#normalized-names
func CanonicalName(name string) string {
	return strings.ToLower(canonicalSeparators.ReplaceAllString(name, "-"))
}

// ParseSpecifier parses a dependency specifier of the form
//
//	name[extra,extra] op version, op version ; marker
//
// into its structural parts. The marker tail and the name-and-extras
// prefix are captured exactly as written so resolution output can
// preserve them byte-for-byte. Returns a *MalformedSpecifierError
// (wrapping ErrMalformedSpecifier) for text that does not conform.
func ParseSpecifier(s string) (Specifier, error) {
	spec := Specifier{Raw: s}

	// Everything after the first ";" is the environment marker, opaque.
	base := s
	if idx := strings.IndexByte(s, ';'); idx >= 0 {
		base = s[:idx]
		spec.Marker = s[idx+1:]
	}

	if strings.TrimSpace(base) == "" {
		return Specifier{}, &MalformedSpecifierError{Input: s, Reason: "empty specifier"}
	}

	nameStart := skipSpace(base, 0)
	name := namePattern.FindString(base[nameStart:])
	if name == "" {
		return Specifier{}, &MalformedSpecifierError{Input: s, Reason: "missing distribution name"}
	}
	spec.Name = name
	spec.CanonicalName = CanonicalName(name)

	pos := nameStart + len(name)

	// Optional extras bracket.
	i := skipSpace(base, pos)
	if i < len(base) && base[i] == '[' {
		end := strings.IndexByte(base[i:], ']')
		if end < 0 {
			return Specifier{}, &MalformedSpecifierError{Input: s, Reason: "unterminated extras"}
		}
		extras, err := parseExtras(base[i+1 : i+end])
		if err != nil {
			return Specifier{}, &MalformedSpecifierError{Input: s, Reason: err.Error()}
		}
		spec.Extras = extras
		pos = i + end + 1
	}

	// The rest of the base is the version clause list, optionally wrapped
	// in one pair of parentheses per the PEP 508 grammar.
	clauseStart := skipSpace(base, pos)
	if clauseStart == len(base) {
		spec.prefix = base
		return spec, nil
	}

	clauseText := base[clauseStart:]
	if clauseText[0] == '@' {
		return Specifier{}, &MalformedSpecifierError{Input: s, Reason: "direct URL references are not supported"}
	}
	if clauseText[0] == '(' {
		end := strings.IndexByte(clauseText, ')')
		if end < 0 {
			return Specifier{}, &MalformedSpecifierError{Input: s, Reason: "unterminated parenthesized clause list"}
		}
		if strings.TrimSpace(clauseText[end+1:]) != "" {
			return Specifier{}, &MalformedSpecifierError{Input: s, Reason: "unexpected text after version clauses"}
		}
		clauseText = clauseText[1:end]
	} else if !strings.ContainsRune("<>=!~", rune(clauseText[0])) {
		return Specifier{}, &MalformedSpecifierError{Input: s, Reason: "unexpected text after distribution name"}
	}

	for _, piece := range strings.Split(clauseText, ",") {
		if strings.TrimSpace(piece) == "" {
			return Specifier{}, &MalformedSpecifierError{Input: s, Reason: "empty version clause"}
		}
		clause, err := pep440.ParseClause(piece)
		if err != nil {
			return Specifier{}, &MalformedSpecifierError{Input: s, Reason: err.Error()}
		}
		spec.Clauses = append(spec.Clauses, clause)
	}

	spec.prefix = base[:clauseStart]
	return spec, nil
}

// parseExtras splits and normalizes the contents of an extras bracket.
// An empty bracket is allowed and yields no extras.
func parseExtras(inner string) ([]string, error) {
	if strings.TrimSpace(inner) == "" {
		return nil, nil
	}

	pieces := strings.Split(inner, ",")
	extras := make([]string, 0, len(pieces))
	for _, piece := range pieces {
		extra := strings.TrimSpace(piece)
		if extra == "" || namePattern.FindString(extra) != extra {
			return nil, fmt.Errorf("invalid extra %q", extra)
		}
		extras = append(extras, CanonicalName(extra))
	}
	return extras, nil
}

// skipSpace returns the index of the first non-blank character at or
// after i.
func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}
