package minreqs

import (
	"cmp"
	"slices"

	"github.com/minreqs/go-minreqs/pep440"
)

// PinChange represents an added or removed entry in a resolution diff.
type PinChange struct {
	// Name is the canonical distribution name.
	Name string `json:"name"`

	// Specifier is the resolved specifier for the entry.
	Specifier string `json:"specifier"`
}

// PinShift represents a pinned minimum that moved for an entry present
// in both resolutions.
type PinShift struct {
	// Name is the canonical distribution name.
	Name string `json:"name"`

	// OldVersion is the minimum in the old resolution.
	OldVersion string `json:"old_version"`

	// NewVersion is the minimum in the new resolution.
	NewVersion string `json:"new_version"`
}

// ResolutionDiff describes the differences between two resolved
// specifier sets.
//
// This is useful for:
//   - Reviewing how minimums move before writing them to a manifest
//   - Generating changelogs for lower-bound bumps
//   - CI checks that flag silent floor changes
//
// Example usage:
//
//	oldResults, _ := resolver.ResolveAll(ctx, oldSpecs)
//	newResults, _ := resolver.ResolveAll(ctx, newSpecs)
//	diff := DiffResolutions(oldResults, newResults)
//
//	if !diff.IsEmpty() {
//	    fmt.Printf("Changes: %d added, %d removed, %d raised, %d lowered\n",
//	        len(diff.Added), len(diff.Removed), len(diff.Raised), len(diff.Lowered))
//	}
type ResolutionDiff struct {
	// Added contains entries present in new but not in old.
	Added []PinChange `json:"added,omitempty"`

	// Removed contains entries present in old but not in new.
	Removed []PinChange `json:"removed,omitempty"`

	// Raised contains entries whose new minimum is higher.
	Raised []PinShift `json:"raised,omitempty"`

	// Lowered contains entries whose new minimum is lower.
	Lowered []PinShift `json:"lowered,omitempty"`
}

// IsEmpty returns true if there are no differences between the resolutions.
func (d *ResolutionDiff) IsEmpty() bool {
	return len(d.Added) == 0 &&
		len(d.Removed) == 0 &&
		len(d.Raised) == 0 &&
		len(d.Lowered) == 0
}

// TotalChanges returns the total number of changes (added + removed + raised + lowered).
func (d *ResolutionDiff) TotalChanges() int {
	return len(d.Added) + len(d.Removed) + len(d.Raised) + len(d.Lowered)
}

// diffEntry is one side of a comparison: the resolved specifier plus the
// version it settles on, when one can be read out of it.
type diffEntry struct {
	output     string
	version    pep440.Version
	hasVersion bool
}

// DiffResolutions computes the difference between two resolved sets.
//
// Entries are matched by canonical distribution name, so spelling
// variants of the same distribution compare as one entry. Version
// movement uses PEP 440 ordering; equivalent spellings such as "1.0"
// and "1.0.0" do not count as a shift. Entries that pin no parseable
// version on either side are compared by name only.
//
// Both arguments may be nil or empty. When a name appears more than
// once in a set, the last entry wins.
//
// Results are sorted alphabetically by name for consistent output.
func DiffResolutions(old, new []Resolution) *ResolutionDiff {
	diff := &ResolutionDiff{}

	oldEntries := diffEntries(old)
	newEntries := diffEntries(new)

	for name, newEntry := range newEntries {
		oldEntry, existedBefore := oldEntries[name]
		if !existedBefore {
			diff.Added = append(diff.Added, PinChange{
				Name:      name,
				Specifier: newEntry.output,
			})
			continue
		}
		if !oldEntry.hasVersion || !newEntry.hasVersion {
			continue
		}
		shift := PinShift{
			Name:       name,
			OldVersion: oldEntry.version.Original,
			NewVersion: newEntry.version.Original,
		}
		switch c := pep440.Compare(newEntry.version, oldEntry.version); {
		case c > 0:
			diff.Raised = append(diff.Raised, shift)
		case c < 0:
			diff.Lowered = append(diff.Lowered, shift)
		}
	}

	for name, oldEntry := range oldEntries {
		if _, existsNow := newEntries[name]; !existsNow {
			diff.Removed = append(diff.Removed, PinChange{
				Name:      name,
				Specifier: oldEntry.output,
			})
		}
	}

	sortPinChanges(diff.Added)
	sortPinChanges(diff.Removed)
	sortPinShifts(diff.Raised)
	sortPinShifts(diff.Lowered)

	return diff
}

// diffEntries indexes resolutions by canonical name. The version is the
// pin the resolver produced, or the exact clause already present in the
// input for resolutions that were left alone.
func diffEntries(results []Resolution) map[string]diffEntry {
	entries := make(map[string]diffEntry, len(results))
	for _, res := range results {
		entry := diffEntry{output: res.Output}
		if v, ok := resolvedVersion(res); ok {
			entry.version = v
			entry.hasVersion = true
		}
		entries[res.Specifier.CanonicalName] = entry
	}
	return entries
}

// resolvedVersion extracts the version a resolution settles on.
func resolvedVersion(res Resolution) (pep440.Version, bool) {
	if res.Pinned != "" {
		if v, err := pep440.Parse(res.Pinned); err == nil {
			return v, true
		}
		return pep440.Version{}, false
	}
	exact, ok := exactClause(res.Specifier.Clauses)
	if !ok || exact.Op == pep440.OpArbitraryEqual {
		return pep440.Version{}, false
	}
	return exact.Version, true
}

// sortPinChanges sorts a slice of PinChange by name.
func sortPinChanges(changes []PinChange) {
	slices.SortFunc(changes, func(a, b PinChange) int {
		return cmp.Compare(a.Name, b.Name)
	})
}

// sortPinShifts sorts a slice of PinShift by name.
func sortPinShifts(shifts []PinShift) {
	slices.SortFunc(shifts, func(a, b PinShift) int {
		return cmp.Compare(a.Name, b.Name)
	})
}
