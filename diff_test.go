package minreqs

import (
	"context"
	"testing"
)

// pinnedResolutions resolves specs offline so tests can build diff
// inputs without a catalog.
func pinnedResolutions(t *testing.T, specs ...string) []Resolution {
	t.Helper()
	r, err := NewResolver(Policy{Offline: true})
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}
	results, err := r.ResolveAll(context.Background(), specs)
	if err != nil {
		t.Fatalf("ResolveAll failed: %v", err)
	}
	return results
}

func TestDiffResolutions_NilInputs(t *testing.T) {
	tests := []struct {
		name string
		old  []Resolution
		new  []Resolution
	}{
		{"both nil", nil, nil},
		{"old nil", nil, []Resolution{}},
		{"new nil", []Resolution{}, nil},
		{"both empty", []Resolution{}, []Resolution{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diff := DiffResolutions(tt.old, tt.new)
			if diff == nil {
				t.Fatal("DiffResolutions returned nil")
			}
			if !diff.IsEmpty() {
				t.Errorf("expected empty diff, got %+v", diff)
			}
		})
	}
}

func TestDiffResolutions_Identical(t *testing.T) {
	old := pinnedResolutions(t, "numpy==1.21", "requests==2.8.1")
	new := pinnedResolutions(t, "numpy==1.21", "requests==2.8.1")

	diff := DiffResolutions(old, new)

	if !diff.IsEmpty() {
		t.Errorf("expected empty diff for identical sets, got %+v", diff)
	}
	if diff.TotalChanges() != 0 {
		t.Errorf("TotalChanges() = %d, want 0", diff.TotalChanges())
	}
}

func TestDiffResolutions_Added(t *testing.T) {
	old := pinnedResolutions(t, "numpy==1.21")
	new := pinnedResolutions(t, "numpy==1.21", "requests==2.8.1", "flask==2.0")

	diff := DiffResolutions(old, new)

	if len(diff.Added) != 2 {
		t.Fatalf("expected 2 added entries, got %d", len(diff.Added))
	}
	// Should be sorted by name
	if diff.Added[0].Name != "flask" || diff.Added[1].Name != "requests" {
		t.Errorf("added entries not sorted: %+v", diff.Added)
	}
	if diff.Added[0].Specifier != "flask==2.0" {
		t.Errorf("added specifier = %q, want %q", diff.Added[0].Specifier, "flask==2.0")
	}
	if len(diff.Removed) != 0 {
		t.Errorf("expected 0 removed, got %d", len(diff.Removed))
	}
	if len(diff.Raised) != 0 {
		t.Errorf("expected 0 raised, got %d", len(diff.Raised))
	}
}

func TestDiffResolutions_Removed(t *testing.T) {
	old := pinnedResolutions(t, "numpy==1.21", "requests==2.8.1")
	new := pinnedResolutions(t, "numpy==1.21")

	diff := DiffResolutions(old, new)

	if len(diff.Removed) != 1 {
		t.Fatalf("expected 1 removed entry, got %d", len(diff.Removed))
	}
	if diff.Removed[0].Name != "requests" {
		t.Errorf("removed entry = %+v, want requests", diff.Removed[0])
	}
	if len(diff.Added) != 0 {
		t.Errorf("expected 0 added, got %d", len(diff.Added))
	}
}

func TestDiffResolutions_RaisedAndLowered(t *testing.T) {
	old := pinnedResolutions(t, "numpy==1.20", "flask==2.1", "requests==2.8.1")
	new := pinnedResolutions(t, "numpy==1.21", "flask==2.0", "requests==2.8.1")

	diff := DiffResolutions(old, new)

	if len(diff.Raised) != 1 {
		t.Fatalf("expected 1 raised entry, got %+v", diff.Raised)
	}
	raised := diff.Raised[0]
	if raised.Name != "numpy" || raised.OldVersion != "1.20" || raised.NewVersion != "1.21" {
		t.Errorf("raised = %+v, want numpy 1.20 -> 1.21", raised)
	}

	if len(diff.Lowered) != 1 {
		t.Fatalf("expected 1 lowered entry, got %+v", diff.Lowered)
	}
	lowered := diff.Lowered[0]
	if lowered.Name != "flask" || lowered.OldVersion != "2.1" || lowered.NewVersion != "2.0" {
		t.Errorf("lowered = %+v, want flask 2.1 -> 2.0", lowered)
	}

	if diff.TotalChanges() != 2 {
		t.Errorf("TotalChanges() = %d, want 2", diff.TotalChanges())
	}
}

func TestDiffResolutions_EquivalentSpellings(t *testing.T) {
	old := pinnedResolutions(t, "numpy==1.0")
	new := pinnedResolutions(t, "numpy==1.0.0")

	diff := DiffResolutions(old, new)

	if !diff.IsEmpty() {
		t.Errorf("expected equivalent spellings to produce no diff, got %+v", diff)
	}
}

func TestDiffResolutions_MatchesByCanonicalName(t *testing.T) {
	old := pinnedResolutions(t, "Zope.Interface==5.0")
	new := pinnedResolutions(t, "zope-interface==5.1")

	diff := DiffResolutions(old, new)

	if len(diff.Raised) != 1 {
		t.Fatalf("expected spelling variants to match as one entry, got %+v", diff)
	}
	if diff.Raised[0].Name != "zope-interface" {
		t.Errorf("raised name = %q, want zope-interface", diff.Raised[0].Name)
	}
}

func TestDiffResolutions_LowerBoundPins(t *testing.T) {
	// Offline resolution pins inclusive lower bounds, so a diff can track
	// floor movement straight from two requirement sets.
	old := pinnedResolutions(t, "numpy>=1.20")
	new := pinnedResolutions(t, "numpy>=1.21,<2.0")

	diff := DiffResolutions(old, new)

	if len(diff.Raised) != 1 {
		t.Fatalf("expected 1 raised entry, got %+v", diff)
	}
	if diff.Raised[0].OldVersion != "1.20" || diff.Raised[0].NewVersion != "1.21" {
		t.Errorf("raised = %+v, want 1.20 -> 1.21", diff.Raised[0])
	}
}

func TestDiffResolutions_UnpinnedEntriesCompareByName(t *testing.T) {
	old := pinnedResolutions(t, "flask", "numpy>1.3")
	new := pinnedResolutions(t, "flask", "numpy>1.3")

	diff := DiffResolutions(old, new)

	if !diff.IsEmpty() {
		t.Errorf("expected entries without pins to diff as unchanged, got %+v", diff)
	}
}
