// Package e2e exercises the full resolution pipeline: specifier parsing,
// catalog backends against a live test index, and manifest patching.
package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	minreqs "github.com/minreqs/go-minreqs"
	"github.com/minreqs/go-minreqs/pypi"
	"github.com/minreqs/go-minreqs/pyproject"
)

// Type aliases for easier usage in tests
type Resolution = minreqs.Resolution
type Policy = minreqs.Policy

// testIndex serves the package index JSON API for a fixed set of
// distributions. Each request for an unknown name returns 404.
func testIndex(t *testing.T, releases map[string][]string) (*httptest.Server, *atomic.Int64) {
	t.Helper()

	var requests atomic.Int64
	mux := http.NewServeMux()
	for name, versions := range releases {
		project := pypi.Project{
			Info:     pypi.Info{Name: name},
			Releases: make(map[string][]pypi.ReleaseFile, len(versions)),
		}
		for _, v := range versions {
			project.Releases[v] = []pypi.ReleaseFile{
				{Filename: fmt.Sprintf("%s-%s.tar.gz", name, v), PackageType: "sdist"},
			}
		}
		body, err := json.Marshal(project)
		if err != nil {
			t.Fatalf("failed to marshal project %s: %v", name, err)
		}
		mux.HandleFunc("/pypi/"+name+"/json", func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(body)
		})
	}

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &requests
}

// createTestProject creates a temporary directory holding a pyproject.toml.
func createTestProject(t *testing.T, manifest string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "pyproject.toml")
	if err := os.WriteFile(path, []byte(manifest), 0o600); err != nil {
		t.Fatalf("failed to write pyproject.toml: %v", err)
	}
	return path
}

// failingPip writes an executable that exits nonzero, standing in for a
// pip installation that cannot reach its index.
func failingPip(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pip")
	script := "#!/bin/sh\necho 'ERROR: Could not find a version' >&2\nexit 1\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("failed to write fake pip: %v", err)
	}
	return path
}

func TestE2E_RequirementsPinning(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	server, _ := testIndex(t, map[string][]string{
		"numpy":    {"1.3.0", "1.4.0rc1", "1.4.0", "1.4.1", "2.0.0"},
		"requests": {"2.0.0", "2.8.1", "2.31.0"},
	})

	resolver, err := minreqs.NewResolver(
		Policy{PinUnconstrained: true, TryPip: false},
		minreqs.WithIndexURL(server.URL),
	)
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}

	specs := []string{
		"numpy>1.3",
		"requests",
		"flask>=2.0.1",
		"pip==23.1",
		"numpy[extra]<1.4.1; python_version >= '3.7'",
	}
	results, err := resolver.ResolveAll(context.Background(), specs)
	if err != nil {
		t.Fatalf("ResolveAll failed: %v", err)
	}

	want := []struct {
		output  string
		outcome minreqs.Outcome
	}{
		{"numpy==1.4.0", minreqs.OutcomePinnedFromCatalog},
		{"requests==2.0.0", minreqs.OutcomePinnedFromCatalog},
		{"flask==2.0.1", minreqs.OutcomePinnedLowerBound},
		{"pip==23.1", minreqs.OutcomeAlreadyPinned},
		{"numpy[extra]==1.3.0; python_version >= '3.7'", minreqs.OutcomePinnedFromCatalog},
	}
	for i, w := range want {
		if results[i].Output != w.output {
			t.Errorf("results[%d].Output = %q, want %q", i, results[i].Output, w.output)
		}
		if results[i].Outcome != w.outcome {
			t.Errorf("results[%d].Outcome = %q, want %q", i, results[i].Outcome, w.outcome)
		}
	}
}

func TestE2E_ManifestPatchFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	server, _ := testIndex(t, map[string][]string{
		"numpy": {"1.20.0", "1.21.0", "1.21.5"},
	})

	manifest := `[project]
name = "demo"
version = "0.1.0"
dependencies = [
    "numpy>1.20",
    "requests>=2.8.1",
]
`
	path := createTestProject(t, manifest)

	doc, err := pyproject.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	resolver, err := minreqs.NewResolver(
		Policy{TryPip: false},
		minreqs.WithIndexURL(server.URL),
	)
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}

	results, err := resolver.ResolveAll(context.Background(), doc.Dependencies())
	if err != nil {
		t.Fatalf("ResolveAll failed: %v", err)
	}
	resolved := make([]string, len(results))
	for i, res := range results {
		resolved[i] = res.Output
	}

	if err := pyproject.PatchFile(path, pyproject.DefaultGroup, resolved); err != nil {
		t.Fatalf("PatchFile failed: %v", err)
	}

	patched, err := pyproject.Load(path)
	if err != nil {
		t.Fatalf("failed to reload manifest: %v", err)
	}
	group := patched.OptionalDependencies(pyproject.DefaultGroup)
	wantGroup := []string{"numpy==1.21.0", "requests==2.8.1"}
	if len(group) != len(wantGroup) {
		t.Fatalf("group = %v, want %v", group, wantGroup)
	}
	for i := range wantGroup {
		if group[i] != wantGroup[i] {
			t.Errorf("group[%d] = %q, want %q", i, group[i], wantGroup[i])
		}
	}

	// The original dependency table stays intact.
	deps := patched.Dependencies()
	if len(deps) != 2 || deps[0] != "numpy>1.20" {
		t.Errorf("dependencies changed: %v", deps)
	}

	backup, err := os.ReadFile(pyproject.BackupPath(path))
	if err != nil {
		t.Fatalf("failed to read backup: %v", err)
	}
	if string(backup) != manifest {
		t.Error("backup does not match the original manifest")
	}
}

func TestE2E_PipFailureFallsBackToRegistry(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	server, requests := testIndex(t, map[string][]string{
		"numpy": {"1.3.0", "1.4.1"},
	})

	resolver, err := minreqs.NewResolver(
		Policy{TryPip: true},
		minreqs.WithIndexURL(server.URL),
		minreqs.WithPipExecutable(failingPip(t)),
	)
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}

	res, err := resolver.Resolve(context.Background(), "numpy>1.3")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Output != "numpy==1.4.1" {
		t.Errorf("Output = %q, want %q", res.Output, "numpy==1.4.1")
	}
	if requests.Load() == 0 {
		t.Error("expected the registry backend to be queried after pip failed")
	}
}

func TestE2E_ConcurrentResolutionSharesCatalog(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	server, requests := testIndex(t, map[string][]string{
		"numpy": {"1.3.0", "1.4.1", "2.0.0"},
	})

	resolver, err := minreqs.NewResolver(
		Policy{TryPip: false},
		minreqs.WithIndexURL(server.URL),
		minreqs.WithMaxConcurrency(4),
	)
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}

	// Warm the memo with a single resolution. The whole batch below
	// shares the cached listing, so the index sees exactly one request.
	if _, err := resolver.Resolve(context.Background(), "numpy>1.3"); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	specs := make([]string, 16)
	for i := range specs {
		specs[i] = fmt.Sprintf("numpy!=1.%d.0", i)
	}
	results, err := resolver.ResolveAll(context.Background(), specs)
	if err != nil {
		t.Fatalf("ResolveAll failed: %v", err)
	}

	for i, res := range results {
		if !strings.HasPrefix(res.Output, "numpy==") {
			t.Errorf("results[%d].Output = %q, want a pin", i, res.Output)
		}
	}
	if got := requests.Load(); got != 1 {
		t.Errorf("index requests = %d, want 1 (memo shares queries)", got)
	}
}
