package minreqs

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/minreqs/go-minreqs/pep440"
)

// pipVersionsPrefix marks the line of "pip index versions" output that
// carries the comma-separated version list.
const pipVersionsPrefix = "Available versions:"

// PipCatalog queries published versions through a pip executable using
// "pip index versions <name>". pip answers from the configured index,
// so it sees the same mirrors and credentials as the user's installs.
type PipCatalog struct {
	path string
}

var _ Catalog = (*PipCatalog)(nil)

// NewPipCatalog locates the pip executable, probing PATH when no
// explicit path is given. An error means the backend is unavailable.
func NewPipCatalog(path string) (*PipCatalog, error) {
	if path == "" {
		found, err := exec.LookPath("pip")
		if err != nil {
			return nil, fmt.Errorf("pip not found in PATH: %w", err)
		}
		path = found
	}
	return &PipCatalog{path: path}, nil
}

// Path returns the resolved pip executable path.
func (c *PipCatalog) Path() string {
	return c.path
}

// Versions runs pip and parses the version list from its output.
func (c *PipCatalog) Versions(ctx context.Context, name string) ([]pep440.Version, error) {
	cmd := exec.CommandContext(ctx, c.path, "index", "versions", name)
	out, err := cmd.Output()
	if err != nil {
		return nil, &CatalogError{Backend: "pip", Name: name, Err: exitErrorDetail(err)}
	}

	versions, err := parsePipVersions(string(out))
	if err != nil {
		return nil, &CatalogError{Backend: "pip", Name: name, Err: err}
	}
	return versions, nil
}

// parsePipVersions extracts the list after the "Available versions:"
// marker. pip prints versions newest first; the result is re-sorted
// ascending with unparsable entries dropped.
func parsePipVersions(output string) ([]pep440.Version, error) {
	for _, line := range strings.Split(output, "\n") {
		rest, ok := strings.CutPrefix(strings.TrimSpace(line), pipVersionsPrefix)
		if !ok {
			continue
		}

		raw := strings.Split(strings.TrimSpace(rest), ",")
		for i := range raw {
			raw[i] = strings.TrimSpace(raw[i])
		}
		return parseVersions(raw), nil
	}
	return nil, fmt.Errorf("no %q line in pip output", pipVersionsPrefix)
}

// exitErrorDetail surfaces captured stderr from a failed pip invocation.
func exitErrorDetail(err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
	}
	return err
}
