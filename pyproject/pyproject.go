package pyproject

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// filePermissions is the file permission mode for manifests and backups
// this package writes. Using 0600 for security (owner read/write only).
const filePermissions = 0o600

// DefaultGroup is the optional-dependency group that receives pinned
// minimum requirements.
const DefaultGroup = "min-reqs"

// Document is a parsed pyproject.toml manifest together with its
// original bytes. Edits work on the original text, so formatting and
// comments outside the edited lines survive byte-for-byte.
type Document struct {
	raw      []byte
	manifest manifest
}

// manifest mirrors the subset of pyproject.toml this package reads.
type manifest struct {
	Project projectTable `toml:"project"`
}

type projectTable struct {
	Name                 string              `toml:"name"`
	Dependencies         []string            `toml:"dependencies"`
	OptionalDependencies map[string][]string `toml:"optional-dependencies"`
}

// Parse parses pyproject.toml data.
func Parse(data []byte) (*Document, error) {
	var m manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse pyproject.toml: %w", err)
	}
	return &Document{raw: data, manifest: m}, nil
}

// Load reads and parses a manifest from the given path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return Parse(data)
}

// Name returns the declared project name, empty when the manifest has
// no [project] table.
func (d *Document) Name() string {
	return d.manifest.Project.Name
}

// Dependencies returns the [project] dependencies list in declaration
// order.
func (d *Document) Dependencies() []string {
	return d.manifest.Project.Dependencies
}

// OptionalDependencies returns one optional-dependency group.
// Returns nil when the group does not exist.
func (d *Document) OptionalDependencies(group string) []string {
	return d.manifest.Project.OptionalDependencies[group]
}

// Bytes returns the manifest exactly as read.
func (d *Document) Bytes() []byte {
	return d.raw
}

// Exists returns true if a manifest exists at the given path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// DefaultPath returns the manifest path relative to a project root.
func DefaultPath(root string) string {
	if root == "" {
		return "pyproject.toml"
	}
	return filepath.Join(root, "pyproject.toml")
}

// BackupPath returns where PatchFile keeps the pre-patch content.
func BackupPath(path string) string {
	return path + ".BAK"
}
