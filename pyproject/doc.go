// Package pyproject reads and patches pyproject.toml manifests.
//
// The manifest is the place a Python project declares its dependencies.
// This package parses the [project] tables for reading and performs
// text-level edits for writing, so a patched manifest differs from the
// original only in the edited lines. This enables:
//
//   - Reading declared and optional dependencies without losing the
//     original text
//   - Writing a resolved minimum-requirement group while preserving
//     comments, ordering and formatting everywhere else
//   - Safe in-place patching with an automatic backup file
//
// # Manifest Structure
//
// The tables this package touches:
//
//	[project]
//	name = "example"
//	dependencies = ["requests>=2.8.1", "numpy"]
//
//	[project.optional-dependencies]
//	dev = ["pytest"]
//	min-reqs = [
//	    "requests==2.8.1",
//	    "numpy==1.3.0",
//	]
//
// # Usage
//
// Read the declared dependencies:
//
//	doc, err := pyproject.Load("pyproject.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, dep := range doc.Dependencies() {
//	    fmt.Println(dep)
//	}
//
// Write resolved pins into the manifest, keeping a backup:
//
//	err := pyproject.PatchFile("pyproject.toml", pyproject.DefaultGroup, resolved)
//
// Re-running refreshes the group in place; the previous content stays at
// BackupPath("pyproject.toml").
package pyproject
