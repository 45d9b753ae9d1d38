// Package pypi provides a client for the PyPI-style JSON API exposed by
// Python package indexes.
//
// The JSON API serves one document per distribution describing its
// metadata and every uploaded release file. This package enables:
//
//   - Type-safe access to project documents and release files
//   - Yanked-release awareness matching installer behavior
//   - Per-client caching so repeated lookups hit the network once
//
// # Index Structure
//
// An index exposes one endpoint per distribution:
//
//	https://pypi.org/pypi/{name}/json
//
// The document's "releases" object maps every published version to its
// uploaded files. A file can be yanked after upload; a release whose
// files are all yanked (or all deleted) is invisible to installers even
// though the version key remains in the document.
//
// # Usage
//
// Fetch the installable versions of a distribution:
//
//	client := pypi.NewClient(pypi.DefaultBaseURL)
//	versions, err := client.ReleaseVersions(ctx, "requests")
//	if err != nil {
//	    // Handle network or HTTP errors
//	}
//
// A missing distribution surfaces as a *StatusError with code 404:
//
//	var statusErr *pypi.StatusError
//	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
//	    // Unknown distribution
//	}
package pypi
