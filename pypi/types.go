package pypi

// Project represents the JSON API document for one distribution.
// This matches the response of the /pypi/{name}/json endpoint.
type Project struct {
	// Info describes the latest release of the distribution.
	Info Info `json:"info"`

	// Releases maps version strings to the files uploaded for that
	// version. A release may have zero files when every upload was
	// removed; such a release cannot be installed.
	Releases map[string][]ReleaseFile `json:"releases"`
}

// Info is the distribution metadata block of a project document.
type Info struct {
	// Name is the distribution name as registered on the index.
	Name string `json:"name"`

	// Version is the latest release version.
	Version string `json:"version"`

	// Summary is the one-line project description.
	Summary string `json:"summary,omitempty"`

	// HomePage is the URL to the project's homepage.
	HomePage string `json:"home_page,omitempty"`

	// RequiresPython is the Python version constraint of the latest
	// release, if declared.
	RequiresPython string `json:"requires_python,omitempty"`
}

// ReleaseFile describes one uploaded file of a release.
type ReleaseFile struct {
	// Filename is the uploaded file's name.
	Filename string `json:"filename"`

	// PackageType distinguishes "sdist" from "bdist_wheel".
	PackageType string `json:"packagetype,omitempty"`

	// RequiresPython is the file's Python version constraint, if declared.
	RequiresPython string `json:"requires_python,omitempty"`

	// Yanked marks a file withdrawn from normal installation.
	Yanked bool `json:"yanked,omitempty"`

	// YankedReason explains why the file was yanked.
	YankedReason string `json:"yanked_reason,omitempty"`
}

// HasVersion returns true if the given version exists in the project,
// installable or not.
func (p *Project) HasVersion(version string) bool {
	_, ok := p.Releases[version]
	return ok
}

// IsYanked returns true if the given release was withdrawn: it has files
// and every one of them is yanked.
func (p *Project) IsYanked(version string) bool {
	files, ok := p.Releases[version]
	if !ok || len(files) == 0 {
		return false
	}
	for _, f := range files {
		if !f.Yanked {
			return false
		}
	}
	return true
}

// YankReason returns the first recorded reason why a release was yanked.
// Returns empty string if the release is not yanked.
func (p *Project) YankReason(version string) string {
	if !p.IsYanked(version) {
		return ""
	}
	for _, f := range p.Releases[version] {
		if f.YankedReason != "" {
			return f.YankedReason
		}
	}
	return ""
}

// Versions returns every version key of the project, in map order.
// Callers that need an ordering must sort the result themselves.
func (p *Project) Versions() []string {
	result := make([]string, 0, len(p.Releases))
	for v := range p.Releases {
		result = append(result, v)
	}
	return result
}

// InstallableVersions returns the versions that can actually be
// installed: at least one file remains and not all files are yanked.
func (p *Project) InstallableVersions() []string {
	result := make([]string, 0, len(p.Releases))
	for v, files := range p.Releases {
		if installable(files) {
			result = append(result, v)
		}
	}
	return result
}

// installable reports whether a release's file list leaves anything to
// download.
func installable(files []ReleaseFile) bool {
	for _, f := range files {
		if !f.Yanked {
			return true
		}
	}
	return false
}
