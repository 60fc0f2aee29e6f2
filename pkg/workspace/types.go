// Package workspace implements workspace state: reading and writing the
// three persisted artifacts (augent.yaml, augent.lock, augent.index.yaml)
// and computing the set of user-modified files.
package workspace

// Manifest is the ordered top-level bundle list a user has directly
// installed (augent.yaml). Dependencies are never listed here — only
// direct installs; the closure lives in the Lockfile.
type Manifest struct {
	Name    string          `yaml:"name"`
	Bundles []ManifestEntry `yaml:"bundles"`
}

// ManifestEntry names one top-level bundle by its Source-identifying
// fields. When Git is empty, Path is a local directory (Dir source).
// When Git is set, Path instead records the repository subpath a Git
// entry resolves relative to.
type ManifestEntry struct {
	Name string `yaml:"name"`
	Path string `yaml:"path,omitempty"`
	Git  string `yaml:"git,omitempty"`
	// Ref/SubBundle, when Git is set, round-trip the "#ref" / "/name"
	// fragments split out by the source parser.
	Ref       string `yaml:"ref,omitempty"`
	SubBundle string `yaml:"sub_bundle,omitempty"`
}

// Lockfile is the authoritative reproducibility record: the ordered,
// fully-resolved closure of every bundle, pinned to an exact content
// hash (and, for Git bundles, an exact 40-hex SHA).
type Lockfile struct {
	Name    string         `yaml:"name"`
	Bundles []LockedBundle `yaml:"bundles"`
}

// LockedBundle pins one bundle in the dependency closure.
type LockedBundle struct {
	Name   string       `yaml:"name"`
	Source LockedSource `yaml:"source"`
	Files  []string     `yaml:"files"`
	Hash   string       `yaml:"hash"`
}

// LockedSource is a tagged union: Type is "dir" or "git". For "git",
// Ref and SHA are both always present.
type LockedSource struct {
	Type string `yaml:"type"`
	Path string `yaml:"path,omitempty"`
	URL  string `yaml:"url,omitempty"`
	Ref  string `yaml:"ref,omitempty"`
	SHA  string `yaml:"sha,omitempty"`
	Hash string `yaml:"hash"`
}

// Index is the reverse map from emitted output path to the bundle and
// content hash that produced it, consulted at uninstall time and for
// user-modification detection.
type Index struct {
	Entries map[string]IndexEntry `yaml:"entries"`
}

// IndexEntry describes one output path's provenance.
type IndexEntry struct {
	Bundle     string `yaml:"bundle"`
	SourceFile string `yaml:"source_file"`
	Platform   string `yaml:"platform"`
	Hash       string `yaml:"hash"`
}
