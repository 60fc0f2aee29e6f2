package bundle

import (
	"path/filepath"
	"strings"

	"github.com/asyrjasalo/augent/pkg/cache"
	"github.com/asyrjasalo/augent/pkg/source"
)

// ImplicitName derives a bundle's canonical name when no augent.yaml or
// marketplace declares one: the directory's base name for Dir sources;
// "@owner/repo[:subpath]" for Git sources.
func ImplicitName(resolved cache.ResolvedSource) string {
	switch resolved.Source.Kind {
	case source.KindDir:
		return filepath.Base(resolved.AbsPath)
	case source.KindGit:
		name := "@" + ownerRepoFromRepoKey(resolved.RepoKey)
		if resolved.Source.Subpath != "" {
			name += ":" + resolved.Source.Subpath
		}
		return name
	default:
		return ""
	}
}

// ownerRepoFromRepoKey recovers "owner/repo" from a repo-key of the
// form "host-owner-repo" by dropping the leading host segment. This is
// best-effort and only used for display naming, never for identity
// comparisons (BundleName equality is always byte-exact on the derived
// string itself).
func ownerRepoFromRepoKey(repoKey string) string {
	parts := strings.Split(repoKey, "-")
	if len(parts) < 3 {
		return repoKey
	}
	return strings.Join(parts[1:], "/")
}

// Canonicalize normalizes "/./" and "/../" segments in a bundle-relative
// subpath, rejecting any path that would escape the repository root.
func Canonicalize(subpath string) (string, bool) {
	cleaned := filepath.ToSlash(filepath.Clean("/" + subpath))
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", false
	}
	return cleaned, true
}
