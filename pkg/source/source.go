// Package source decodes user-supplied bundle source strings into a
// typed Source: a local directory or a Git repository reference.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	augerrors "github.com/asyrjasalo/augent/internal/errors"
)

// Kind distinguishes the two Source variants.
type Kind int

const (
	KindDir Kind = iota
	KindGit
)

// Source is an immutable description of where a bundle's resources live.
// It is produced only by Parse and carries no resolution state.
type Source struct {
	Kind Kind

	// Dir fields.
	Path string

	// Git fields.
	URL     string
	Ref     string // branch, tag, or 40-hex SHA; empty means "default branch"
	Subpath string
	// SubBundle is a trailing "/bundle-name" fragment naming a sub-bundle
	// declared in the target repository's own augent.yaml, or a
	// Claude-Marketplace plugin. Resolved by bundle discovery, not here.
	SubBundle string
}

// String renders a canonical form of s, suitable for round-tripping
// through Parse and for display in augent.yaml.
func (s Source) String() string {
	switch s.Kind {
	case KindDir:
		return s.Path
	case KindGit:
		out := s.URL
		if s.Subpath != "" {
			out += ":" + s.Subpath
		}
		if s.SubBundle != "" {
			out += "/" + s.SubBundle
		}
		if s.Ref != "" {
			out += "#" + s.Ref
		}
		return out
	default:
		return ""
	}
}

var (
	shaPattern      = regexp.MustCompile(`^[0-9a-f]{40}$`)
	treeURLPattern  = regexp.MustCompile(`^https?://([^/]+)/([^/]+)/([^/]+)/tree/([^/]+)(?:/(.*))?$`)
	sshURLPattern   = regexp.MustCompile(`^git@([^:]+):(.+)$`)
	httpsURLPattern = regexp.MustCompile(`^https?://[^/]+/.+\.git`)
	ownerRepoPrefix = regexp.MustCompile(`^(?:github:)?@?([\w.-]+)/([\w.-]+)(.*)$`)
)

// Parse recognizes the shapes documented in the specification's source
// grammar, tried in order: local paths, GitHub tree URLs, SSH/HTTPS git
// URLs, the "github:" short form, and the bare "owner/repo" short form.
func Parse(input string, cwd string) (Source, error) {
	if strings.TrimSpace(input) == "" {
		return Source{}, augerrors.ErrInvalidSourceURL.WithRemedy("pass a local path or a git:// / https:// / owner/repo reference")
	}

	if isLocalPath(input, cwd) {
		return Source{Kind: KindDir, Path: resolveDirPath(input, cwd)}, nil
	}

	if m := treeURLPattern.FindStringSubmatch(input); m != nil {
		host, owner, repo, ref, subpath := m[1], m[2], m[3], m[4], m[5]
		return Source{
			Kind:    KindGit,
			URL:     fmt.Sprintf("https://%s/%s/%s.git", host, owner, strings.TrimSuffix(repo, ".git")),
			Ref:     ref,
			Subpath: subpath,
		}, nil
	}

	if m := sshURLPattern.FindStringSubmatch(input); m != nil {
		host, rest := m[1], m[2]
		repoPath, ref, subpath, subBundle := splitRefSubpath(rest)
		repoPath = strings.TrimSuffix(repoPath, ".git")
		return Source{
			Kind:      KindGit,
			URL:       fmt.Sprintf("git@%s:%s.git", host, repoPath),
			Ref:       ref,
			Subpath:   subpath,
			SubBundle: subBundle,
		}, nil
	}

	if loc := httpsURLPattern.FindStringIndex(input); loc != nil {
		tail, ref, subpath, _ := splitRefSubpath(input[loc[1]:])
		return Source{Kind: KindGit, URL: input[:loc[1]], Ref: ref, Subpath: subpath, SubBundle: strings.TrimPrefix(tail, "/")}, nil
	}

	trimmed := strings.TrimPrefix(input, "github:")
	if m := ownerRepoPrefix.FindStringSubmatch(trimmed); m != nil {
		owner, repo, rest := m[1], m[2], m[3]
		head, ref, subpath, subBundle := splitRefSubpath(owner + "/" + repo + rest)
		return Source{
			Kind:      KindGit,
			URL:       fmt.Sprintf("https://github.com/%s.git", strings.TrimSuffix(head, ".git")),
			Ref:       ref,
			Subpath:   subpath,
			SubBundle: subBundle,
		}, nil
	}

	return Source{}, augerrors.Newf("augent::source::invalid_url", augerrors.CategorySource, "cannot parse bundle source %q", input)
}

// splitRefSubpath peels a trailing "#ref" or "@ref", a ":subpath", and a
// "/bundle-name" suffix off rest, in that grammar's precedence.
func splitRefSubpath(rest string) (head, ref, subpath, subBundle string) {
	head = rest

	if idx := strings.IndexAny(head, "#@"); idx != -1 {
		ref = head[idx+1:]
		head = head[:idx]
	}

	if idx := strings.Index(head, ":"); idx != -1 {
		subpath = head[idx+1:]
		head = head[:idx]
	}

	// A trailing path segment beyond "owner/repo" (or beyond the .git
	// suffix) names a sub-bundle, e.g. "owner/repo/sub-name".
	if strings.Count(head, "/") >= 2 {
		parts := strings.SplitN(head, "/", 3)
		head = parts[0] + "/" + parts[1]
		subBundle = parts[2]
	}

	return head, ref, subpath, subBundle
}

// isLocalPath reports whether input should be treated as Dir{path}: an
// absolute path, an explicit relative path ("./" or "../" prefixed), or
// an existing directory entry relative to cwd.
func isLocalPath(input, cwd string) bool {
	if filepath.IsAbs(input) {
		return true
	}
	if strings.HasPrefix(input, "./") || strings.HasPrefix(input, "../") {
		return true
	}
	if strings.ContainsAny(input, ":@") {
		return false
	}
	candidate := input
	if cwd != "" && !filepath.IsAbs(candidate) {
		candidate = filepath.Join(cwd, input)
	}
	info, err := os.Stat(candidate)
	return err == nil && info.IsDir()
}

// resolveDirPath joins a relative local path against cwd so the stored
// Source.Path remains meaningful regardless of the process's actual
// working directory by the time it reaches cache population. Absolute
// inputs, and inputs given with no cwd, pass through unchanged.
func resolveDirPath(input, cwd string) string {
	if cwd == "" || filepath.IsAbs(input) {
		return input
	}
	return filepath.Join(cwd, input)
}

// IsSHA reports whether ref is a full 40-hex commit SHA, which passes
// through ref resolution unchanged.
func IsSHA(ref string) bool {
	return shaPattern.MatchString(ref)
}
