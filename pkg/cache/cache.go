// Package cache implements Augent's content-addressed cache of fetched
// Git trees together with the Git fetcher that populates it.
//
// Cache layout:
//
//	<root>/<repo-key>/<sha>/
//	    repository/    full checkout, including .git
//	    resources/     checkout content without .git
//
// Entries are immutable once written and keyed by the exact 40-hex
// commit SHA, never by ref, so the cache is the single source of
// reproducibility: the same (repo-key, sha) pair always names the same
// bytes.
package cache

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"

	augerrors "github.com/asyrjasalo/augent/internal/errors"
	"github.com/asyrjasalo/augent/pkg/content"
	"github.com/asyrjasalo/augent/pkg/source"
)

const (
	repositorySubdir = "repository"
	resourcesSubdir  = "resources"
	lockSuffix       = ".lock"
)

var repoKeySanitizer = regexp.MustCompile(`[:/\\]+`)

// Cache is a SHA-keyed, immutable store of fetched Git trees rooted at
// a configurable directory (default ~/.cache/augent/bundles/, overridden
// by AUGENT_CACHE_DIR / AUGENT_TEST_CACHE_DIR).
type Cache struct {
	root    string
	fetcher *Fetcher
}

// New creates a Cache rooted at root, using fetcher to resolve refs and
// clone repositories.
func New(root string, fetcher *Fetcher) *Cache {
	return &Cache{root: root, fetcher: fetcher}
}

// DefaultRoot returns the cache root honoring AUGENT_CACHE_DIR,
// AUGENT_TEST_CACHE_DIR (test-only override, identical semantics), and
// finally the XDG-style default under the user's cache directory.
func DefaultRoot() (string, error) {
	if v := os.Getenv("AUGENT_TEST_CACHE_DIR"); v != "" {
		return v, nil
	}
	if v := os.Getenv("AUGENT_CACHE_DIR"); v != "" {
		return v, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "augent", "bundles"), nil
}

// RepoKey derives the cache's per-repository directory name from a Git
// URL: strip scheme and credentials, replace ':', '/', '\' with '-',
// strip a trailing ".git", and trim leading/trailing '-'.
func RepoKey(url string) string {
	u := url
	if idx := strings.Index(u, "://"); idx != -1 {
		u = u[idx+3:]
	}
	if idx := strings.Index(u, "@"); idx != -1 && !strings.Contains(u[:idx], "/") {
		u = u[idx+1:]
	}
	u = strings.TrimSuffix(u, ".git")
	u = repoKeySanitizer.ReplaceAllString(u, "-")
	return strings.Trim(u, "-")
}

// ResolvedSource is a Source paired with the concrete, resolved
// location its resources were populated at.
type ResolvedSource struct {
	Source source.Source

	// Populated for Dir sources: the canonical absolute path.
	AbsPath string

	// Populated for Git sources.
	SHA         string
	RepoKey     string
	RepoDir     string // <root>/<repo-key>/<sha>/repository
	ResourceDir string // <root>/<repo-key>/<sha>/resources, honoring Subpath
}

// ResourceRoot returns the directory bundle discovery should walk:
// AbsPath for Dir sources, ResourceDir for Git sources.
func (r ResolvedSource) ResourceRoot() string {
	if r.Source.Kind == source.KindDir {
		return r.AbsPath
	}
	return r.ResourceDir
}

// Populate resolves src and ensures its content is present in the
// cache (or, for Dir sources, simply canonicalizes the path).
func (c *Cache) Populate(ctx context.Context, src source.Source) (ResolvedSource, error) {
	if src.Kind == source.KindDir {
		abs, err := filepath.Abs(src.Path)
		if err != nil {
			return ResolvedSource{}, augerrors.Newf("augent::source::invalid_path", augerrors.CategorySource, "cannot canonicalize %q: %v", src.Path, err)
		}
		resolved := abs
		if info, err := os.Stat(abs); err != nil || !info.IsDir() {
			return ResolvedSource{}, augerrors.Newf("augent::source::not_found", augerrors.CategorySource, "directory not found: %s", abs)
		}
		return ResolvedSource{Source: src, AbsPath: resolved}, nil
	}

	repoKey := RepoKey(src.URL)

	sha, err := c.fetcher.ResolveRef(ctx, src.URL, src.Ref)
	if err != nil {
		return ResolvedSource{}, err
	}

	entryDir := filepath.Join(c.root, repoKey, sha)
	repoDir := filepath.Join(entryDir, repositorySubdir)
	resourcesDir := filepath.Join(entryDir, resourcesSubdir)

	if dirExists(resourcesDir) {
		return c.resolvedFromEntry(src, repoKey, sha, repoDir, resourcesDir), nil
	}

	if err := c.populateEntry(ctx, src, repoKey, sha, entryDir, repoDir, resourcesDir); err != nil {
		return ResolvedSource{}, err
	}

	return c.resolvedFromEntry(src, repoKey, sha, repoDir, resourcesDir), nil
}

func (c *Cache) resolvedFromEntry(src source.Source, repoKey, sha, repoDir, resourcesDir string) ResolvedSource {
	resourceRoot := resourcesDir
	if src.Subpath != "" {
		resourceRoot = filepath.Join(resourcesDir, src.Subpath)
	}
	return ResolvedSource{
		Source:      src,
		SHA:         sha,
		RepoKey:     repoKey,
		RepoDir:     repoDir,
		ResourceDir: resourceRoot,
	}
}

// populateEntry performs the clone-and-copy under a per-entry advisory
// lock so concurrent populates of the same <repo-key>/<sha> serialize;
// the loser simply observes the winner's entry once unblocked.
func (c *Cache) populateEntry(ctx context.Context, src source.Source, repoKey, sha, entryDir, repoDir, resourcesDir string) error {
	if err := os.MkdirAll(filepath.Join(c.root, repoKey), 0o755); err != nil {
		return augerrors.Newf("augent::cache::io", augerrors.CategoryCache, "cannot create cache directory: %v", err)
	}

	lockPath := filepath.Join(c.root, repoKey, sha+lockSuffix)
	fl := flock.New(lockPath)
	if err := fl.Lock(); err != nil {
		return augerrors.Newf("augent::cache::lock_failed", augerrors.CategoryCache, "cannot acquire cache lock: %v", err)
	}
	defer fl.Unlock()

	// Re-check now that we hold the lock: another process may have
	// finished populating this entry while we waited.
	if dirExists(resourcesDir) {
		return nil
	}

	tmpDir, err := os.MkdirTemp(filepath.Join(c.root, repoKey), sha+".tmp-*")
	if err != nil {
		return augerrors.Newf("augent::cache::io", augerrors.CategoryCache, "cannot create temp directory: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	tmpRepo := filepath.Join(tmpDir, repositorySubdir)
	tmpResources := filepath.Join(tmpDir, resourcesSubdir)

	if err := c.fetcher.CloneAtSHA(ctx, src.URL, src.Ref, sha, tmpRepo); err != nil {
		return err
	}
	if err := copyTreeExcludingGit(tmpRepo, tmpResources); err != nil {
		return augerrors.Newf("augent::cache::io", augerrors.CategoryCache, "cannot materialize resources: %v", err)
	}

	if err := os.MkdirAll(entryDir, 0o755); err != nil {
		return augerrors.Newf("augent::cache::io", augerrors.CategoryCache, "cannot create entry directory: %v", err)
	}
	// Atomic rename of the fully-populated temp directory's children
	// into place; entries are never partially visible.
	if err := os.Rename(tmpRepo, repoDir); err != nil {
		return augerrors.Newf("augent::cache::io", augerrors.CategoryCache, "cannot finalize repository dir: %v", err)
	}
	if err := os.Rename(tmpResources, resourcesDir); err != nil {
		return augerrors.Newf("augent::cache::io", augerrors.CategoryCache, "cannot finalize resources dir: %v", err)
	}

	return syncDir(entryDir)
}

// Verify re-computes the BLAKE3 content hash of the cache entry named
// by repoKey/sha and compares it to want.
func (c *Cache) Verify(repoKey, sha, want string) error {
	resourcesDir := filepath.Join(c.root, repoKey, sha, resourcesSubdir)
	got, err := content.HashTree(resourcesDir)
	if err != nil {
		return augerrors.Newf("augent::cache::io", augerrors.CategoryCache, "cannot hash cache entry: %v", err)
	}
	if !content.Equal(got, want) {
		return augerrors.ErrHashMismatch.WithRemedy("re-populate the cache entry")
	}
	return nil
}

// Entry describes one populated cache entry for Stats/Clear.
type Entry struct {
	RepoKey string
	SHA     string
	Path    string
	Size    int64
}

// Stats enumerates all populated entries, optionally restricted to one
// repo-key.
func (c *Cache) Stats(repoKeyFilter string) ([]Entry, error) {
	var entries []Entry
	repoDirs, err := os.ReadDir(c.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	for _, rd := range repoDirs {
		if !rd.IsDir() {
			continue
		}
		if repoKeyFilter != "" && rd.Name() != repoKeyFilter {
			continue
		}
		shaDirs, err := os.ReadDir(filepath.Join(c.root, rd.Name()))
		if err != nil {
			continue
		}
		for _, sd := range shaDirs {
			if !sd.IsDir() || strings.HasSuffix(sd.Name(), lockSuffix) {
				continue
			}
			entryPath := filepath.Join(c.root, rd.Name(), sd.Name())
			size, _ := dirSize(entryPath)
			entries = append(entries, Entry{RepoKey: rd.Name(), SHA: sd.Name(), Path: entryPath, Size: size})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].RepoKey != entries[j].RepoKey {
			return entries[i].RepoKey < entries[j].RepoKey
		}
		return entries[i].SHA < entries[j].SHA
	})
	return entries, nil
}

// Clear removes cache entries, optionally restricted to one repo-key.
func (c *Cache) Clear(repoKeyFilter string) error {
	if repoKeyFilter != "" {
		return os.RemoveAll(filepath.Join(c.root, repoKeyFilter))
	}
	entries, err := os.ReadDir(c.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(c.root, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func dirSize(root string) (int64, error) {
	var total int64
	err := filepath.Walk(root, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	return total, err
}

func syncDir(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}

func copyTreeExcludingGit(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return os.MkdirAll(dst, 0o755)
		}
		parts := strings.SplitN(filepath.ToSlash(rel), "/", 2)
		if parts[0] == ".git" {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target, info.Mode())
	})
}

func copyFile(src, dst string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return nil
}

// waitForLock polls fl with TryLock every 10ms until it is acquired or
// timeout elapses, returning an error on timeout.
func waitForLock(fl *flock.Flock, timeout time.Duration) (bool, error) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		ok, err := fl.TryLock()
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false, fmt.Errorf("timed out waiting for lock")
}
