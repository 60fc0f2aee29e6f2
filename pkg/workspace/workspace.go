package workspace

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	augerrors "github.com/asyrjasalo/augent/internal/errors"
	"github.com/asyrjasalo/augent/pkg/content"
)

const (
	dotDir             = ".augent"
	lockFileName       = ".lock"
	ManifestFileName   = "augent.yaml"
	LockfileFileName   = "augent.lock"
	IndexFileName      = "augent.index.yaml"
	OwnedBundlesDir    = "bundles"
	lockAcquireTimeout = 30 * time.Second
)

// Workspace is a loaded, mutable view of one workspace's three
// persisted artifacts, plus its root directory.
type Workspace struct {
	Root     string
	Manifest Manifest
	Lockfile Lockfile
	Index    Index

	lock *flock.Flock
}

// DotDir returns <root>/.augent.
func DotDir(root string) string {
	return filepath.Join(root, dotDir)
}

func manifestPath(root string) string { return filepath.Join(DotDir(root), ManifestFileName) }
func lockfilePath(root string) string { return filepath.Join(DotDir(root), LockfileFileName) }
func indexPath(root string) string    { return filepath.Join(DotDir(root), IndexFileName) }

// OwnedBundleDir returns the directory a user-modified-file
// preservation bundle named workspaceName is copied into.
func OwnedBundleDir(root, workspaceName string) string {
	return filepath.Join(DotDir(root), OwnedBundlesDir, workspaceName)
}

// Load reads all three artifacts from root, tolerating their absence
// (a fresh workspace has none yet).
func Load(root string) (*Workspace, error) {
	w := &Workspace{Root: root}

	if err := readYAML(manifestPath(root), &w.Manifest); err != nil {
		return nil, err
	}
	if err := readYAML(lockfilePath(root), &w.Lockfile); err != nil {
		return nil, err
	}
	if w.Index.Entries == nil {
		w.Index.Entries = map[string]IndexEntry{}
	}
	if err := readYAML(indexPath(root), &w.Index); err != nil {
		return nil, err
	}
	if w.Index.Entries == nil {
		w.Index.Entries = map[string]IndexEntry{}
	}
	return w, nil
}

func readYAML(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return augerrors.Newf("augent::filesystem::read_failed", augerrors.CategoryFilesystem, "cannot read %s: %v", path, err)
	}
	if err := yaml.Unmarshal(b, v); err != nil {
		return augerrors.Newf("augent::filesystem::malformed_artifact", augerrors.CategoryFilesystem, "cannot parse %s: %v", path, err)
	}
	return nil
}

// Lock acquires the workspace's advisory file lock at
// <root>/.augent/.lock, blocking until it is available or ctx is done.
func (w *Workspace) Lock(ctx context.Context) error {
	if err := os.MkdirAll(DotDir(w.Root), 0o755); err != nil {
		return augerrors.Newf("augent::filesystem::io", augerrors.CategoryFilesystem, "cannot create %s: %v", DotDir(w.Root), err)
	}
	fl := flock.New(filepath.Join(DotDir(w.Root), lockFileName))
	locked, err := fl.TryLockContext(ctx, 200*time.Millisecond)
	if err != nil {
		return augerrors.Newf("augent::filesystem::lock_failed", augerrors.CategoryFilesystem, "cannot acquire workspace lock: %v", err)
	}
	if !locked {
		return augerrors.Newf("augent::filesystem::lock_failed", augerrors.CategoryFilesystem, "workspace is locked by another process")
	}
	w.lock = fl
	return nil
}

// Unlock releases the workspace lock acquired by Lock.
func (w *Workspace) Unlock() error {
	if w.lock == nil {
		return nil
	}
	return w.lock.Unlock()
}

// AddBundle appends entry to the manifest unless a bundle of the same
// name already exists, in which case it is a no-op: the manifest's
// declared order is never mutated by Augent except at explicit user
// request.
func (w *Workspace) AddBundle(entry ManifestEntry) {
	for _, e := range w.Manifest.Bundles {
		if e.Name == entry.Name {
			return
		}
	}
	w.Manifest.Bundles = append(w.Manifest.Bundles, entry)
}

// RemoveBundle deletes the named entry from the manifest, if present.
func (w *Workspace) RemoveBundle(name string) {
	out := w.Manifest.Bundles[:0]
	for _, e := range w.Manifest.Bundles {
		if e.Name != name {
			out = append(out, e)
		}
	}
	w.Manifest.Bundles = out
}

// SetLockfile replaces the lockfile's bundle list with bundles, already
// in installation (topological, discovery-tie-broken) order. Each
// bundle's Files are sorted lexicographically before storage.
func (w *Workspace) SetLockfile(name string, bundles []LockedBundle) {
	for i := range bundles {
		sort.Strings(bundles[i].Files)
	}
	w.Lockfile = Lockfile{Name: name, Bundles: bundles}
}

// SetIndexEntries replaces the index wholesale.
func (w *Workspace) SetIndexEntries(entries map[string]IndexEntry) {
	w.Index = Index{Entries: entries}
}

// Save writes all three artifacts via write-temp-and-rename. The writes
// are not tracked by any Transaction and Save performs no backup, so a
// rollback does not restore the previous artifacts.
func (w *Workspace) Save() error {
	if err := os.MkdirAll(DotDir(w.Root), 0o755); err != nil {
		return augerrors.Newf("augent::filesystem::io", augerrors.CategoryFilesystem, "cannot create %s: %v", DotDir(w.Root), err)
	}
	if err := writeYAMLAtomic(manifestPath(w.Root), w.Manifest); err != nil {
		return err
	}
	if err := writeYAMLAtomic(lockfilePath(w.Root), sortedLockfile(w.Lockfile)); err != nil {
		return err
	}
	if err := writeYAMLAtomic(indexPath(w.Root), sortedIndex(w.Index)); err != nil {
		return err
	}
	return nil
}

// sortedLockfile returns a copy of l with each bundle's Files sorted;
// the outer Bundles order is preserved (it is installation order, which
// must never be reordered).
func sortedLockfile(l Lockfile) Lockfile {
	out := Lockfile{Name: l.Name, Bundles: make([]LockedBundle, len(l.Bundles))}
	for i, b := range l.Bundles {
		files := append([]string{}, b.Files...)
		sort.Strings(files)
		out.Bundles[i] = LockedBundle{Name: b.Name, Source: b.Source, Files: files, Hash: b.Hash}
	}
	return out
}

func sortedIndex(idx Index) Index {
	return idx
}

func writeYAMLAtomic(path string, v any) error {
	b, err := marshalSorted(v)
	if err != nil {
		return augerrors.Newf("augent::filesystem::io", augerrors.CategoryFilesystem, "cannot serialize %s: %v", path, err)
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return augerrors.Newf("augent::filesystem::io", augerrors.CategoryFilesystem, "cannot create temp file for %s: %v", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return augerrors.Newf("augent::filesystem::io", augerrors.CategoryFilesystem, "cannot write %s: %v", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return augerrors.Newf("augent::filesystem::io", augerrors.CategoryFilesystem, "cannot close %s: %v", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return augerrors.Newf("augent::filesystem::io", augerrors.CategoryFilesystem, "cannot finalize %s: %v", path, err)
	}
	return nil
}

// marshalSorted marshals v to YAML, special-casing Index so its
// Entries map is emitted sorted by key — the only map field in the
// three artifacts.
func marshalSorted(v any) ([]byte, error) {
	idx, ok := v.(Index)
	if !ok {
		return yaml.Marshal(v)
	}

	keys := make([]string, 0, len(idx.Entries))
	for k := range idx.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var node yaml.Node
	node.Kind = yaml.MappingNode
	node.Tag = "!!map"
	entriesNode := yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range keys {
		var keyNode yaml.Node
		keyNode.SetString(k)
		var valNode yaml.Node
		if err := valNode.Encode(idx.Entries[k]); err != nil {
			return nil, err
		}
		entriesNode.Content = append(entriesNode.Content, &keyNode, &valNode)
	}
	var entriesKey yaml.Node
	entriesKey.SetString("entries")
	node.Content = append(node.Content, &entriesKey, &entriesNode)

	return yaml.Marshal(&node)
}

// HashOutputFile renders a file's current BLAKE3 hash; it is
// content.HashFile under a workspace-facing name.
func HashOutputFile(path string) (string, error) {
	return content.HashFile(path)
}
