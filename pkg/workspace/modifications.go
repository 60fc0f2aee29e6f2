package workspace

import (
	"os"
	"path/filepath"

	"github.com/asyrjasalo/augent/pkg/content"
)

// Modification describes one index entry whose on-disk content no
// longer matches the hash recorded at install time.
type Modification struct {
	OutputPath string
	Entry      IndexEntry
	Deleted    bool
}

// ComputeModifications walks every index entry, hashes the current
// on-disk file, and returns the subset whose hash differs from the
// stored original_hash. A missing file counts as "deleted", a form of
// modification.
func (w *Workspace) ComputeModifications() ([]Modification, error) {
	var mods []Modification
	for path, entry := range w.Index.Entries {
		abs := filepath.Join(w.Root, path)
		hash, err := content.HashFile(abs)
		if err != nil {
			if os.IsNotExist(err) {
				mods = append(mods, Modification{OutputPath: path, Entry: entry, Deleted: true})
				continue
			}
			return nil, err
		}
		if !content.Equal(hash, entry.Hash) {
			mods = append(mods, Modification{OutputPath: path, Entry: entry})
		}
	}
	return mods, nil
}

// IsUserModified reports whether the file at workspace-relative path
// currently diverges from its recorded index hash (or is missing from
// the index entirely, which is not a modification but an untracked
// file — callers should check the index for membership first).
func (w *Workspace) IsUserModified(path string) (bool, error) {
	entry, ok := w.Index.Entries[path]
	if !ok {
		return false, nil
	}
	abs := filepath.Join(w.Root, path)
	hash, err := content.HashFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, err
	}
	return !content.Equal(hash, entry.Hash), nil
}
