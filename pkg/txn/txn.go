// Package txn implements the transactional writer: every
// filesystem mutation the installer or uninstaller performs flows
// through a Transaction, which owns an in-memory undo log and either
// discards it on Commit or reverses every tracked mutation on
// Rollback.
package txn

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"

	augerrors "github.com/asyrjasalo/augent/internal/errors"
)

// Transaction tracks filesystem mutations for atomic commit/rollback.
// It is not safe for concurrent use; each operation owns exactly one
// Transaction for its lifetime, itself serialized by the workspace's
// advisory lock.
type Transaction struct {
	createdFiles []string
	modifiedFiles map[string][]byte
	createdDirs  []string
	committed    bool
}

// New returns an empty Transaction.
func New() *Transaction {
	return &Transaction{modifiedFiles: map[string][]byte{}}
}

// WriteFile writes content to path, recording enough to undo it: if
// path did not exist, it is tracked in created_files; if it did, its
// prior bytes are captured in modified_files before being overwritten.
// If path already holds exactly content, nothing is written and no
// mutation is recorded, so re-running an install with unchanged inputs
// touches no file's mtime.
func (t *Transaction) WriteFile(path string, content []byte, mode os.FileMode) error {
	if err := t.ensureDir(filepath.Dir(path)); err != nil {
		return err
	}

	prior, err := os.ReadFile(path)
	switch {
	case err == nil:
		if bytes.Equal(prior, content) {
			return nil
		}
		if _, already := t.modifiedFiles[path]; !already {
			t.modifiedFiles[path] = prior
		}
	case os.IsNotExist(err):
		t.createdFiles = append(t.createdFiles, path)
	default:
		return augerrors.Newf("augent::filesystem::read_failed", augerrors.CategoryFilesystem, "cannot read %s: %v", path, err)
	}

	if err := os.WriteFile(path, content, mode); err != nil {
		return augerrors.Newf("augent::filesystem::write_failed", augerrors.CategoryFilesystem, "cannot write %s: %v", path, err)
	}
	return nil
}

// ensureDir creates dir and every missing ancestor under it, recording
// each newly created directory in created_dirs (deepest-last, so
// rollback can remove them deepest-first).
func (t *Transaction) ensureDir(dir string) error {
	if dir == "." || dir == string(filepath.Separator) {
		return nil
	}
	if info, err := os.Stat(dir); err == nil {
		if !info.IsDir() {
			return augerrors.Newf("augent::filesystem::not_a_directory", augerrors.CategoryFilesystem, "%s is not a directory", dir)
		}
		return nil
	}

	if err := t.ensureDir(filepath.Dir(dir)); err != nil {
		return err
	}
	if err := os.Mkdir(dir, 0o755); err != nil {
		if os.IsExist(err) {
			return nil
		}
		return augerrors.Newf("augent::filesystem::mkdir_failed", augerrors.CategoryFilesystem, "cannot create %s: %v", dir, err)
	}
	t.createdDirs = append(t.createdDirs, dir)
	return nil
}

// RemoveFile deletes the file at path if it exists. It is used by
// uninstall. The file's prior bytes are captured in modified_files
// first, so a rolled-back uninstall restores every file it deleted.
func (t *Transaction) RemoveFile(path string) error {
	if prior, err := os.ReadFile(path); err == nil {
		if _, already := t.modifiedFiles[path]; !already {
			t.modifiedFiles[path] = prior
		}
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return augerrors.Newf("augent::filesystem::remove_failed", augerrors.CategoryFilesystem, "cannot remove %s: %v", path, err)
	}
	return nil
}

// Commit discards the undo log; no cleanup is performed.
func (t *Transaction) Commit() {
	t.committed = true
	t.createdFiles = nil
	t.modifiedFiles = nil
	t.createdDirs = nil
}

// Rollback reverses every tracked mutation: deletes every created
// file, restores every modified file's prior bytes, and removes every
// created directory deepest-first (only if now empty). It is
// idempotent and safe to call on an already-committed Transaction (a
// no-op).
func (t *Transaction) Rollback() error {
	if t.committed {
		return nil
	}

	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for _, path := range t.createdFiles {
		record(os.Remove(path))
	}
	for path, prior := range t.modifiedFiles {
		record(os.WriteFile(path, prior, 0o644))
	}

	dirs := append([]string{}, t.createdDirs...)
	sort.Slice(dirs, func(i, j int) bool {
		return depth(dirs[i]) > depth(dirs[j])
	})
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err == nil && len(entries) == 0 {
			record(os.Remove(dir))
		}
	}

	t.createdFiles = nil
	t.modifiedFiles = map[string][]byte{}
	t.createdDirs = nil
	return firstErr
}

func depth(path string) int {
	return strings.Count(filepath.ToSlash(path), "/")
}
