// Package content provides the BLAKE3 content-hashing primitives shared
// by the cache, bundle discovery, and workspace state packages. Hashes
// are rendered as "blake3:<hex>" wherever they are persisted.
package content

import (
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zeebo/blake3"
)

// Prefix is prepended to every hash string persisted in workspace
// artifacts.
const Prefix = "blake3:"

// HashBytes returns the "blake3:<hex>" digest of b.
func HashBytes(b []byte) string {
	sum := blake3.Sum256(b)
	return Prefix + hex.EncodeToString(sum[:])
}

// HashFile returns the "blake3:<hex>" digest of the file at path.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return Prefix + hex.EncodeToString(h.Sum(nil)), nil
}

// HashTree computes a deterministic BLAKE3 hash of every regular file
// under root, ignoring ".git" at any depth. Files are visited in
// lexicographic path order and each contributes its relative path and
// content to the running hash, so the result only depends on file
// names and bytes, never on filesystem iteration order or mtimes.
func HashTree(root string) (string, error) {
	var relPaths []string
	if err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, rerr := filepath.Rel(root, path)
		if rerr != nil {
			return rerr
		}
		if rel == "." {
			return nil
		}
		if info.Name() == ".git" {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}
		relPaths = append(relPaths, rel)
		return nil
	}); err != nil {
		return "", err
	}

	sort.Strings(relPaths)

	h := blake3.New()
	for _, rel := range relPaths {
		io.WriteString(h, filepath.ToSlash(rel))
		h.Write([]byte{0})
		f, err := os.Open(filepath.Join(root, rel))
		if err != nil {
			return "", err
		}
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", err
		}
		h.Write([]byte{0})
	}

	return Prefix + hex.EncodeToString(h.Sum(nil)), nil
}

// Equal compares two "blake3:<hex>" hash strings case-insensitively on
// the hex portion.
func Equal(a, b string) bool {
	return strings.EqualFold(a, b)
}
