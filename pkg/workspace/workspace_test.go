package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmptyWorkspaceIsZeroValue(t *testing.T) {
	root := t.TempDir()
	w, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(w.Manifest.Bundles) != 0 || len(w.Lockfile.Bundles) != 0 || len(w.Index.Entries) != 0 {
		t.Fatalf("expected empty workspace, got %+v", w)
	}
}

func TestAddBundleAppendsAndDeduplicates(t *testing.T) {
	root := t.TempDir()
	w, _ := Load(root)
	w.AddBundle(ManifestEntry{Name: "a", Path: "./a"})
	w.AddBundle(ManifestEntry{Name: "b", Path: "./b"})
	w.AddBundle(ManifestEntry{Name: "a", Path: "./a-changed"})

	if len(w.Manifest.Bundles) != 2 {
		t.Fatalf("expected 2 bundles, got %d", len(w.Manifest.Bundles))
	}
	if w.Manifest.Bundles[0].Path != "./a" {
		t.Errorf("re-adding an existing name must be a no-op, got %q", w.Manifest.Bundles[0].Path)
	}
}

func TestSaveAndReloadRoundTrips(t *testing.T) {
	root := t.TempDir()
	w, _ := Load(root)
	w.AddBundle(ManifestEntry{Name: "local-bundle", Path: "./local-bundle"})
	w.SetLockfile("local-bundle", []LockedBundle{
		{Name: "local-bundle", Source: LockedSource{Type: "dir", Path: "./local-bundle", Hash: "blake3:abc"}, Files: []string{"b.md", "a.md"}, Hash: "blake3:abc"},
	})
	w.SetIndexEntries(map[string]IndexEntry{
		".claude/rules/debug.md": {Bundle: "local-bundle", SourceFile: "rules/debug.md", Platform: "claude", Hash: "blake3:xyz"},
	})
	if err := w.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(reloaded.Manifest.Bundles) != 1 || reloaded.Manifest.Bundles[0].Name != "local-bundle" {
		t.Fatalf("manifest did not round-trip: %+v", reloaded.Manifest)
	}
	if len(reloaded.Lockfile.Bundles) != 1 || reloaded.Lockfile.Bundles[0].Files[0] != "a.md" {
		t.Fatalf("lockfile files must be sorted lexicographically, got %+v", reloaded.Lockfile.Bundles)
	}
	entry, ok := reloaded.Index.Entries[".claude/rules/debug.md"]
	if !ok || entry.Hash != "blake3:xyz" {
		t.Fatalf("index did not round-trip: %+v", reloaded.Index)
	}
}

func TestLockPreventsSecondAcquisition(t *testing.T) {
	root := t.TempDir()
	w1, _ := Load(root)
	if err := w1.Lock(context.Background()); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	defer w1.Unlock()

	w2, _ := Load(root)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w2.Lock(ctx); err == nil {
		t.Fatal("expected second lock acquisition to fail while the first is held")
	}
}

func TestComputeModificationsDetectsChangedAndDeletedFiles(t *testing.T) {
	root := t.TempDir()
	unchanged := filepath.Join(root, "unchanged.md")
	changed := filepath.Join(root, "changed.md")
	os.WriteFile(unchanged, []byte("same"), 0o644)
	os.WriteFile(changed, []byte("original"), 0o644)

	w, _ := Load(root)
	unchangedHash, _ := HashOutputFile(unchanged)
	w.SetIndexEntries(map[string]IndexEntry{
		"unchanged.md": {Hash: unchangedHash},
		"changed.md":   {Hash: "blake3:deadbeef"},
		"deleted.md":   {Hash: "blake3:deadbeef"},
	})

	mods, err := w.ComputeModifications()
	if err != nil {
		t.Fatalf("ComputeModifications: %v", err)
	}
	if len(mods) != 2 {
		t.Fatalf("expected 2 modifications, got %d: %+v", len(mods), mods)
	}
}
