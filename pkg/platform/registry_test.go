package platform

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBuiltinsCoverSeventeenPlatforms(t *testing.T) {
	r := NewRegistry()
	if len(r.All()) != 17 {
		t.Fatalf("expected 17 built-in platforms, got %d", len(r.All()))
	}
	if _, ok := r.Get("claude"); !ok {
		t.Error("expected claude platform to be registered")
	}
}

func TestDetectMatchesExistingDirectory(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".claude"), 0o755); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	detected, err := r.Detect(root)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	found := false
	for _, p := range detected {
		if p.ID == "claude" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected claude to be detected, got %+v", detected)
	}
}

func TestForUnknownIDIsFatal(t *testing.T) {
	r := NewRegistry()
	if _, err := r.For([]string{"not-a-real-platform"}); err == nil {
		t.Fatal("expected error for unknown platform id")
	}
}

func TestLoadJSONCOverridesByID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "platforms.jsonc")
	content := `[
		// override claude's directory
		{"id": "claude", "name": "Claude Code", "directory": ".claude-custom", "detection": [".claude-custom"], "transforms": []}
	]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	if err := r.LoadJSONC(path); err != nil {
		t.Fatalf("LoadJSONC: %v", err)
	}
	p, ok := r.Get("claude")
	if !ok || p.Directory != ".claude-custom" {
		t.Fatalf("expected override to apply, got %+v", p)
	}
	if len(r.All()) != 17 {
		t.Fatalf("override must not add a new entry, got %d platforms", len(r.All()))
	}
}
