package graph

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/asyrjasalo/augent/pkg/bundle"
	"github.com/asyrjasalo/augent/pkg/cache"
	"github.com/asyrjasalo/augent/pkg/source"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newCache(t *testing.T) *cache.Cache {
	return cache.New(t.TempDir(), cache.NewFetcher())
}

func TestBuildSimpleDependency(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "x", "augent.yaml"), "name: x\nbundles:\n  - ../y\n")
	writeFile(t, filepath.Join(root, "x", "rules", "x.md"), "x")
	writeFile(t, filepath.Join(root, "y", "rules", "y.md"), "y")

	seeds := []source.Source{{Kind: source.KindDir, Path: filepath.Join(root, "x")}}
	g, err := Build(context.Background(), seeds, newCache(t), bundle.NewDiscoverer())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(g.InstallOrder) != 2 {
		t.Fatalf("expected 2 nodes, got %v", g.InstallOrder)
	}
	if g.InstallOrder[0] != "y" || g.InstallOrder[1] != "x" {
		t.Errorf("expected dependency y before dependent x, got %v", g.InstallOrder)
	}
}

func TestBuildDetectsCycle(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "augent.yaml"), "name: a\nbundles:\n  - ../b\n")
	writeFile(t, filepath.Join(root, "b", "augent.yaml"), "name: b\nbundles:\n  - ../a\n")

	seeds := []source.Source{{Kind: source.KindDir, Path: filepath.Join(root, "a")}}
	_, err := Build(context.Background(), seeds, newCache(t), bundle.NewDiscoverer())
	if err == nil {
		t.Fatal("expected circular dependency error")
	}
}

func TestBuildManifestSubBundle(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "top", "augent.yaml"), "name: top\nbundles:\n  - ../lib\n")
	writeFile(t, filepath.Join(root, "top", "rules", "top.md"), "top")
	writeFile(t, filepath.Join(root, "lib", "augent.yaml"), "name: lib\n")
	writeFile(t, filepath.Join(root, "lib", "rules", "lib.md"), "lib")

	seeds := []source.Source{{Kind: source.KindDir, Path: filepath.Join(root, "top"), SubBundle: "lib"}}
	g, err := Build(context.Background(), seeds, newCache(t), bundle.NewDiscoverer())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, ok := g.Nodes["lib"]; !ok {
		t.Fatalf("expected a node named %q, got %v", "lib", g.InstallOrder)
	}
}

func TestBuildManifestSubBundleNotFound(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "top", "augent.yaml"), "name: top\nbundles:\n  - ../lib\n")
	writeFile(t, filepath.Join(root, "top", "rules", "top.md"), "top")
	writeFile(t, filepath.Join(root, "lib", "augent.yaml"), "name: lib\n")
	writeFile(t, filepath.Join(root, "lib", "rules", "lib.md"), "lib")

	seeds := []source.Source{{Kind: source.KindDir, Path: filepath.Join(root, "top"), SubBundle: "nope"}}
	_, err := Build(context.Background(), seeds, newCache(t), bundle.NewDiscoverer())
	if err == nil {
		t.Fatal("expected BundleNotFound for an undeclared sub-bundle name")
	}
}

func TestBuildDeterministicTieBreak(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "top", "augent.yaml"), "name: top\nbundles:\n  - ../first\n  - ../second\n")
	writeFile(t, filepath.Join(root, "first", "rules", "f.md"), "f")
	writeFile(t, filepath.Join(root, "second", "rules", "s.md"), "s")

	seeds := []source.Source{{Kind: source.KindDir, Path: filepath.Join(root, "top")}}
	g, err := Build(context.Background(), seeds, newCache(t), bundle.NewDiscoverer())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(g.InstallOrder) != 3 {
		t.Fatalf("expected 3 nodes, got %v", g.InstallOrder)
	}
	if g.InstallOrder[0] != "first" || g.InstallOrder[1] != "second" || g.InstallOrder[2] != "top" {
		t.Errorf("expected discovery-order tie-break first,second,top; got %v", g.InstallOrder)
	}
}
