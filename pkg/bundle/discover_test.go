package bundle

import (
	"context"
	"os"
	"path/filepath"
	"testing"

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

func TestDiscoverImplicitBundle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "rules", "debug.md"), "hello")

	resolved := cache.ResolvedSource{Source: source.Source{Kind: source.KindDir, Path: dir}, AbsPath: dir}
	bundles, err := NewDiscoverer().Discover(context.Background(), resolved, "")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(bundles) != 1 {
		t.Fatalf("expected 1 bundle, got %d", len(bundles))
	}
	b := bundles[0]
	if b.Name != filepath.Base(dir) {
		t.Errorf("Name = %q, want %q", b.Name, filepath.Base(dir))
	}
	if len(b.Resources) != 1 || b.Resources[0].Path != "rules/debug.md" {
		t.Errorf("Resources = %+v", b.Resources)
	}
}

func TestDiscoverManifestDeclaresDependencies(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "augent.yaml"), "name: root-bundle\nbundles:\n  - ./dep\n")
	writeFile(t, filepath.Join(dir, "dep", "rules", "x.md"), "x")

	resolved := cache.ResolvedSource{Source: source.Source{Kind: source.KindDir, Path: dir}, AbsPath: dir}
	bundles, err := NewDiscoverer().Discover(context.Background(), resolved, "")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(bundles) != 1 {
		t.Fatalf("expected 1 bundle (deps resolved by graph, not discovery), got %d", len(bundles))
	}
	if bundles[0].Name != "root-bundle" {
		t.Errorf("Name = %q", bundles[0].Name)
	}
	wantDep := filepath.Join(dir, "dep")
	if len(bundles[0].Dependencies) != 1 || bundles[0].Dependencies[0].Path != wantDep {
		t.Errorf("Dependencies = %+v, want Path %q", bundles[0].Dependencies, wantDep)
	}
}

func TestDiscoverSkillValidAndInvalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "skills", "good-skill", "SKILL.md"), "---\nname: good-skill\ndescription: does a thing\n---\nbody")
	writeFile(t, filepath.Join(dir, "skills", "bad-skill", "SKILL.md"), "---\nname: mismatched-name\ndescription: x\n---\nbody")
	writeFile(t, filepath.Join(dir, "skills", "no-skillmd", "notes.md"), "irrelevant")

	resolved := cache.ResolvedSource{Source: source.Source{Kind: source.KindDir, Path: dir}, AbsPath: dir}
	bundles, err := NewDiscoverer().Discover(context.Background(), resolved, "")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(bundles[0].Resources) != 1 {
		t.Fatalf("expected only the valid skill to survive, got %+v", bundles[0].Resources)
	}
	if bundles[0].Resources[0].SkillName != "good-skill" {
		t.Errorf("SkillName = %q", bundles[0].Resources[0].SkillName)
	}
}

func TestDiscoverMarketplaceFiltersBySubBundle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".claude-plugin", "marketplace.json"),
		`{"name":"repo","plugins":[{"name":"alpha"},{"name":"beta"}]}`)
	writeFile(t, filepath.Join(dir, "alpha", "rules", "a.md"), "a")
	writeFile(t, filepath.Join(dir, "beta", "rules", "b.md"), "b")

	resolved := cache.ResolvedSource{Source: source.Source{Kind: source.KindDir, Path: dir}, AbsPath: dir}
	bundles, err := NewDiscoverer().Discover(context.Background(), resolved, "alpha")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(bundles) != 1 || bundles[0].Name != ClaudePluginRootSigil+"alpha" {
		t.Fatalf("unexpected bundles: %+v", bundles)
	}
}

func TestDiscoverMarketplaceTakesPrecedenceForNamedPlugin(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "augent.yaml"), "name: root-bundle\n")
	writeFile(t, filepath.Join(dir, ".claude-plugin", "marketplace.json"),
		`{"name":"repo","plugins":[{"name":"alpha"}]}`)
	writeFile(t, filepath.Join(dir, "alpha", "rules", "a.md"), "a")

	resolved := cache.ResolvedSource{Source: source.Source{Kind: source.KindDir, Path: dir}, AbsPath: dir}

	bundles, err := NewDiscoverer().Discover(context.Background(), resolved, "alpha")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(bundles) != 1 || bundles[0].Name != ClaudePluginRootSigil+"alpha" {
		t.Fatalf("expected marketplace to win for named plugin, got %+v", bundles)
	}

	bundlesNoSuffix, err := NewDiscoverer().Discover(context.Background(), resolved, "")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(bundlesNoSuffix) != 1 || bundlesNoSuffix[0].Name != "root-bundle" {
		t.Fatalf("expected augent.yaml to win without a plugin suffix, got %+v", bundlesNoSuffix)
	}
}
