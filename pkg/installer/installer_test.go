package installer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/asyrjasalo/augent/pkg/bundle"
	"github.com/asyrjasalo/augent/pkg/cache"
	"github.com/asyrjasalo/augent/pkg/graph"
	"github.com/asyrjasalo/augent/pkg/platform"
	"github.com/asyrjasalo/augent/pkg/source"
	"github.com/asyrjasalo/augent/pkg/transform"
	"github.com/asyrjasalo/augent/pkg/workspace"
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

func buildGraph(t *testing.T, bundleDir string) *graph.Graph {
	t.Helper()
	c := cache.New(t.TempDir(), cache.NewFetcher())
	d := bundle.NewDiscoverer()
	src, err := source.Parse(bundleDir, "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	g, err := graph.Build(context.Background(), []source.Source{src}, c, d)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func TestBuildPlanProducesExpectedOutputPath(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "rules", "debug.md"), "hello")

	g := buildGraph(t, root)
	reg := platform.NewRegistry()
	claude, _ := reg.Get("claude")
	engine := transform.NewEngine(reg.All())

	plan, err := Build(g, []platform.Platform{claude}, engine, t.TempDir(), workspace.Index{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(plan.Files) != 1 {
		t.Fatalf("expected 1 planned file, got %d", len(plan.Files))
	}
	if plan.Files[0].OutputPath != ".claude/rules/debug.md" {
		t.Errorf("OutputPath = %q", plan.Files[0].OutputPath)
	}
	if string(plan.Files[0].Content) != "hello" {
		t.Errorf("Content = %q", plan.Files[0].Content)
	}
}

func TestBuildPlanRootFilesBypassTransform(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "root", "CONTRIBUTING.md"), "please contribute")

	g := buildGraph(t, root)
	reg := platform.NewRegistry()
	claude, _ := reg.Get("claude")
	engine := transform.NewEngine(reg.All())

	plan, err := Build(g, []platform.Platform{claude}, engine, t.TempDir(), workspace.Index{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(plan.Files) != 1 || plan.Files[0].OutputPath != "CONTRIBUTING.md" {
		t.Fatalf("expected root-bypass file at workspace root, got %+v", plan.Files)
	}
}

func TestBuildPlanReplaceStrategyLastBundleWins(t *testing.T) {
	workspaceRoot := t.TempDir()
	x := filepath.Join(workspaceRoot, "x")
	y := filepath.Join(workspaceRoot, "y")
	writeFile(t, filepath.Join(x, "commands", "deploy.md"), "x")
	writeFile(t, filepath.Join(y, "commands", "deploy.md"), "y")

	c := cache.New(t.TempDir(), cache.NewFetcher())
	d := bundle.NewDiscoverer()
	srcX, _ := source.Parse(x, "")
	srcY, _ := source.Parse(y, "")
	g, err := graph.Build(context.Background(), []source.Source{srcX, srcY}, c, d)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	reg := platform.NewRegistry()
	claude, _ := reg.Get("claude")
	engine := transform.NewEngine(reg.All())

	plan, err := Build(g, []platform.Platform{claude}, engine, t.TempDir(), workspace.Index{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(plan.Files) != 1 {
		t.Fatalf("expected contributions to merge into one output, got %d", len(plan.Files))
	}
	if string(plan.Files[0].Content) != "y" {
		t.Errorf("expected later bundle to win under Replace, got %q", plan.Files[0].Content)
	}
}

func TestBuildPlanDetectsUserModifiedFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "rules", "debug.md"), "hello")
	g := buildGraph(t, root)

	reg := platform.NewRegistry()
	claude, _ := reg.Get("claude")
	engine := transform.NewEngine(reg.All())

	workspaceRoot := t.TempDir()
	writeFile(t, filepath.Join(workspaceRoot, ".claude", "rules", "debug.md"), "user-edited")

	idx := workspace.Index{Entries: map[string]workspace.IndexEntry{
		".claude/rules/debug.md": {Bundle: "prev", Hash: "blake3:not-matching"},
	}}

	plan, err := Build(g, []platform.Platform{claude}, engine, workspaceRoot, idx)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(plan.UserModified) != 1 {
		t.Fatalf("expected 1 user-modified file, got %d", len(plan.UserModified))
	}
}
