package transform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/asyrjasalo/augent/pkg/bundle"
	"github.com/asyrjasalo/augent/pkg/platform"
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

func TestApplyMatchesAndSubstitutesName(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "rules", "debug.md")
	writeFile(t, path, "hello")

	reg := platform.NewRegistry()
	p, _ := reg.Get("claude")
	e := NewEngine(reg.All())

	res := bundle.Resource{Category: bundle.CategoryRule, Path: "rules/debug.md", AbsPath: path}
	c, ok, err := e.Apply(p, "my-bundle", res)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !ok {
		t.Fatal("expected a match")
	}
	if c.OutputPath != ".claude/rules/debug.md" {
		t.Errorf("OutputPath = %q", c.OutputPath)
	}
	if string(c.Content) != "hello" {
		t.Errorf("Content = %q", c.Content)
	}
}

func TestApplyNoMatchReturnsFalse(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "unknown.txt")
	writeFile(t, path, "x")

	reg := platform.NewRegistry()
	p, _ := reg.Get("claude")
	e := NewEngine(reg.All())

	res := bundle.Resource{Category: bundle.CategoryRoot, Path: "unknown.txt", AbsPath: path}
	_, ok, err := e.Apply(p, "b", res)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if ok {
		t.Fatal("expected no match")
	}
}

func TestApplyMergesPlatformSpecificFrontmatter(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "rules", "debug.md")
	writeFile(t, path, "---\ndescription: common\nclaude:\n  description: claude-specific\ntargets:\n  - claude\n---\nbody")

	reg := platform.NewRegistry()
	p, _ := reg.Get("claude")
	e := NewEngine(reg.All())

	res := bundle.Resource{Category: bundle.CategoryRule, Path: "rules/debug.md", AbsPath: path}
	c, ok, err := e.Apply(p, "b", res)
	if err != nil || !ok {
		t.Fatalf("Apply: ok=%v err=%v", ok, err)
	}
	content := string(c.Content)
	if !contains(content, "claude-specific") {
		t.Errorf("expected platform-specific override to win, got %q", content)
	}
	if contains(content, "targets:") {
		t.Errorf("targets key must be dropped, got %q", content)
	}
}

func contains(s, substr string) bool {
	return len(s) >= len(substr) && (func() bool {
		for i := 0; i+len(substr) <= len(s); i++ {
			if s[i:i+len(substr)] == substr {
				return true
			}
		}
		return false
	})()
}

func TestApplySkillUsesDirectoryName(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "skills", "my-skill", "SKILL.md")
	writeFile(t, path, "---\nname: my-skill\ndescription: does things\n---\nbody")

	reg := platform.NewRegistry()
	p, _ := reg.Get("claude")
	e := NewEngine(reg.All())

	res := bundle.Resource{Category: bundle.CategorySkill, Path: "skills/my-skill/SKILL.md", AbsPath: path, SkillName: "my-skill"}
	c, ok, err := e.Apply(p, "b", res)
	if err != nil || !ok {
		t.Fatalf("Apply: ok=%v err=%v", ok, err)
	}
	if c.OutputPath != ".claude/skills/my-skill/SKILL.md" {
		t.Errorf("OutputPath = %q", c.OutputPath)
	}
}
