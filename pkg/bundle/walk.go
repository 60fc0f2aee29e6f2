package bundle

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// walkOwnResources enumerates a bundle root's resource files using the
// category-aware rules: rules/**/*.md, commands/**/*.md, agents/**/*.md,
// skills/<name>/SKILL.md (directories only), mcp.jsonc, agents.md, and
// everything under root/ as opaque copy-targets.
func walkOwnResources(root string) ([]Resource, error) {
	var out []Resource

	globCategories := []struct {
		dir      string
		category Category
	}{
		{"rules", CategoryRule},
		{"commands", CategoryCommand},
		{"agents", CategoryAgent},
	}

	for _, gc := range globCategories {
		found, err := walkMarkdown(root, gc.dir, gc.category)
		if err != nil {
			return nil, err
		}
		out = append(out, found...)
	}

	skills, err := walkSkills(root)
	if err != nil {
		return nil, err
	}
	out = append(out, skills...)

	if info, err := os.Stat(filepath.Join(root, "mcp.jsonc")); err == nil && !info.IsDir() {
		out = append(out, Resource{Category: CategoryMCP, Path: "mcp.jsonc", AbsPath: filepath.Join(root, "mcp.jsonc")})
	}

	if info, err := os.Stat(filepath.Join(root, "agents.md")); err == nil && !info.IsDir() {
		out = append(out, Resource{Category: CategoryRootDoc, Path: "agents.md", AbsPath: filepath.Join(root, "agents.md")})
	}

	rootFiles, err := walkRootDir(root)
	if err != nil {
		return nil, err
	}
	out = append(out, rootFiles...)

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func walkMarkdown(root, subdir string, category Category) ([]Resource, error) {
	base := filepath.Join(root, subdir)
	info, err := os.Stat(base)
	if err != nil || !info.IsDir() {
		return nil, nil
	}

	var out []Resource
	err = filepath.Walk(base, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}
		rel, rerr := filepath.Rel(root, path)
		if rerr != nil {
			return rerr
		}
		out = append(out, Resource{Category: category, Path: filepath.ToSlash(rel), AbsPath: path})
		return nil
	})
	return out, err
}

func walkSkills(root string) ([]Resource, error) {
	base := filepath.Join(root, "skills")
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil, nil
	}

	var out []Resource
	for _, e := range entries {
		if !e.IsDir() {
			continue // standalone files under skills/ are ignored
		}
		skillFile := filepath.Join(base, e.Name(), "SKILL.md")
		if _, err := os.Stat(skillFile); err != nil {
			continue // no SKILL.md: silently skipped
		}
		name, ok := validateSkill(skillFile, e.Name())
		if !ok {
			continue // invalid frontmatter: silently skipped; no warning is emitted
		}
		rel, _ := filepath.Rel(root, skillFile)
		out = append(out, Resource{
			Category:  CategorySkill,
			Path:      filepath.ToSlash(rel),
			AbsPath:   skillFile,
			SkillName: name,
		})
	}
	return out, nil
}

func walkRootDir(root string) ([]Resource, error) {
	base := filepath.Join(root, "root")
	info, err := os.Stat(base)
	if err != nil || !info.IsDir() {
		return nil, nil
	}

	var out []Resource
	err = filepath.Walk(base, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return nil
		}
		rel, rerr := filepath.Rel(root, path)
		if rerr != nil {
			return rerr
		}
		out = append(out, Resource{Category: CategoryRoot, Path: filepath.ToSlash(rel), AbsPath: path})
		return nil
	})
	return out, err
}
