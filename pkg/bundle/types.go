// Package bundle implements bundle discovery: inspecting a
// resolved source root and enumerating the DiscoveredBundles it
// contains, whether a single implicit bundle, an augent.yaml-declared
// tree, or a Claude-Marketplace plugin set.
package bundle

import (
	"github.com/asyrjasalo/augent/pkg/source"
)

// Category classifies an own-resource file by the universal layout it
// was discovered under.
type Category string

const (
	CategoryRule    Category = "rule"
	CategoryCommand Category = "command"
	CategoryAgent   Category = "agent"
	CategorySkill   Category = "skill"
	CategoryMCP     Category = "mcp"
	CategoryRootDoc Category = "root-doc" // agents.md, CLAUDE.md-equivalents at bundle root
	CategoryRoot    Category = "root"     // opaque copy-targets under root/
)

// Resource is a single source file inside a bundle, tagged with the
// category that determined how it was discovered.
type Resource struct {
	Category Category
	// Path is the bundle-relative path (forward-slash normalized).
	Path string
	// AbsPath is the resource's location on disk (inside the cache
	// entry's resources/ dir, or inside the Dir source's own tree).
	AbsPath string
	// SkillName is set only for CategorySkill resources: the skill
	// directory's name, already validated against the SKILL.md
	// frontmatter name.
	SkillName string
}

// Manifest is the optional augent.yaml declarative file inside a bundle
// directory.
type Manifest struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description,omitempty"`
	Version     string            `yaml:"version,omitempty"`
	Bundles     []string          `yaml:"bundles,omitempty"`
	Metadata    map[string]string `yaml:"metadata,omitempty"`
}

// DiscoveredBundle is a bundle name, its on-disk root, its unresolved
// direct dependencies, and its own resource files.
type DiscoveredBundle struct {
	Name         string
	Root         string
	Dependencies []source.Source
	Resources    []Resource
}
