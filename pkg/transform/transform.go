package transform

import (
	"os"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	augerrors "github.com/asyrjasalo/augent/internal/errors"
	"github.com/asyrjasalo/augent/pkg/bundle"
	"github.com/asyrjasalo/augent/pkg/platform"
)

// Engine applies a platform's transform rules to a bundle's resource
// files, producing Contributions. knownPlatformIDs drives universal
// frontmatter merging: any frontmatter key equal to a known platform id
// other than the target is dropped rather than merged.
type Engine struct {
	knownPlatformIDs map[string]bool
}

// NewEngine builds an Engine aware of every id in the registry, so
// frontmatter merging can distinguish "this is a per-platform
// sub-object" from "this is just a common field".
func NewEngine(allPlatforms []platform.Platform) *Engine {
	ids := make(map[string]bool, len(allPlatforms))
	for _, p := range allPlatforms {
		ids[p.ID] = true
	}
	return &Engine{knownPlatformIDs: ids}
}

// Apply evaluates p's transform rules against res in order and returns
// the Contribution from the first matching rule, or (nil, false) if
// none match. Rules are exclusive within a platform: the first match
// wins.
func (e *Engine) Apply(p platform.Platform, bundleName string, res bundle.Resource) (*Contribution, bool, error) {
	for _, rule := range p.Transforms {
		matched, err := doublestar.Match(rule.From, res.Path)
		if err != nil {
			return nil, false, err
		}
		if !matched {
			continue
		}

		name := baseNameSansExt(res)
		outputPath := strings.ReplaceAll(rule.To, "{name}", name)

		raw, err := os.ReadFile(res.AbsPath)
		if err != nil {
			return nil, false, augerrors.Newf("augent::filesystem::read_failed", augerrors.CategoryFilesystem, "cannot read %s: %v", res.AbsPath, err)
		}

		content, err := e.renderContent(string(raw), p.ID, rule)
		if err != nil {
			return nil, false, err
		}

		return &Contribution{
			OutputPath:    outputPath,
			Content:       []byte(content),
			MergeStrategy: rule.Merge,
			SourceBundle:  bundleName,
			SourceFile:    res.Path,
		}, true, nil
	}
	return nil, false, nil
}

func (e *Engine) renderContent(raw, platformID string, rule platform.Rule) (string, error) {
	if rule.Extension == "toml" {
		return mergeFrontmatterTOML(raw, platformID, e.knownPlatformIDs)
	}
	return mergeFrontmatter(raw, platformID, e.knownPlatformIDs)
}

// baseNameSansExt derives the "{name}" substitution value: a skill
// resource contributes its validated directory name; everything else
// contributes its basename with the category extension stripped.
func baseNameSansExt(res bundle.Resource) string {
	if res.Category == bundle.CategorySkill {
		return res.SkillName
	}
	base := path.Base(res.Path)
	if idx := strings.LastIndex(base, "."); idx != -1 {
		base = base[:idx]
	}
	return base
}
