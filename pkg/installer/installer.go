// Package installer implements the installer pipeline: given a
// resolved dependency graph and a target platform set, it orchestrates
// the transform engine and the merge engine into a single
// Plan of output files, and detects files the user has modified since
// the last install so they can be preserved.
package installer

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	augerrors "github.com/asyrjasalo/augent/internal/errors"
	"github.com/asyrjasalo/augent/pkg/bundle"
	"github.com/asyrjasalo/augent/pkg/content"
	"github.com/asyrjasalo/augent/pkg/graph"
	"github.com/asyrjasalo/augent/pkg/merge"
	"github.com/asyrjasalo/augent/pkg/platform"
	"github.com/asyrjasalo/augent/pkg/transform"
	"github.com/asyrjasalo/augent/pkg/workspace"
)

// PlannedFile is one final output of the install plan: the merged
// bytes destined for one workspace-relative path, plus enough
// provenance to populate an index entry. Provenance records the
// highest-precedence (last, in install order) contributor, since that
// is the content that determined the file's current shape under
// Replace/Shallow/Deep; Composite files name the last contributor too,
// as a representative owner for uninstall bookkeeping.
type PlannedFile struct {
	OutputPath string
	Content    []byte
	Hash       string
	Bundle     string
	SourceFile string
	Platform   string
}

// Plan is the full set of output files an install would produce, plus
// any files detected as user-modified relative to the current index
// (which the caller must preserve before applying the plan).
type Plan struct {
	Files        []PlannedFile
	UserModified []workspace.Modification
	Warnings     []string
}

// Build runs the installer pipeline: for every bundle in g's install
// order, for every target platform, for every one of the bundle's own
// resource files, produce Contributions (root/ files bypass the
// transform engine entirely); group by output path; merge each group;
// and diff the result's current on-disk state against currentIndex to
// find user-modified files.
func Build(g *graph.Graph, platforms []platform.Platform, engine *transform.Engine, workspaceRoot string, currentIndex workspace.Index) (*Plan, error) {
	groups := map[string][]transform.Contribution{}
	var order []string
	var warnings []string

	for _, name := range g.InstallOrder {
		node := g.Nodes[name]
		for _, res := range node.Bundle.Resources {
			if res.Category == bundle.CategoryRoot {
				outputPath := strings.TrimPrefix(res.Path, "root/")
				raw, err := os.ReadFile(res.AbsPath)
				if err != nil {
					return nil, augerrors.Newf("augent::filesystem::read_failed", augerrors.CategoryFilesystem, "cannot read %s: %v", res.AbsPath, err)
				}
				if _, exists := groups[outputPath]; exists {
					warnings = append(warnings, fmt.Sprintf("bundle %q overwrites root file %q contributed by an earlier bundle", name, outputPath))
				} else {
					order = append(order, outputPath)
				}
				groups[outputPath] = []transform.Contribution{{
					OutputPath:    outputPath,
					Content:       raw,
					MergeStrategy: platform.StrategyReplace,
					SourceBundle:  name,
					SourceFile:    res.Path,
				}}
				continue
			}

			for _, p := range platforms {
				c, ok, err := engine.Apply(p, name, res)
				if err != nil {
					return nil, err
				}
				if !ok {
					continue
				}
				if _, exists := groups[c.OutputPath]; !exists {
					order = append(order, c.OutputPath)
				}
				groups[c.OutputPath] = append(groups[c.OutputPath], *c)
			}
		}
	}

	sort.Strings(order)

	files := make([]PlannedFile, 0, len(order))
	for _, outputPath := range order {
		contributions := groups[outputPath]
		strategy := effectiveStrategy(outputPath, contributions)
		finalBytes, err := merge.Merge(strategy, contributions)
		if err != nil {
			return nil, augerrors.ErrMergeParseFailed.WithCause(err).WithRemedy(fmt.Sprintf("check the JSON syntax of contributions to %s", outputPath))
		}
		last := contributions[len(contributions)-1]
		files = append(files, PlannedFile{
			OutputPath: outputPath,
			Content:    finalBytes,
			Hash:       content.HashBytes(finalBytes),
			Bundle:     last.SourceBundle,
			SourceFile: last.SourceFile,
			Platform:   platformIDFor(last, platforms),
		})
	}

	modified, err := detectUserModified(workspaceRoot, currentIndex)
	if err != nil {
		return nil, err
	}

	return &Plan{Files: files, UserModified: modified, Warnings: warnings}, nil
}

// effectiveStrategy applies the fixed per-output-kind routing rule:
// mcp.jsonc-derived outputs always merge Deep, root-doc outputs always
// merge Composite, everything else uses the winning rule's own
// declared strategy (the last contribution's, since that is what a
// plain Replace/Shallow/Deep chain would use anyway).
func effectiveStrategy(outputPath string, contributions []transform.Contribution) platform.Strategy {
	ruleStrategy := contributions[len(contributions)-1].MergeStrategy
	if ruleStrategy == "" {
		ruleStrategy = platform.StrategyReplace
	}
	return merge.StrategyFor(outputPath, ruleStrategy)
}

// platformIDFor recovers which platform a contribution targeted, by
// matching its output path against each candidate platform's
// directory prefix. Root-bypass contributions (workspace-relative,
// no platform) return "".
func platformIDFor(c transform.Contribution, platforms []platform.Platform) string {
	for _, p := range platforms {
		if p.Directory != "" && strings.HasPrefix(c.OutputPath, p.Directory+"/") {
			return p.ID
		}
	}
	return ""
}

// detectUserModified compares every existing index entry's recorded
// hash against the current on-disk content, to tell an install-written
// file apart from one a user has since edited by hand.
func detectUserModified(workspaceRoot string, currentIndex workspace.Index) ([]workspace.Modification, error) {
	w := &workspace.Workspace{Root: workspaceRoot, Index: currentIndex}
	return w.ComputeModifications()
}

// NormalizeOutputPath forward-slash-normalizes and cleans an output
// path, rejecting any that escape the workspace root.
func NormalizeOutputPath(p string) (string, error) {
	cleaned := path.Clean(filepath.ToSlash(p))
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") || path.IsAbs(cleaned) {
		return "", augerrors.Newf("augent::filesystem::path_escapes_root", augerrors.CategoryFilesystem, "output path %q escapes the workspace root", p)
	}
	return cleaned, nil
}
