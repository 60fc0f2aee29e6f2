package operations

import (
	"context"
	"path/filepath"

	"github.com/asyrjasalo/augent/pkg/graph"
	"github.com/asyrjasalo/augent/pkg/installer"
	"github.com/asyrjasalo/augent/pkg/txn"
	"github.com/asyrjasalo/augent/pkg/workspace"
)

// UninstallResult summarizes a successful uninstall for CLI rendering.
type UninstallResult struct {
	Removed      []string
	FilesDeleted []string
}

// Uninstall removes name and every transitive dependency of it that no
// remaining bundle still requires, deleting any file their removal
// leaves orphaned and persisting the shrunk manifest/lockfile/index.
func Uninstall(ctx context.Context, e *Env, name string) (*UninstallResult, error) {
	ws, err := workspace.Load(e.WorkspaceRoot)
	if err != nil {
		return nil, err
	}
	if err := ws.Lock(ctx); err != nil {
		return nil, err
	}
	defer ws.Unlock()

	seeds, err := manifestSeeds(ws.Manifest)
	if err != nil {
		return nil, err
	}
	g, err := graph.Build(ctx, seeds, e.Cache, e.Discoverer)
	if err != nil {
		return nil, err
	}
	if _, ok := g.Nodes[name]; !ok {
		return nil, bundleNotFound(name)
	}

	remainingManifest := workspace.Manifest{Name: ws.Manifest.Name}
	var retainedTopNames []string
	for _, entry := range ws.Manifest.Bundles {
		if entry.Name != name {
			remainingManifest.Bundles = append(remainingManifest.Bundles, entry)
			retainedTopNames = append(retainedTopNames, entry.Name)
		}
	}
	remainingSeeds, err := manifestSeeds(remainingManifest)
	if err != nil {
		return nil, err
	}

	removeSet := removalSet(g, name, retainedTopNames)

	var retainedGraph *graph.Graph
	if len(remainingSeeds) > 0 {
		retainedGraph, err = graph.Build(ctx, remainingSeeds, e.Cache, e.Discoverer)
		if err != nil {
			return nil, err
		}
	} else {
		retainedGraph = &graph.Graph{Nodes: map[string]*graph.Node{}}
	}

	plats, _, err := resolvePlatforms(ctx, e, nil)
	if err != nil {
		return nil, err
	}
	var retainedPlan *installer.Plan
	if len(retainedGraph.Nodes) > 0 {
		retainedPlan, err = installer.Build(retainedGraph, plats, e.Engine, e.WorkspaceRoot, ws.Index)
		if err != nil {
			return nil, err
		}
	} else {
		retainedPlan = &installer.Plan{}
	}
	retainedPaths := map[string]bool{}
	for _, f := range retainedPlan.Files {
		retainedPaths[f.OutputPath] = true
	}

	tx := txn.New()
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	var deleted []string
	remainingIndex := map[string]workspace.IndexEntry{}
	for path, entry := range ws.Index.Entries {
		if removeSet[entry.Bundle] && !retainedPaths[path] {
			if err := tx.RemoveFile(filepath.Join(e.WorkspaceRoot, path)); err != nil {
				return nil, err
			}
			deleted = append(deleted, path)
			continue
		}
		remainingIndex[path] = entry
	}

	ws.RemoveBundle(name)
	ws.SetIndexEntries(remainingIndex)
	if retainedGraph != nil && len(retainedGraph.Nodes) > 0 {
		newLockfile, err := buildLockfile(ws.Manifest.Name, retainedGraph)
		if err != nil {
			return nil, err
		}
		ws.SetLockfile(ws.Manifest.Name, newLockfile.Bundles)
	} else {
		ws.SetLockfile(ws.Manifest.Name, nil)
	}

	if err := ws.Save(); err != nil {
		return nil, err
	}

	tx.Commit()
	committed = true

	removed := make([]string, 0, len(removeSet))
	for n := range removeSet {
		removed = append(removed, n)
	}
	return &UninstallResult{Removed: removed, FilesDeleted: deleted}, nil
}

// removalSet computes name plus every transitive dependency of it that
// is not reachable from any other retained top-level manifest bundle
// (retainedTopNames: the manifest's own bundles, excluding name).
func removalSet(g *graph.Graph, name string, retainedTopNames []string) map[string]bool {
	descendants := map[string]bool{}
	var walk func(string)
	walk = func(n string) {
		if descendants[n] {
			return
		}
		descendants[n] = true
		node, ok := g.Nodes[n]
		if !ok {
			return
		}
		for _, dep := range node.Dependencies {
			walk(dep)
		}
	}
	walk(name)

	reachableFromOthers := map[string]bool{}
	for _, top := range retainedTopNames {
		markReachable(g, top, reachableFromOthers)
	}

	out := map[string]bool{}
	for d := range descendants {
		if d == name || !reachableFromOthers[d] {
			out[d] = true
		}
	}
	return out
}

func markReachable(g *graph.Graph, start string, reachable map[string]bool) {
	if reachable[start] {
		return
	}
	reachable[start] = true
	node, ok := g.Nodes[start]
	if !ok {
		return
	}
	for _, dep := range node.Dependencies {
		markReachable(g, dep, reachable)
	}
}
