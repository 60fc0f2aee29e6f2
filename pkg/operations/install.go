package operations

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	augerrors "github.com/asyrjasalo/augent/internal/errors"
	"github.com/asyrjasalo/augent/pkg/content"
	"github.com/asyrjasalo/augent/pkg/graph"
	"github.com/asyrjasalo/augent/pkg/installer"
	"github.com/asyrjasalo/augent/pkg/source"
	"github.com/asyrjasalo/augent/pkg/txn"
	"github.com/asyrjasalo/augent/pkg/workspace"
)

// InstallOptions configures one install invocation.
type InstallOptions struct {
	// For, if non-empty, pins the target platform set, overriding
	// auto-detection. An unknown id is fatal.
	For []string
	// Frozen requires the computed lockfile to exactly match the one
	// already on disk; any divergence is fatal (exit 3) and no file is
	// touched.
	Frozen bool
}

// InstallResult summarizes a successful install for CLI rendering.
type InstallResult struct {
	PlatformsTargeted []string
	FilesWritten      []string
	PreservedEdits    []string
	Warnings          []string
}

// Install runs the full pipeline: parse/add sources, resolve the
// dependency graph, plan the merged output set, preserve any
// user-modified files, apply the plan under one Transaction, and
// persist the three workspace artifacts.
func Install(ctx context.Context, e *Env, sources []string, opts InstallOptions) (*InstallResult, error) {
	ws, err := workspace.Load(e.WorkspaceRoot)
	if err != nil {
		return nil, err
	}
	if err := ws.Lock(ctx); err != nil {
		return nil, err
	}
	defer ws.Unlock()

	if len(sources) > 0 {
		if err := addSources(ctx, e, ws, sources); err != nil {
			return nil, err
		}
	}

	seeds, err := manifestSeeds(ws.Manifest)
	if err != nil {
		return nil, err
	}

	g, err := graph.Build(ctx, seeds, e.Cache, e.Discoverer)
	if err != nil {
		return nil, err
	}

	newLockfile, err := buildLockfile(ws.Manifest.Name, g)
	if err != nil {
		return nil, err
	}

	if opts.Frozen {
		_, statErr := os.Stat(filepath.Join(workspace.DotDir(e.WorkspaceRoot), workspace.LockfileFileName))
		if statErr != nil || !lockfilesEqual(ws.Lockfile, newLockfile) {
			return nil, augerrors.ErrLockfileOutdated.WithRemedy("run install without --frozen to update the lockfile")
		}
		return &InstallResult{}, nil
	}

	plats, empty, err := resolvePlatforms(ctx, e, opts.For)
	if err != nil {
		return nil, err
	}

	plan, err := installer.Build(g, plats, e.Engine, e.WorkspaceRoot, ws.Index)
	if err != nil {
		return nil, err
	}

	tx := txn.New()
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	var preserved []string
	if len(plan.UserModified) > 0 {
		ownedSeed, err := preserveUserModifications(tx, e.WorkspaceRoot, ws, plan.UserModified)
		if err != nil {
			return nil, err
		}
		preserved = ownedSeed.paths
		ws.AddBundle(ownedSeed.entry)

		seeds, err = manifestSeeds(ws.Manifest)
		if err != nil {
			return nil, err
		}
		g, err = graph.Build(ctx, seeds, e.Cache, e.Discoverer)
		if err != nil {
			return nil, err
		}
		newLockfile, err = buildLockfile(ws.Manifest.Name, g)
		if err != nil {
			return nil, err
		}
		plan, err = installer.Build(g, plats, e.Engine, e.WorkspaceRoot, ws.Index)
		if err != nil {
			return nil, err
		}
	}

	var written []string
	for _, f := range plan.Files {
		abs := filepath.Join(e.WorkspaceRoot, f.OutputPath)
		if err := tx.WriteFile(abs, f.Content, 0o644); err != nil {
			return nil, err
		}
		written = append(written, f.OutputPath)
	}

	ws.SetLockfile(ws.Manifest.Name, newLockfile.Bundles)
	ws.SetIndexEntries(indexFromPlan(plan))

	if err := ws.Save(); err != nil {
		return nil, err
	}

	tx.Commit()
	committed = true

	result := &InstallResult{FilesWritten: written, PreservedEdits: preserved, Warnings: plan.Warnings}
	for _, p := range plats {
		result.PlatformsTargeted = append(result.PlatformsTargeted, p.ID)
	}
	if empty {
		result.Warnings = append(result.Warnings, "no target platform detected; nothing installed")
	}
	return result, nil
}

// addSources parses each requested source string, populates the cache,
// discovers its primary bundle name, and appends a manifest entry
// (a no-op if a bundle of that name is already present).
func addSources(ctx context.Context, e *Env, ws *workspace.Workspace, sources []string) error {
	for _, s := range sources {
		src, err := source.Parse(s, e.WorkspaceRoot)
		if err != nil {
			return err
		}
		resolved, err := e.Cache.Populate(ctx, src)
		if err != nil {
			return err
		}
		discovered, err := e.Discoverer.Discover(ctx, resolved, src.SubBundle)
		if err != nil {
			return err
		}
		if len(discovered) == 0 {
			return augerrors.ErrBundleNotFound
		}
		ws.AddBundle(manifestEntryFor(discovered[0].Name, src))
	}
	return nil
}

func manifestEntryFor(name string, src source.Source) workspace.ManifestEntry {
	if src.Kind == source.KindDir {
		return workspace.ManifestEntry{Name: name, Path: src.Path}
	}
	return workspace.ManifestEntry{Name: name, Git: src.URL, Path: src.Subpath, Ref: src.Ref, SubBundle: src.SubBundle}
}

// manifestSeeds reconstructs the Source list to seed the graph
// resolver from, in manifest order (the order that defines override
// precedence: later wins).
func manifestSeeds(m workspace.Manifest) ([]source.Source, error) {
	seeds := make([]source.Source, 0, len(m.Bundles))
	for _, entry := range m.Bundles {
		if entry.Git != "" {
			seeds = append(seeds, source.Source{Kind: source.KindGit, URL: entry.Git, Ref: entry.Ref, Subpath: entry.Path, SubBundle: entry.SubBundle})
			continue
		}
		seeds = append(seeds, source.Source{Kind: source.KindDir, Path: entry.Path})
	}
	return seeds, nil
}

func buildLockfile(workspaceName string, g *graph.Graph) (workspace.Lockfile, error) {
	bundles := make([]workspace.LockedBundle, 0, len(g.InstallOrder))
	for _, name := range g.InstallOrder {
		node := g.Nodes[name]
		hash, err := content.HashTree(node.Resolved.ResourceRoot())
		if err != nil {
			return workspace.Lockfile{}, err
		}
		files := make([]string, 0, len(node.Bundle.Resources))
		for _, r := range node.Bundle.Resources {
			files = append(files, r.Path)
		}

		var locked workspace.LockedSource
		if node.Resolved.Source.Kind == source.KindDir {
			locked = workspace.LockedSource{Type: "dir", Path: node.Resolved.Source.Path, Hash: hash}
		} else {
			locked = workspace.LockedSource{Type: "git", URL: node.Resolved.Source.URL, Ref: refOrSHA(node.Resolved.Source.Ref, node.Resolved.SHA), SHA: node.Resolved.SHA, Hash: hash}
		}

		bundles = append(bundles, workspace.LockedBundle{Name: name, Source: locked, Files: files, Hash: hash})
	}
	return workspace.Lockfile{Name: workspaceName, Bundles: bundles}, nil
}

func refOrSHA(ref, sha string) string {
	if ref != "" {
		return ref
	}
	return sha
}

func lockfilesEqual(a, b workspace.Lockfile) bool {
	if len(a.Bundles) != len(b.Bundles) {
		return false
	}
	for i := range a.Bundles {
		if a.Bundles[i].Name != b.Bundles[i].Name || a.Bundles[i].Hash != b.Bundles[i].Hash {
			return false
		}
		if a.Bundles[i].Source != b.Bundles[i].Source {
			return false
		}
	}
	return true
}

func indexFromPlan(plan *installer.Plan) map[string]workspace.IndexEntry {
	out := make(map[string]workspace.IndexEntry, len(plan.Files))
	for _, f := range plan.Files {
		out[f.OutputPath] = workspace.IndexEntry{Bundle: f.Bundle, SourceFile: f.SourceFile, Platform: f.Platform, Hash: f.Hash}
	}
	return out
}

type ownedSeedResult struct {
	entry workspace.ManifestEntry
	paths []string
}

// preserveUserModifications copies every user-modified file's current
// on-disk bytes into a workspace-owned bundle directory under
// .augent/bundles/<workspace-name>/, keyed by its original bundle-
// relative source path, so that a Dir bundle seeded from there will
// recontribute the user's edits with the highest precedence (it is
// always appended last to the manifest).
func preserveUserModifications(tx *txn.Transaction, workspaceRoot string, ws *workspace.Workspace, mods []workspace.Modification) (ownedSeedResult, error) {
	name := ws.Manifest.Name
	if name == "" {
		name = filepath.Base(workspaceRoot)
	}
	ownedDir := workspace.OwnedBundleDir(workspaceRoot, name)

	sort.Slice(mods, func(i, j int) bool { return mods[i].OutputPath < mods[j].OutputPath })

	var paths []string
	for _, m := range mods {
		if m.Deleted {
			continue
		}
		src := filepath.Join(workspaceRoot, m.OutputPath)
		raw, err := os.ReadFile(src)
		if err != nil {
			return ownedSeedResult{}, augerrors.Newf("augent::filesystem::read_failed", augerrors.CategoryFilesystem, "cannot read modified file %s: %v", src, err)
		}
		dest := filepath.Join(ownedDir, m.Entry.SourceFile)
		if err := tx.WriteFile(dest, raw, 0o644); err != nil {
			return ownedSeedResult{}, err
		}
		paths = append(paths, m.OutputPath)
	}

	return ownedSeedResult{
		entry: workspace.ManifestEntry{Name: name + "-local", Path: relOwnedDir(workspaceRoot, ownedDir)},
		paths: paths,
	}, nil
}

func relOwnedDir(workspaceRoot, ownedDir string) string {
	rel, err := filepath.Rel(workspaceRoot, ownedDir)
	if err != nil {
		return ownedDir
	}
	return "./" + filepath.ToSlash(rel)
}
