package operations

import (
	"sort"

	"github.com/asyrjasalo/augent/pkg/workspace"
)

// ShowCandidates lists every installed bundle name, for the caller to
// hand to the interactive selector when Show is invoked without a
// name.
func ShowCandidates(e *Env) ([]BundleSummary, error) {
	return List(e, false)
}

// Show returns the detailed view of one installed bundle: its lockfile
// entry plus every index entry it produced. name must be non-empty;
// callers without a name should call ShowCandidates, resolve one via
// the interactive selector, and call Show with the result.
func Show(e *Env, name string) (*BundleSummary, error) {
	if name == "" {
		return nil, ErrNeedsSelection
	}
	ws, err := workspace.Load(e.WorkspaceRoot)
	if err != nil {
		return nil, err
	}

	var found *workspace.LockedBundle
	for i := range ws.Lockfile.Bundles {
		if ws.Lockfile.Bundles[i].Name == name {
			found = &ws.Lockfile.Bundles[i]
			break
		}
	}
	if found == nil {
		return nil, bundleNotFound(name)
	}

	var outputPaths []string
	for path, entry := range ws.Index.Entries {
		if entry.Bundle == name {
			outputPaths = append(outputPaths, path)
		}
	}
	sort.Strings(outputPaths)

	return &BundleSummary{
		Name:       found.Name,
		SourceType: found.Source.Type,
		SourcePath: found.Source.Path,
		SourceURL:  found.Source.URL,
		Ref:        found.Source.Ref,
		SHA:        found.Source.SHA,
		FileCount:  len(found.Files),
		Files:      outputPaths,
	}, nil
}
