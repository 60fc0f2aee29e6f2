package operations

import "github.com/asyrjasalo/augent/pkg/workspace"

// BundleSummary describes one installed bundle for list/show rendering.
type BundleSummary struct {
	Name         string
	SourceType   string // "dir" or "git"
	SourcePath   string
	SourceURL    string
	Ref          string
	SHA          string
	FileCount    int
	Files        []string
	Dependencies []string
}

// List reads the lockfile and returns its bundles in installation
// order. detailed controls whether Files is populated (otherwise only
// FileCount is).
func List(e *Env, detailed bool) ([]BundleSummary, error) {
	ws, err := workspace.Load(e.WorkspaceRoot)
	if err != nil {
		return nil, err
	}
	out := make([]BundleSummary, 0, len(ws.Lockfile.Bundles))
	for _, b := range ws.Lockfile.Bundles {
		s := BundleSummary{
			Name:       b.Name,
			SourceType: b.Source.Type,
			SourcePath: b.Source.Path,
			SourceURL:  b.Source.URL,
			Ref:        b.Source.Ref,
			SHA:        b.Source.SHA,
			FileCount:  len(b.Files),
		}
		if detailed {
			s.Files = append([]string{}, b.Files...)
		}
		out = append(out, s)
	}
	return out, nil
}
