// Package operations implements the public operation flows:
// install, uninstall, list, show. Each composes the source parser,
// cache, discoverer, graph resolver, platform registry, transform and
// merge engines, installer pipeline, transactional writer, and
// workspace state into one coherent, lockable unit of work.
package operations

import (
	"context"
	"fmt"
	"path/filepath"

	augerrors "github.com/asyrjasalo/augent/internal/errors"
	"github.com/asyrjasalo/augent/pkg/bundle"
	"github.com/asyrjasalo/augent/pkg/cache"
	"github.com/asyrjasalo/augent/pkg/platform"
	"github.com/asyrjasalo/augent/pkg/transform"
)

// Env bundles the collaborators every operation needs. Callers (cmd/augent
// or tests) construct one Env per invocation.
type Env struct {
	WorkspaceRoot string
	Cache         *cache.Cache
	Discoverer    *bundle.Discoverer
	Registry      *platform.Registry
	Engine        *transform.Engine
}

// NewEnv wires the default collaborators for workspaceRoot, loading any
// <workspaceRoot>/platforms.jsonc user overrides into the registry.
func NewEnv(workspaceRoot string, c *cache.Cache) (*Env, error) {
	reg := platform.NewRegistry()
	if err := reg.LoadJSONC(filepath.Join(workspaceRoot, "platforms.jsonc")); err != nil {
		return nil, err
	}
	return &Env{
		WorkspaceRoot: workspaceRoot,
		Cache:         c,
		Discoverer:    bundle.NewDiscoverer(),
		Registry:      reg,
		Engine:        transform.NewEngine(reg.All()),
	}, nil
}

// ErrNeedsSelection signals that Show was called without a bundle name
// and more than one candidate exists; the caller (cmd/augent) is
// expected to resolve a name via the interactive selector and
// retry.
var ErrNeedsSelection = augerrors.New("augent::operations::needs_selection", augerrors.CategoryFilesystem, "no bundle name given")

func bundleNotFound(name string) error {
	return augerrors.ErrBundleNotFound.WithRemedy(fmt.Sprintf("no installed bundle named %q", name))
}

// resolvePlatforms honors an explicit --for id list, falling back to
// auto-detection. Auto-detection yielding nothing is a warning (exit 0,
// no-op), not an error; explicit --for naming an unknown id is fatal.
func resolvePlatforms(ctx context.Context, e *Env, forIDs []string) ([]platform.Platform, bool, error) {
	if len(forIDs) > 0 {
		plats, err := e.Registry.For(forIDs)
		return plats, false, err
	}
	plats, err := e.Registry.Detect(e.WorkspaceRoot)
	if err != nil {
		return nil, false, err
	}
	return plats, len(plats) == 0, nil
}
