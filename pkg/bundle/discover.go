package bundle

import (
	"context"
	"fmt"
	"path/filepath"

	augerrors "github.com/asyrjasalo/augent/internal/errors"
	"github.com/asyrjasalo/augent/pkg/cache"
	"github.com/asyrjasalo/augent/pkg/source"
)

// Discoverer inspects a single resolved source root and enumerates the
// DiscoveredBundles it directly contains. It never recurses into a
// dependency's own repository — that depth-first walk belongs to the graph builder,
// which calls Discoverer once per resolved root it visits.
type Discoverer struct{}

// NewDiscoverer constructs a Discoverer.
func NewDiscoverer() *Discoverer {
	return &Discoverer{}
}

// Discover dispatches on what the root contains: a Claude-Marketplace
// manifest, an augent.yaml, or (implicitly) a single own-resources
// bundle. subBundle, if non-empty, names a specific plugin or
// manifest-declared sub-bundle requested via a trailing "/name" suffix
// on the source string.
func (d *Discoverer) Discover(ctx context.Context, resolved cache.ResolvedSource, subBundle string) ([]DiscoveredBundle, error) {
	root := resolved.ResourceRoot()

	marketplace, hasMarketplace, err := LoadMarketplace(root)
	if err != nil {
		return nil, augerrors.Newf("augent::discovery::malformed_manifest", augerrors.CategoryDiscovery, "invalid marketplace.json: %v", err)
	}
	manifest, hasManifest, err := LoadManifest(root)
	if err != nil {
		return nil, augerrors.Newf("augent::discovery::malformed_manifest", augerrors.CategoryDiscovery, "invalid augent.yaml: %v", err)
	}

	switch {
	case hasMarketplace && hasManifest:
		if subBundle != "" && pluginNamed(marketplace, subBundle) != nil {
			return d.discoverMarketplace(root, marketplace, subBundle)
		}
		return d.discoverManifest(resolved, root, manifest, subBundle)
	case hasMarketplace:
		return d.discoverMarketplace(root, marketplace, subBundle)
	case hasManifest:
		return d.discoverManifest(resolved, root, manifest, subBundle)
	default:
		return d.discoverImplicit(resolved, root, subBundle)
	}
}

func pluginNamed(m *Marketplace, name string) *MarketplacePlugin {
	for i := range m.Plugins {
		if m.Plugins[i].Name == name {
			return &m.Plugins[i]
		}
	}
	return nil
}

func (d *Discoverer) discoverMarketplace(repoRoot string, m *Marketplace, subBundle string) ([]DiscoveredBundle, error) {
	var plugins []MarketplacePlugin
	if subBundle != "" {
		p := pluginNamed(m, subBundle)
		if p == nil {
			return nil, augerrors.ErrBundleNotFound.WithRemedy(fmt.Sprintf("plugin %q not declared in marketplace.json", subBundle))
		}
		plugins = []MarketplacePlugin{*p}
	} else {
		plugins = m.Plugins
	}

	var out []DiscoveredBundle
	for _, p := range plugins {
		pluginRoot := p.PluginDir(repoRoot)
		resources, err := walkOwnResources(pluginRoot)
		if err != nil {
			return nil, err
		}
		out = append(out, DiscoveredBundle{
			Name:      ClaudePluginRootSigil + p.Name,
			Root:      pluginRoot,
			Resources: resources,
		})
	}
	return out, nil
}

func (d *Discoverer) discoverManifest(resolved cache.ResolvedSource, root string, m *Manifest, subBundle string) ([]DiscoveredBundle, error) {
	name := m.Name
	if name == "" {
		name = ImplicitName(resolved)
	}

	var deps []source.Source
	for _, depStr := range m.Bundles {
		dep, err := source.Parse(depStr, root)
		if err != nil {
			return nil, err
		}
		deps = append(deps, dep)
	}

	resources, err := walkOwnResources(root)
	if err != nil {
		return nil, err
	}

	own := DiscoveredBundle{Name: name, Root: root, Dependencies: deps, Resources: resources}

	if subBundle == "" {
		return []DiscoveredBundle{own}, nil
	}

	// A named sub-bundle must itself be one of the declared dependencies,
	// addressed by the name it would resolve to once populated. Since
	// that requires recursive resolution, the graph resolver is
	// responsible for picking the matching node out of the closure; here
	// we simply also return the root bundle so its dependency edge to
	// the requested sub-bundle exists in the graph.
	return []DiscoveredBundle{own}, nil
}

func (d *Discoverer) discoverImplicit(resolved cache.ResolvedSource, root, subBundle string) ([]DiscoveredBundle, error) {
	if subBundle != "" {
		return nil, augerrors.ErrBundleNotFound.WithRemedy(fmt.Sprintf("no augent.yaml or marketplace.json declares sub-bundle %q", subBundle))
	}
	resources, err := walkOwnResources(root)
	if err != nil {
		return nil, err
	}
	return []DiscoveredBundle{{
		Name:      ImplicitName(resolved),
		Root:      root,
		Resources: resources,
	}}, nil
}

// CanonicalRootKey identifies a resolved root for cycle-guarding
// purposes during graph traversal.
func CanonicalRootKey(resolved cache.ResolvedSource) string {
	if resolved.Source.Kind == source.KindDir {
		return "dir:" + resolved.AbsPath
	}
	return "git:" + resolved.RepoKey + "@" + resolved.SHA + ":" + filepath.ToSlash(resolved.Source.Subpath)
}
