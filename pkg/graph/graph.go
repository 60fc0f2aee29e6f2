// Package graph builds the dependency graph over discovered bundles:
// a recursive depth-first walk that populates and discovers each reachable
// source, wires edges by BundleName, detects name conflicts and
// cycles, and produces a deterministic topological install order.
package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"

	augerrors "github.com/asyrjasalo/augent/internal/errors"
	"github.com/asyrjasalo/augent/pkg/bundle"
	"github.com/asyrjasalo/augent/pkg/cache"
	"github.com/asyrjasalo/augent/pkg/source"
)

// Node is one bundle in the resolved dependency graph.
type Node struct {
	Name         string
	Bundle       bundle.DiscoveredBundle
	Resolved     cache.ResolvedSource
	Dependencies []string // dependency BundleNames, in declaration order
}

// Graph is the full resolved dependency graph plus a deterministic
// install order.
type Graph struct {
	Nodes         map[string]*Node
	DiscoveryOrder []string // order nodes were first discovered
	InstallOrder  []string  // topological order, discovery-order tie-break
}

type builder struct {
	ctx         context.Context
	c           *cache.Cache
	d           *bundle.Discoverer
	nodes       map[string]*Node
	order       []string
	visitedRoot map[string]string // root-key -> BundleName, reserved before recursing
}

// Build resolves seeds (top-level bundle sources, in the order they
// should be seeded: manifest order, or CLI argument order, with local
// Dir sources appended last per the specification's seeding rule) into
// a full Graph.
func Build(ctx context.Context, seeds []source.Source, c *cache.Cache, d *bundle.Discoverer) (*Graph, error) {
	b := &builder{
		ctx:         ctx,
		c:           c,
		d:           d,
		nodes:       map[string]*Node{},
		visitedRoot: map[string]string{},
	}

	for _, seed := range seeds {
		if _, err := b.resolve(seed); err != nil {
			return nil, err
		}
	}

	installOrder, err := b.topoSort()
	if err != nil {
		return nil, err
	}

	return &Graph{Nodes: b.nodes, DiscoveryOrder: append([]string{}, b.order...), InstallOrder: installOrder}, nil
}

// resolve populates and discovers src, registering every bundle it
// yields as a node (reserving the root key before recursing into
// dependencies, so a cycle resolves to an already-reserved name
// instead of looping forever), and returns the BundleName of the
// bundle src itself names (the first one discovered, or the one
// matching src.SubBundle).
//
// discoverMarketplace already returns the exact plugin src.SubBundle
// names (sigil-prefixed), but discoverManifest cannot resolve a
// manifest-declared sub-bundle itself: that name is only known once the
// sub-bundle's own source has been populated and discovered, which
// needs the same recursive machinery as any other dependency. So once
// the root bundle and its dependencies are registered, a still-unmatched
// src.SubBundle is looked up among the dependencies just recursed into.
func (b *builder) resolve(src source.Source) (string, error) {
	resolved, err := b.c.Populate(b.ctx, src)
	if err != nil {
		return "", err
	}

	rootKey := bundle.CanonicalRootKey(resolved) + "#" + src.SubBundle
	if name, ok := b.visitedRoot[rootKey]; ok {
		return name, nil
	}

	discovered, err := b.d.Discover(b.ctx, resolved, src.SubBundle)
	if err != nil {
		return "", err
	}
	if len(discovered) == 0 {
		return "", augerrors.ErrBundleNotFound
	}

	// Reserve before recursing so a cyclic dependency chain terminates;
	// corrected below once the true sub-bundle name (if any) is known.
	b.visitedRoot[rootKey] = discovered[0].Name

	var primaryName string
	for i, db := range discovered {
		if i == 0 {
			primaryName = db.Name
		}
		if err := b.registerAndRecurse(db, resolved); err != nil {
			return "", err
		}
	}

	finalName := primaryName
	if src.SubBundle != "" && primaryName != src.SubBundle && primaryName != bundle.ClaudePluginRootSigil+src.SubBundle {
		finalName = ""
		for _, depName := range b.nodes[primaryName].Dependencies {
			if depName == src.SubBundle {
				finalName = depName
				break
			}
		}
		if finalName == "" {
			return "", augerrors.ErrBundleNotFound.WithRemedy(
				fmt.Sprintf("%q does not declare a sub-bundle named %q", primaryName, src.SubBundle))
		}
	}

	b.visitedRoot[rootKey] = finalName
	return finalName, nil
}

func (b *builder) registerAndRecurse(db bundle.DiscoveredBundle, resolved cache.ResolvedSource) error {
	if existing, ok := b.nodes[db.Name]; ok {
		if existing.Bundle.Root != db.Root {
			return augerrors.ErrBundleNameConflict.WithRemedy(
				fmt.Sprintf("%q resolves to both %s and %s", db.Name, existing.Bundle.Root, db.Root))
		}
		return nil
	}

	node := &Node{Name: db.Name, Bundle: db, Resolved: resolved}
	b.nodes[db.Name] = node
	b.order = append(b.order, db.Name)

	for _, dep := range db.Dependencies {
		depName, err := b.resolve(dep)
		if err != nil {
			return err
		}
		node.Dependencies = append(node.Dependencies, depName)
	}
	return nil
}

// topoSort produces a deterministic topological order: dependencies
// before dependents, ties broken by discovery order. A remaining
// non-empty node set after the algorithm terminates is a cycle,
// reported verbatim via the first such cycle found.
func (b *builder) topoSort() ([]string, error) {
	discoveryIndex := make(map[string]int, len(b.order))
	for i, name := range b.order {
		discoveryIndex[name] = i
	}

	indegree := make(map[string]int, len(b.nodes))
	dependents := make(map[string][]string, len(b.nodes))
	for name, node := range b.nodes {
		for _, dep := range node.Dependencies {
			if _, ok := b.nodes[dep]; !ok {
				return nil, augerrors.Newf("augent::graph::unknown_dependency", augerrors.CategoryGraph, "%s depends on unknown bundle %s", name, dep)
			}
			indegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	ready := make([]string, 0, len(b.nodes))
	for name := range b.nodes {
		if indegree[name] == 0 {
			ready = append(ready, name)
		}
	}
	sortByDiscovery(ready, discoveryIndex)

	var out []string
	for len(ready) > 0 {
		next := ready[0]
		ready = ready[1:]
		out = append(out, next)

		var newlyReady []string
		for _, dependent := range dependents[next] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				newlyReady = append(newlyReady, dependent)
			}
		}
		sortByDiscovery(newlyReady, discoveryIndex)
		ready = mergeByDiscovery(ready, newlyReady, discoveryIndex)
	}

	if len(out) != len(b.nodes) {
		cycle := findCycle(b.nodes, out)
		return nil, augerrors.ErrCircularDependency.WithRemedy(fmt.Sprintf("cycle: %s", strings.Join(cycle, " -> ")))
	}

	return out, nil
}

func sortByDiscovery(names []string, index map[string]int) {
	sort.Slice(names, func(i, j int) bool { return index[names[i]] < index[names[j]] })
}

func mergeByDiscovery(a, b []string, index map[string]int) []string {
	merged := append(a, b...)
	sortByDiscovery(merged, index)
	return merged
}

// findCycle locates one cycle among the nodes that never became ready,
// by walking dependency edges from an arbitrary remaining node until a
// repeat is seen.
func findCycle(nodes map[string]*Node, placed []string) []string {
	done := make(map[string]bool, len(placed))
	for _, n := range placed {
		done[n] = true
	}

	var start string
	for name := range nodes {
		if !done[name] {
			start = name
			break
		}
	}

	path := []string{start}
	seen := map[string]int{start: 0}
	cur := start
	for {
		node := nodes[cur]
		var next string
		for _, dep := range node.Dependencies {
			if !done[dep] {
				next = dep
				break
			}
		}
		if next == "" {
			return path
		}
		if idx, ok := seen[next]; ok {
			return append(path[idx:], next)
		}
		seen[next] = len(path)
		path = append(path, next)
		cur = next
	}
}
