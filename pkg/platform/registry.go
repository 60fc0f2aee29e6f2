package platform

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	jsonconfigreader "github.com/DisposaBoy/JsonConfigReader"
	"github.com/bmatcuk/doublestar/v4"

	augerrors "github.com/asyrjasalo/augent/internal/errors"
)

// Registry holds the built-in platforms plus any user overrides loaded
// from platforms.jsonc files. Later-loaded files override built-ins (and
// each other) by id.
type Registry struct {
	byID  map[string]Platform
	order []string
}

// NewRegistry returns a Registry seeded with the 17 built-in platforms.
func NewRegistry() *Registry {
	r := &Registry{byID: map[string]Platform{}}
	for _, p := range Builtins() {
		r.put(p)
	}
	return r
}

func (r *Registry) put(p Platform) {
	if _, exists := r.byID[p.ID]; !exists {
		r.order = append(r.order, p.ID)
	}
	r.byID[p.ID] = p
}

// LoadJSONC reads a JSON-with-comments document of platform overrides
// from path and merges it into the registry by id. A missing file is
// not an error.
func (r *Registry) LoadJSONC(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	reader := jsonconfigreader.New(f)
	var platforms []Platform
	if err := json.NewDecoder(reader).Decode(&platforms); err != nil {
		return augerrors.Newf("augent::platform::invalid_config", augerrors.CategoryPlatform, "invalid platforms.jsonc at %s: %v", path, err)
	}
	for _, p := range platforms {
		r.put(p)
	}
	return nil
}

// Get returns the platform with the given id.
func (r *Registry) Get(id string) (Platform, bool) {
	p, ok := r.byID[id]
	return p, ok
}

// All returns every registered platform in registration order.
func (r *Registry) All() []Platform {
	out := make([]Platform, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// For resolves explicit --for ids, failing fatally if any is unknown.
func (r *Registry) For(ids []string) ([]Platform, error) {
	out := make([]Platform, 0, len(ids))
	for _, id := range ids {
		p, ok := r.Get(id)
		if !ok {
			return nil, augerrors.ErrUnknownPlatform.WithRemedy(fmt.Sprintf("unknown platform id %q", id))
		}
		out = append(out, p)
	}
	return out, nil
}

// Detect returns every platform whose detection patterns match an
// existing path under workspaceRoot. An empty result is not an error
// here; callers treat it as a warning with exit 0 per the
// specification.
func (r *Registry) Detect(workspaceRoot string) ([]Platform, error) {
	var out []Platform
	for _, id := range r.order {
		p := r.byID[id]
		for _, pattern := range p.Detection {
			matched, err := matchesWorkspacePath(workspaceRoot, pattern)
			if err != nil {
				return nil, err
			}
			if matched {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

func matchesWorkspacePath(root, pattern string) (bool, error) {
	literal := filepath.Join(root, pattern)
	if _, err := os.Stat(literal); err == nil {
		return true, nil
	}

	matches, err := doublestar.FilepathGlob(filepath.Join(root, pattern))
	if err != nil {
		return false, err
	}
	return len(matches) > 0, nil
}
