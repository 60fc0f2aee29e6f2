package bundle

import (
	"encoding/json"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	ManifestFileName     = "augent.yaml"
	MarketplaceDirName   = ".claude-plugin"
	MarketplaceFileName  = "marketplace.json"
	ClaudePluginRootSigil = "$claude-plugin/"
)

// LoadManifest reads augent.yaml from root, if present.
func LoadManifest(root string) (*Manifest, bool, error) {
	path := filepath.Join(root, ManifestFileName)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, false, err
	}
	return &m, true, nil
}

// MarketplacePlugin is one entry in a .claude-plugin/marketplace.json
// document.
type MarketplacePlugin struct {
	Name      string `json:"name"`
	Source    string `json:"source,omitempty"`
	Directory string `json:"directory,omitempty"`
}

// Marketplace is the parsed contents of marketplace.json.
type Marketplace struct {
	Name    string              `json:"name"`
	Plugins []MarketplacePlugin `json:"plugins"`
}

// LoadMarketplace reads .claude-plugin/marketplace.json from root, if
// present.
func LoadMarketplace(root string) (*Marketplace, bool, error) {
	path := filepath.Join(root, MarketplaceDirName, MarketplaceFileName)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var m Marketplace
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, false, err
	}
	return &m, true, nil
}

// PluginDir resolves a plugin's root directory relative to the
// marketplace repository root.
func (p MarketplacePlugin) PluginDir(repoRoot string) string {
	if p.Directory != "" {
		return filepath.Join(repoRoot, p.Directory)
	}
	return filepath.Join(repoRoot, p.Name)
}
