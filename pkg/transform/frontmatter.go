package transform

import (
	"bytes"

	"github.com/BurntSushi/toml"

	"github.com/asyrjasalo/augent/pkg/frontmatter"
)

// mergeFrontmatter deep-merges platformID's sub-object into the common
// frontmatter, then drops from the emitted frontmatter every
// per-platform sub-object (one key per known platform id) plus the
// "targets" key used to scope which platforms a file applies to.
func mergeFrontmatter(raw, platformID string, knownPlatformIDs map[string]bool) (string, error) {
	doc, err := frontmatter.Parse(raw)
	if err != nil {
		return "", err
	}
	if !doc.HasFrontmatter {
		return raw, nil
	}

	common := map[string]any{}
	for k, v := range doc.Fields {
		if k == "targets" || knownPlatformIDs[k] {
			continue
		}
		common[k] = v
	}

	if sub, ok := doc.Fields[platformID]; ok {
		if subMap, ok := sub.(map[string]any); ok {
			deepMergeInto(common, subMap)
		} else if subMap, ok := sub.(map[any]any); ok {
			deepMergeInto(common, normalizeYAMLMap(subMap))
		}
	}

	return frontmatter.Render(common, doc.Body)
}

// mergeFrontmatterTOML is used for platforms whose transform rule sets
// Extension == "toml" (Gemini commands): the merged frontmatter is
// re-emitted as {description, prompt} TOML instead of YAML, with the
// original body becoming the "prompt" field when not already set.
func mergeFrontmatterTOML(raw, platformID string, knownPlatformIDs map[string]bool) (string, error) {
	doc, err := frontmatter.Parse(raw)
	if err != nil {
		return "", err
	}

	common := map[string]any{}
	if doc.HasFrontmatter {
		for k, v := range doc.Fields {
			if k == "targets" || knownPlatformIDs[k] {
				continue
			}
			common[k] = v
		}
		if sub, ok := doc.Fields[platformID]; ok {
			if subMap, ok := sub.(map[string]any); ok {
				deepMergeInto(common, subMap)
			}
		}
	}

	out := struct {
		Description string `toml:"description"`
		Prompt      string `toml:"prompt"`
	}{
		Description: stringOr(common["description"], ""),
		Prompt:      stringOr(common["prompt"], doc.Body),
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fallback
}

func deepMergeInto(dst, src map[string]any) {
	for k, v := range src {
		if srcMap, ok := v.(map[string]any); ok {
			if dstMap, ok := dst[k].(map[string]any); ok {
				deepMergeInto(dstMap, srcMap)
				continue
			}
		}
		dst[k] = v
	}
}

func normalizeYAMLMap(m map[any]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		ks, _ := k.(string)
		if nested, ok := v.(map[any]any); ok {
			v = normalizeYAMLMap(nested)
		}
		out[ks] = v
	}
	return out
}
