package merge

import (
	"bytes"
	"encoding/json"
	"fmt"

	"dario.cat/mergo"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/asyrjasalo/augent/pkg/platform"
	"github.com/asyrjasalo/augent/pkg/transform"
)

// Merge combines contributions targeting the same output path into one
// final byte sequence, per strategy. contributions must be given in
// install order (discovery/topological order); later entries are
// "later" for purposes of last-wins semantics. An empty contributions
// slice returns a nil, nil result.
func Merge(strategy platform.Strategy, contributions []transform.Contribution) ([]byte, error) {
	if len(contributions) == 0 {
		return nil, nil
	}
	if len(contributions) == 1 {
		return contributions[0].Content, nil
	}

	switch strategy {
	case platform.StrategyReplace:
		return mergeReplace(contributions), nil
	case platform.StrategyShallow:
		return mergeShallow(contributions)
	case platform.StrategyDeep:
		return mergeDeep(contributions)
	case platform.StrategyComposite:
		return mergeComposite(contributions), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStrategy, strategy)
	}
}

// mergeReplace keeps only the last contribution's bytes.
func mergeReplace(contributions []transform.Contribution) []byte {
	return contributions[len(contributions)-1].Content
}

// mergeShallow merges top-level JSON keys only: later contributions
// overwrite earlier ones key-for-key, but a nested object value is
// replaced wholesale rather than merged into.
func mergeShallow(contributions []transform.Contribution) ([]byte, error) {
	acc := "{}"
	for _, c := range contributions {
		parsed := gjson.ParseBytes(c.Content)
		if !parsed.IsObject() {
			return nil, fmt.Errorf("%w: %s is not a JSON object", ErrParseFailed, c.SourceFile)
		}
		var setErr error
		parsed.ForEach(func(key, value gjson.Result) bool {
			acc, setErr = sjson.SetRaw(acc, jsonPathEscape(key.String()), value.Raw)
			return setErr == nil
		})
		if setErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrParseFailed, setErr)
		}
	}
	return reindent(acc)
}

// mergeDeep recursively merges JSON objects, with later contributions'
// fields overriding earlier ones at every depth. Arrays are replaced
// wholesale rather than concatenated or merged element-wise, matching
// the specification's array semantics.
func mergeDeep(contributions []transform.Contribution) ([]byte, error) {
	acc := map[string]any{}
	for _, c := range contributions {
		var next map[string]any
		if err := json.Unmarshal(c.Content, &next); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrParseFailed, c.SourceFile, err)
		}
		if err := mergo.Merge(&acc, next, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
		}
	}
	out, err := json.MarshalIndent(acc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// mergeComposite concatenates every contribution's content, separated
// by a header identifying the contributing bundle, so a human reading
// the merged file can see where each section came from.
func mergeComposite(contributions []transform.Contribution) []byte {
	var buf bytes.Buffer
	for i, c := range contributions {
		if i > 0 {
			buf.WriteString("\n\n")
		}
		fmt.Fprintf(&buf, "<!-- augent: %s -->\n", c.SourceBundle)
		buf.Write(bytes.TrimRight(c.Content, "\n"))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func jsonPathEscape(key string) string {
	// sjson treats '.' and '*' as path separators/wildcards; a raw
	// top-level key containing either must be escaped to stay a single
	// path segment.
	escaped := make([]byte, 0, len(key))
	for i := 0; i < len(key); i++ {
		switch key[i] {
		case '.', '*', '?':
			escaped = append(escaped, '\\')
		}
		escaped = append(escaped, key[i])
	}
	return string(escaped)
}

func reindent(raw string) ([]byte, error) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}
