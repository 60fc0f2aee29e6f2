package cliutil

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// WriteJSON writes the given value as JSON to the writer.
// If verbose is true, it pretty-prints with indentation.
func WriteJSON(w io.Writer, v any, verbose bool) error {
	encoder := json.NewEncoder(w)
	if verbose {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(v)
}

// WriteLLM writes v as a flat "key: value" listing, one field per line,
// the format --format=llm produces for list/show output: a plain-text
// shape cheap for a model to parse without a JSON decoder. It
// round-trips v through JSON to normalize it to a map/slice/scalar tree
// and walks that directly, so any struct works without per-type
// formatting code.
func WriteLLM(w io.Writer, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return err
	}
	return writeLLMValue(w, "", generic)
}

func writeLLMValue(w io.Writer, prefix string, v any) error {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			childPrefix := k
			if prefix != "" {
				childPrefix = prefix + "." + k
			}
			if err := writeLLMValue(w, childPrefix, val[k]); err != nil {
				return err
			}
		}
		return nil
	case []any:
		for i, item := range val {
			childPrefix := fmt.Sprintf("%s[%d]", prefix, i)
			if err := writeLLMValue(w, childPrefix, item); err != nil {
				return err
			}
		}
		return nil
	default:
		_, err := fmt.Fprintf(w, "%s: %v\n", prefix, val)
		return err
	}
}
