// Package frontmatter extracts and re-emits the YAML "---" header block
// that rule/command/agent/skill files carry ahead of their body.
package frontmatter

import (
	"strings"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// Document is a parsed file: its frontmatter (nil if none was present)
// and the remaining body.
type Document struct {
	HasFrontmatter bool
	Fields         map[string]any
	Body           string
}

// Parse splits raw into a frontmatter map and a body. Files without a
// leading "---" block are returned with HasFrontmatter false and the
// full content as Body.
func Parse(raw string) (Document, error) {
	lines := strings.Split(raw, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != delimiter {
		return Document{Body: raw}, nil
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == delimiter {
			end = i
			break
		}
	}
	if end == -1 {
		return Document{Body: raw}, nil
	}

	header := strings.Join(lines[1:end], "\n")
	body := strings.Join(lines[end+1:], "\n")
	body = strings.TrimPrefix(body, "\n")

	fields := map[string]any{}
	if strings.TrimSpace(header) != "" {
		if err := yaml.Unmarshal([]byte(header), &fields); err != nil {
			return Document{}, err
		}
	}

	return Document{HasFrontmatter: true, Fields: fields, Body: body}, nil
}

// Render re-emits a document as "---\n<yaml>---\n<body>". If fields is
// empty, the frontmatter block is omitted entirely.
func Render(fields map[string]any, body string) (string, error) {
	if len(fields) == 0 {
		return body, nil
	}
	encoded, err := yaml.Marshal(fields)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(delimiter)
	b.WriteString("\n")
	b.Write([]byte(encoded))
	b.WriteString(delimiter)
	b.WriteString("\n")
	b.WriteString(body)
	return b.String(), nil
}

// StringField reads a string-valued key, returning "" if absent or not
// a string.
func (d Document) StringField(key string) string {
	v, ok := d.Fields[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
