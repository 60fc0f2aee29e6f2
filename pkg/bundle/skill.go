package bundle

import (
	"os"
	"regexp"

	"github.com/asyrjasalo/augent/pkg/frontmatter"
)

var skillNamePattern = regexp.MustCompile(`^[a-z0-9-]{1,64}$`)

// validateSkill reads SKILL.md at path and checks it against the
// discovery rules: frontmatter "name" must equal dirName and match
// ^[a-z0-9-]{1,64}$, and "description" must be 1-1024 chars. Returns
// ("", false) for any violation, which discovery treats as "skip this
// skill", never as a fatal discovery error. No warning is emitted for a
// skipped skill.
func validateSkill(path, dirName string) (string, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	doc, err := frontmatter.Parse(string(raw))
	if err != nil || !doc.HasFrontmatter {
		return "", false
	}

	name := doc.StringField("name")
	if name != dirName || !skillNamePattern.MatchString(name) {
		return "", false
	}

	desc := doc.StringField("description")
	if len(desc) < 1 || len(desc) > 1024 {
		return "", false
	}

	return name, true
}
