package merge

import "github.com/asyrjasalo/augent/pkg/platform"

// Strategy re-exports platform.Strategy so callers that only need the
// merge engine don't have to import the platform package too.
type Strategy = platform.Strategy

const (
	StrategyReplace   = platform.StrategyReplace
	StrategyShallow   = platform.StrategyShallow
	StrategyDeep      = platform.StrategyDeep
	StrategyComposite = platform.StrategyComposite
)

// StrategyFor returns the merge strategy for an output path, per the
// specification's fixed routing: mcp.jsonc-derived outputs use Deep;
// AGENTS.md/CLAUDE.md/QWEN.md-style root docs use Composite; everything
// else defaults to the rule's own declared strategy (Replace unless
// overridden).
func StrategyFor(outputPath string, ruleStrategy platform.Strategy) platform.Strategy {
	if isMCPOutput(outputPath) {
		return platform.StrategyDeep
	}
	if isRootDocOutput(outputPath) {
		return platform.StrategyComposite
	}
	return ruleStrategy
}

func isMCPOutput(path string) bool {
	return hasSuffixFold(path, "mcp.json") || hasSuffixFold(path, "opencode.json")
}

func isRootDocOutput(path string) bool {
	for _, name := range []string{"AGENTS.md", "CLAUDE.md", "QWEN.md"} {
		if hasSuffixFold(path, name) {
			return true
		}
	}
	return false
}

func hasSuffixFold(s, suffix string) bool {
	if len(s) < len(suffix) {
		return false
	}
	tail := s[len(s)-len(suffix):]
	return equalFold(tail, suffix)
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
