package platform

// standardPlatform builds the common shape most tools share: rules,
// commands, agents, and skills under dir/<category>, mcp.jsonc merged
// deeply into dir/mcp.json, and agents.md composited into a root-level
// agentsFile (e.g. AGENTS.md). Individual built-ins then adjust
// extensions or filenames where the tool diverges from this shape.
func standardPlatform(id, name, dir, ruleExt, agentsFile string, detect ...string) Platform {
	if ruleExt == "" {
		ruleExt = "md"
	}
	return Platform{
		ID:        id,
		Name:      name,
		Directory: dir,
		Detection: detect,
		Transforms: []Rule{
			{From: "rules/**/*.md", To: dir + "/rules/{name}." + ruleExt, Merge: StrategyReplace},
			{From: "commands/**/*.md", To: dir + "/commands/{name}.md", Merge: StrategyReplace},
			{From: "agents/**/*.md", To: dir + "/agents/{name}.md", Merge: StrategyReplace},
			{From: "skills/*/SKILL.md", To: dir + "/skills/{name}/SKILL.md", Merge: StrategyReplace},
			{From: "mcp.jsonc", To: dir + "/mcp.json", Merge: StrategyDeep},
			{From: "agents.md", To: agentsFile, Merge: StrategyComposite},
		},
	}
}

// Builtins returns the 17 platforms Augent ships support for,
// ordered as they should appear in registry listings absent user
// overrides.
func Builtins() []Platform {
	plats := []Platform{
		standardPlatform("claude", "Claude Code", ".claude", "md", "CLAUDE.md", ".claude"),
		standardPlatform("cursor", "Cursor", ".cursor", "mdc", "AGENTS.md", ".cursor"),
		standardPlatform("opencode", "OpenCode", ".opencode", "md", "AGENTS.md", ".opencode"),
		standardPlatform("copilot", "GitHub Copilot", ".github/copilot", "md", "AGENTS.md", ".github/copilot"),
		standardPlatform("codex", "Codex", ".codex", "md", "AGENTS.md", ".codex"),
		standardPlatform("gemini", "Gemini CLI", ".gemini", "md", "AGENTS.md", ".gemini"),
		standardPlatform("junie", "Junie", ".junie", "md", "AGENTS.md", ".junie"),
		standardPlatform("kilo", "Kilo Code", ".kilocode", "md", "AGENTS.md", ".kilocode"),
		standardPlatform("kiro", "Kiro", ".kiro", "md", "AGENTS.md", ".kiro"),
		standardPlatform("roo", "Roo Code", ".roo", "md", "AGENTS.md", ".roo"),
		standardPlatform("qwen", "Qwen Code", ".qwen", "md", "QWEN.md", ".qwen"),
		standardPlatform("factory", "Factory", ".factory", "md", "AGENTS.md", ".factory"),
		standardPlatform("augment", "Augment", ".augment", "md", "AGENTS.md", ".augment"),
		standardPlatform("antigravity", "Antigravity", ".antigravity", "md", "AGENTS.md", ".antigravity"),
		standardPlatform("warp", "Warp", ".warp", "md", "AGENTS.md", ".warp"),
		standardPlatform("windsurf", "Windsurf", ".windsurf", "md", "AGENTS.md", ".windsurf"),
	}

	// Gemini commands are TOML ({description, prompt}), not markdown.
	for i := range plats {
		if plats[i].ID == "gemini" {
			plats[i].Transforms[1] = Rule{From: "commands/**/*.md", To: ".gemini/commands/{name}.toml", Merge: StrategyReplace, Extension: "toml"}
		}
	}

	plats = append(plats, Platform{
		ID:        "claude-plugin",
		Name:      "Claude Code Plugin",
		Directory: ".claude-plugin",
		Detection: []string{".claude-plugin/marketplace.json"},
		Transforms: []Rule{
			{From: "rules/**/*.md", To: ".claude/rules/{name}.md", Merge: StrategyReplace},
			{From: "commands/**/*.md", To: ".claude/commands/{name}.md", Merge: StrategyReplace},
			{From: "agents/**/*.md", To: ".claude/agents/{name}.md", Merge: StrategyReplace},
			{From: "skills/*/SKILL.md", To: ".claude/skills/{name}/SKILL.md", Merge: StrategyReplace},
			{From: "mcp.jsonc", To: ".claude/mcp.json", Merge: StrategyDeep},
			{From: "agents.md", To: "CLAUDE.md", Merge: StrategyComposite},
		},
	})

	return plats
}
