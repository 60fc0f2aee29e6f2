// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package main is the entry point for the augent CLI application.
// augent installs, transforms, and tracks bundles of AI-assistant
// resources (rules, commands, skills, sub-agents, MCP configs) across
// per-tool layouts.
package main

import (
	"github.com/asyrjasalo/augent/cmd/augent/cmd"
)

// version is set during build time via ldflags
var version = "dev"

func main() {
	cmd.Execute(version)
}
