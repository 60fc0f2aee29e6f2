// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package augent

import (
	"fmt"
	"runtime"
)

// Version information.
// These values can be overridden at build time using -ldflags.
//
// Example:
//
//	go build -ldflags "-X github.com/asyrjasalo/augent.GitCommit=$(git rev-parse HEAD)"
var (
	// Version is the current module version following semantic versioning.
	// Format: MAJOR.MINOR.PATCH[-PRERELEASE], without a leading "v"
	// (VersionString and FullVersion add it).
	Version = "0.1.0"

	// GitCommit is the git commit SHA of the build.
	// This is set during the build process.
	GitCommit = "unknown"

	// BuildDate is the date when the binary was built.
	// This is set during the build process.
	BuildDate = "unknown"
)

// VersionInfo returns detailed version information as a map.
func VersionInfo() map[string]string {
	return map[string]string{
		"version":   Version,
		"gitCommit": GitCommit,
		"buildDate": BuildDate,
		"goVersion": runtime.Version(),
	}
}

// VersionString returns a formatted version string.
//
// Format: "augent version v0.1.0 (commit: a1b2c3d, built: 2025-11-30)"
func VersionString() string {
	return fmt.Sprintf("augent version v%s (commit: %s, built: %s)",
		Version, GitCommit, BuildDate)
}

// ShortVersion returns just the version number without prefix.
func ShortVersion() string {
	return Version
}

// FullVersion returns the version with 'v' prefix.
func FullVersion() string {
	return "v" + Version
}
