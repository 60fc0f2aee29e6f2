// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package merge implements the content merge engine: combining an
// ordered list of Contributions that target the same output path into
// one final byte sequence, under one of four strategies.
//
// # Features
//
//   - Replace: last contribution wins
//   - Shallow: top-level JSON key merge, later overrides earlier
//   - Deep: recursive JSON merge, arrays replaced wholesale
//   - Composite: concatenation with a bundle-delimited header per contributor
//
// # Usage
//
//	final, err := merge.Merge(platform.StrategyDeep, contributions)
package merge
