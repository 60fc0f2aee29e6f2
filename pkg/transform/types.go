// Package transform implements the transform engine: per-platform
// path mapping (glob from -> template to) and universal frontmatter
// merging, producing one Contribution per matched (bundle, platform,
// input file) triple.
package transform

import "github.com/asyrjasalo/augent/pkg/platform"

// Contribution is one atomic piece of install work: the final bytes one
// bundle contributes to one output path under one platform, awaiting
// the merge engine if other bundles contribute to the same path.
type Contribution struct {
	OutputPath    string
	Content       []byte
	MergeStrategy platform.Strategy
	SourceBundle  string
	SourceFile    string
}
