// Package errors implements Augent's stable diagnostic-code error taxonomy.
//
// Every fatal error raised by a core component is constructed as an
// *AugentError carrying a dotted code (e.g. "augent::git::clone_failed"),
// a one-line summary, an optional remedy, and an optional wrapped cause.
// Components never format these for a terminal; only cmd/augent does.
package errors

import (
	"errors"
	"fmt"
)

// Category groups error codes by the taxonomy in the specification's
// error handling design: Source, Git, Cache, Discovery, Graph, Platform,
// Lockfile, Filesystem, Merge.
type Category string

const (
	CategorySource    Category = "source"
	CategoryGit       Category = "git"
	CategoryCache     Category = "cache"
	CategoryDiscovery Category = "discovery"
	CategoryGraph     Category = "graph"
	CategoryPlatform  Category = "platform"
	CategoryLockfile  Category = "lockfile"
	CategoryFilesystem Category = "filesystem"
	CategoryMerge     Category = "merge"
)

// AugentError is the common shape behind every stable diagnostic code.
type AugentError struct {
	// Code is a stable, dotted diagnostic code, e.g. "augent::git::clone_failed".
	Code string

	// Category classifies the error for exit-code and fatality purposes.
	Category Category

	// Summary is a single-line, user-facing description.
	Summary string

	// Remedy is an optional suggested fix, shown alongside Summary.
	Remedy string

	// Cause is the underlying error, surfaced only in verbose mode.
	Cause error
}

func (e *AugentError) Error() string {
	if e.Summary != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Summary)
	}
	return e.Code
}

func (e *AugentError) Unwrap() error {
	return e.Cause
}

// Is matches by Code so errors.Is works across wrapped instances.
func (e *AugentError) Is(target error) bool {
	t, ok := target.(*AugentError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New constructs an AugentError with no cause.
func New(code string, category Category, summary string) *AugentError {
	return &AugentError{Code: code, Category: category, Summary: summary}
}

// Newf is New with a formatted summary.
func Newf(code string, category Category, format string, args ...any) *AugentError {
	return &AugentError{Code: code, Category: category, Summary: fmt.Sprintf(format, args...)}
}

// WithRemedy returns a copy of e with Remedy set.
func (e *AugentError) WithRemedy(remedy string) *AugentError {
	cp := *e
	cp.Remedy = remedy
	return &cp
}

// WithCause returns a copy of e with Cause set.
func (e *AugentError) WithCause(cause error) *AugentError {
	cp := *e
	cp.Cause = cause
	return &cp
}

// Wrap returns target if err is nil (nothing to add context to), err if
// target is nil (nothing to attach), or an error that is both err's
// message and satisfies errors.Is(_, target).
func Wrap(err, target error) error {
	if err == nil {
		return target
	}
	if target == nil {
		return err
	}
	return &wrapped{msg: err.Error(), target: target, cause: err}
}

// WrapWithMessage prefixes err with a message while preserving errors.Is
// matching against err itself. Returns nil if err is nil.
func WrapWithMessage(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

type wrapped struct {
	msg    string
	target error
	cause  error
}

func (w *wrapped) Error() string { return w.msg }
func (w *wrapped) Unwrap() error { return w.cause }
func (w *wrapped) Is(target error) bool {
	return errors.Is(w.target, target)
}

// Is reports whether err matches target, wrapping standard library errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps the standard library errors.As for callers that only import
// this package.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Sentinel errors for conditions matched by value across the pipeline.
var (
	ErrNotFound          = New("augent::common::not_found", CategoryFilesystem, "not found")
	ErrInvalidSourceURL  = New("augent::source::invalid_url", CategorySource, "invalid bundle source")
	ErrBundleNotFound    = New("augent::graph::bundle_not_found", CategoryGraph, "bundle not found")
	ErrBundleNameConflict = New("augent::graph::bundle_name_conflict", CategoryGraph, "bundle name conflict")
	ErrCircularDependency = New("augent::graph::circular_dependency", CategoryGraph, "circular dependency")
	ErrHashMismatch      = New("augent::cache::hash_mismatch", CategoryCache, "cache content hash mismatch")
	ErrGitRefResolveFailed = New("augent::git::ref_resolve_failed", CategoryGit, "failed to resolve git ref")
	ErrGitCloneFailed    = New("augent::git::clone_failed", CategoryGit, "git clone failed")
	ErrGitFetchFailed    = New("augent::git::fetch_failed", CategoryGit, "git fetch failed")
	ErrLockfileOutdated  = New("augent::lockfile::outdated", CategoryLockfile, "lockfile is outdated")
	ErrMergeParseFailed  = New("augent::merge::parse_failed", CategoryMerge, "failed to parse contribution for merge")
	ErrUnknownPlatform   = New("augent::platform::unknown_id", CategoryPlatform, "unknown platform id")
)
