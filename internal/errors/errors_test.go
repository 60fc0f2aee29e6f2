package errors

import (
	"errors"
	"testing"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		wantIs error
	}{
		{
			name:   "wrap with target",
			err:    errors.New("original error"),
			target: ErrNotFound,
			wantIs: ErrNotFound,
		},
		{
			name:   "nil err returns target",
			err:    nil,
			target: ErrNotFound,
			wantIs: ErrNotFound,
		},
		{
			name:   "nil target returns err",
			err:    errors.New("original"),
			target: nil,
			wantIs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.err, tt.target)
			if tt.wantIs != nil && !Is(got, tt.wantIs) {
				t.Errorf("Wrap() error should match %v", tt.wantIs)
			}
		})
	}
}

func TestWrapWithMessage(t *testing.T) {
	original := errors.New("original error")
	wrapped := WrapWithMessage(original, "context")

	if wrapped == nil {
		t.Error("WrapWithMessage should return non-nil error")
	}

	if !Is(wrapped, original) {
		t.Error("wrapped error should match original")
	}

	if WrapWithMessage(nil, "context") != nil {
		t.Error("WrapWithMessage(nil) should return nil")
	}
}

func TestAugentErrorIs(t *testing.T) {
	a := Newf("augent::git::clone_failed", CategoryGit, "clone of %s failed", "ex/bundle").WithCause(errors.New("exit 128"))

	if !errors.Is(a, ErrGitCloneFailed) {
		t.Error("same code should match via errors.Is")
	}
	if errors.Is(a, ErrHashMismatch) {
		t.Error("different code should not match")
	}
	if !errors.Is(a, a.Cause) && errors.Unwrap(a) != a.Cause {
		t.Error("Unwrap should return the cause")
	}
}

func TestWithRemedyAndCause(t *testing.T) {
	base := ErrLockfileOutdated
	withRemedy := base.WithRemedy("run install without --frozen")
	if withRemedy.Remedy == "" {
		t.Error("expected remedy to be set")
	}
	if base.Remedy != "" {
		t.Error("WithRemedy must not mutate the receiver")
	}

	cause := errors.New("diff detected")
	withCause := base.WithCause(cause)
	if withCause.Cause != cause {
		t.Error("expected cause to be attached")
	}
	if base.Cause != nil {
		t.Error("WithCause must not mutate the receiver")
	}
}

func TestTaxonomySentinelsDistinct(t *testing.T) {
	all := []*AugentError{
		ErrInvalidSourceURL, ErrBundleNotFound, ErrBundleNameConflict,
		ErrCircularDependency, ErrHashMismatch, ErrGitRefResolveFailed,
		ErrGitCloneFailed, ErrGitFetchFailed, ErrLockfileOutdated,
		ErrMergeParseFailed, ErrUnknownPlatform,
	}
	seen := map[string]bool{}
	for _, e := range all {
		if seen[e.Code] {
			t.Errorf("duplicate error code: %s", e.Code)
		}
		seen[e.Code] = true
	}
}
