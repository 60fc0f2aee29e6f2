package cache

import (
	"context"
	"fmt"
	"strings"

	augerrors "github.com/asyrjasalo/augent/internal/errors"
	"github.com/asyrjasalo/augent/internal/gitcmd"
	"github.com/asyrjasalo/augent/pkg/forgeapi"
	"github.com/asyrjasalo/augent/pkg/source"
)

// Fetcher resolves Git refs to exact SHAs and clones repositories at a
// pinned SHA. It shells out to the real git binary via gitcmd.Executor,
// the way the rest of this codebase treats Git as an external tool
// rather than re-implementing the wire protocol.
type Fetcher struct {
	exec *gitcmd.Executor
}

// NewFetcher builds a Fetcher using the default git binary on PATH.
func NewFetcher(opts ...gitcmd.Option) *Fetcher {
	return &Fetcher{exec: gitcmd.NewExecutor(opts...)}
}

// ResolveRef maps ref to a 40-hex commit SHA by consulting the remote's
// refs. A ref that is already a 40-hex SHA passes through unchanged
// (git still validates it exists via ls-remote elsewhere is not
// required; a SHA is accepted at face value and verified at clone
// time).
//
// When url's host is a recognized forge, ResolveRef first tries
// that forge's REST API before falling back to `git ls-remote`; "HEAD"
// is excluded from the fast path since it names git's own symbolic
// default-branch ref, not something any forge's commit-lookup endpoint
// accepts directly.
func (f *Fetcher) ResolveRef(ctx context.Context, url, ref string) (string, error) {
	if ref == "" {
		ref = "HEAD"
	}
	if source.IsSHA(ref) {
		return ref, nil
	}
	if ref != "HEAD" {
		if sha, ok, _ := forgeapi.ResolveRef(ctx, url, ref); ok {
			return sha, nil
		}
	}

	lines, err := f.exec.RunLines(ctx, "", "ls-remote", url, ref)
	if err != nil {
		return "", augerrors.ErrGitRefResolveFailed.WithCause(err).
			WithRemedy(fmt.Sprintf("verify that %q is a branch, tag, or SHA in %s", ref, url))
	}
	if len(lines) == 0 {
		// Try again against refs/heads and refs/tags explicitly, since a
		// bare ref name given to ls-remote without a matching wildcard
		// can come back empty for annotated tags.
		lines, err = f.exec.RunLines(ctx, "", "ls-remote", url, "refs/heads/"+ref, "refs/tags/"+ref)
		if err != nil || len(lines) == 0 {
			return "", augerrors.ErrGitRefResolveFailed.WithRemedy(
				fmt.Sprintf("ref %q was not found on %s", ref, url))
		}
	}

	fields := strings.Fields(lines[0])
	if len(fields) == 0 {
		return "", augerrors.ErrGitRefResolveFailed.WithRemedy("empty ls-remote response")
	}
	sha := fields[0]
	if !source.IsSHA(sha) {
		return "", augerrors.ErrGitRefResolveFailed.WithRemedy("ls-remote returned a non-SHA value")
	}
	return sha, nil
}

// CloneAtSHA performs a clone of url into dest and checks out sha. The
// initial clone is not shallow by SHA (cloning an arbitrary SHA requires
// the remote to allow it, which not all hosts permit): a named ref is
// cloned with depth 1, anything else is cloned in full. If HEAD then
// differs from sha, the exact commit is fetched with depth 1 and checked
// out.
func (f *Fetcher) CloneAtSHA(ctx context.Context, url, ref, sha, dest string) error {
	args := []string{"clone", "--quiet"}
	if ref != "" && !source.IsSHA(ref) {
		args = append(args, "--branch", ref, "--depth", "1")
	}
	args = append(args, url, dest)

	if _, err := f.exec.RunOutput(ctx, "", args...); err != nil {
		return augerrors.ErrGitCloneFailed.WithCause(err).WithRemedy("check network access and that the ref exists")
	}

	if result, err := f.exec.Run(ctx, dest, "rev-parse", "HEAD"); err == nil && result.ExitCode == 0 {
		head := strings.TrimSpace(result.Stdout)
		if head == sha {
			return nil
		}
	}

	// Shallow clone landed on a different commit than the ref currently
	// resolves to (e.g. the branch moved), or ref was itself a SHA: fetch
	// and check out the exact commit.
	if _, err := f.exec.RunOutput(ctx, dest, "fetch", "--quiet", "--depth", "1", "origin", sha); err != nil {
		return augerrors.ErrGitFetchFailed.WithCause(err).WithRemedy(fmt.Sprintf("fetch of %s failed", sha))
	}
	if _, err := f.exec.RunOutput(ctx, dest, "checkout", "--quiet", sha); err != nil {
		return augerrors.ErrGitCloneFailed.WithCause(err).WithRemedy(fmt.Sprintf("checkout of %s failed", sha))
	}
	return nil
}
