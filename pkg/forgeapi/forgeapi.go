// Package forgeapi supplements cache population's ref resolution: for a
// recognized forge host it asks the matching REST API to resolve a
// branch/tag to a commit SHA via the forge's own refs/commits endpoint,
// instead of shelling out to `git ls-remote`. It also answers a
// narrower metadata question (does this repository exist, what is its
// default branch, is it archived) used by "list --verbose"/"show" and
// by the install preflight that warns before pulling an archived or
// disabled repository. Populating the cache always clones to get
// actual bundle content; this package never substitutes for that.
//
// Both entry points (ResolveRef and Lookup) are pure enrichment: any
// failure (unknown host, missing token, rate limit, network) degrades
// to ok=false/a wrapped error rather than blocking the caller, which
// falls back to `git ls-remote` whenever the fast path isn't usable.
package forgeapi

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"regexp"

	"github.com/asyrjasalo/augent/pkg/gitea"
	"github.com/asyrjasalo/augent/pkg/github"
	"github.com/asyrjasalo/augent/pkg/gitlab"
	"github.com/asyrjasalo/augent/pkg/provider"
)

// hostPattern recognizes the owner/repo portion of an https(s) git URL,
// independent of which forge is hosting it.
var hostPattern = regexp.MustCompile(`^https?://([^/]+)/([^/]+)/([^/]+?)(?:\.git)?/?$`)

// Host identifies a recognized forge by its URL host.
type Host string

const (
	HostGitHub  Host = "github"
	HostGitLab  Host = "gitlab"
	HostGitea   Host = "gitea"
	HostUnknown Host = ""
)

// DetectHost classifies repoURL's host into one of the known forges.
// github.com and gitlab.com are recognized unconditionally. A
// self-hosted Gitea instance is recognized only when its base URL is
// configured via giteaHostEnv and matches repoURL's host; augent has no
// profile/config file naming arbitrary forge hosts, so this env var is
// the practical substitute until one exists.
func DetectHost(repoURL string) Host {
	m := hostPattern.FindStringSubmatch(repoURL)
	if m == nil {
		return HostUnknown
	}
	switch m[1] {
	case "github.com":
		return HostGitHub
	case "gitlab.com":
		return HostGitLab
	default:
		if giteaHost := os.Getenv(giteaHostEnv); giteaHost != "" && sameHost(giteaHost, m[1]) {
			return HostGitea
		}
		return HostUnknown
	}
}

// sameHost reports whether baseURL's hostname equals host.
func sameHost(baseURL, host string) bool {
	u, err := url.Parse(baseURL)
	if err != nil {
		return false
	}
	return u.Hostname() == host
}

// ownerRepo splits a recognized https URL into owner and repo.
func ownerRepo(repoURL string) (owner, repo string, ok bool) {
	m := hostPattern.FindStringSubmatch(repoURL)
	if m == nil {
		return "", "", false
	}
	return m[2], m[3], true
}

// Credentials names the environment variables consulted for each forge's
// API token, read directly from the environment rather than a config
// file. giteaHostEnv has no equivalent for GitHub/GitLab, which have a
// single well-known public host; Gitea is almost always self-hosted, so
// its base URL must be supplied out of band (see DetectHost).
const (
	githubTokenEnv = "AUGENT_GITHUB_TOKEN"
	gitlabTokenEnv = "AUGENT_GITLAB_TOKEN"
	giteaTokenEnv  = "AUGENT_GITEA_TOKEN"
	giteaHostEnv   = "AUGENT_GITEA_HOST"
)

// providerFor builds the provider.Provider for host, reading its token
// from the environment.
func providerFor(host Host) (provider.Provider, error) {
	switch host {
	case HostGitHub:
		return github.NewProvider(os.Getenv(githubTokenEnv)), nil
	case HostGitLab:
		return gitlab.NewProvider(os.Getenv(gitlabTokenEnv), "")
	case HostGitea:
		base := os.Getenv(giteaHostEnv)
		if base == "" {
			return nil, fmt.Errorf("forgeapi: %s must be set to use Gitea acceleration", giteaHostEnv)
		}
		return gitea.NewProvider(os.Getenv(giteaTokenEnv), base)
	default:
		return nil, fmt.Errorf("forgeapi: unrecognized forge host for %q", host)
	}
}

// refResolver is satisfied by any provider that can resolve a ref to a
// commit SHA through its forge's API. All three concrete providers
// (github, gitlab, gitea) implement it; it is kept separate from
// provider.Provider since ref resolution has no bearing on the org/repo
// listing the rest of that interface serves.
type refResolver interface {
	ResolveRef(ctx context.Context, owner, repo, ref string) (string, error)
}

// ResolveRef asks repoURL's forge API to resolve ref to a commit SHA.
// ok is false whenever the fast path cannot be used at all (unrecognized
// host, missing credentials, or an API error), in which case callers
// must fall back to `git ls-remote` themselves; ResolveRef never treats
// "no fast path available" as an error.
func ResolveRef(ctx context.Context, repoURL, ref string) (sha string, ok bool, err error) {
	host := DetectHost(repoURL)
	if host == HostUnknown {
		return "", false, nil
	}
	owner, repo, good := ownerRepo(repoURL)
	if !good {
		return "", false, nil
	}
	tokenEnv := map[Host]string{HostGitHub: githubTokenEnv, HostGitLab: gitlabTokenEnv, HostGitea: giteaTokenEnv}[host]
	if os.Getenv(tokenEnv) == "" {
		return "", false, nil
	}

	p, err := providerFor(host)
	if err != nil {
		return "", false, nil
	}
	rr, supported := p.(refResolver)
	if !supported {
		return "", false, nil
	}

	sha, err = rr.ResolveRef(ctx, owner, repo, ref)
	if err != nil {
		return "", false, fmt.Errorf("forgeapi: %s ResolveRef for %s/%s@%s: %w", host, owner, repo, ref, err)
	}
	return sha, true, nil
}

// Lookup fetches repository metadata for repoURL (an https(s) clone URL)
// via the matching forge's REST API. It returns (nil, false, nil) for a
// host it doesn't recognize, so callers can fall back to a plain clone
// without treating "unknown forge" as an error.
func Lookup(ctx context.Context, repoURL string) (*provider.Repository, bool, error) {
	host := DetectHost(repoURL)
	if host == HostUnknown {
		return nil, false, nil
	}
	owner, repo, ok := ownerRepo(repoURL)
	if !ok {
		return nil, false, nil
	}

	p, err := providerFor(host)
	if err != nil {
		return nil, false, err
	}

	r, err := p.GetRepository(ctx, owner, repo)
	if err != nil {
		return nil, true, fmt.Errorf("forgeapi: %s lookup for %s/%s: %w", host, owner, repo, err)
	}
	return r, true, nil
}
