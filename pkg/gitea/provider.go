package gitea

import (
	"context"
	"fmt"

	sdk "code.gitea.io/sdk/gitea"

	"github.com/asyrjasalo/augent/pkg/provider"
	"github.com/asyrjasalo/augent/pkg/ratelimit"
)

// Provider implements the provider.Provider interface for Gitea (and
// Forgejo, which speaks the same API). Unlike GitHub and GitLab, Gitea
// is nearly always self-hosted, so baseURL is required.
type Provider struct {
	baseURL     string
	token       string
	client      *sdk.Client
	rateLimiter *ratelimit.Limiter
}

// ProviderOptions mirrors NewProvider's arguments for callers that
// prefer to build them as a value (e.g. from a config file) before
// constructing the provider.
type ProviderOptions struct {
	Token   string
	BaseURL string
}

// NewProvider creates a new Gitea provider against baseURL. Unlike
// GitHub.com and GitLab.com, Gitea has no well-known public instance,
// so an empty baseURL is a caller error.
func NewProvider(token, baseURL string) (*Provider, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("gitea: baseURL is required (set %s)", "AUGENT_GITEA_HOST")
	}
	return &Provider{
		baseURL:     baseURL,
		token:       token,
		rateLimiter: ratelimit.NewLimiter(1000), // Gitea has no published default; estimate
	}, nil
}

func (p *Provider) ensureClient(ctx context.Context) (*sdk.Client, error) {
	if p.client != nil {
		return p.client, nil
	}
	opts := []sdk.ClientOption{sdk.SetContext(ctx)}
	if p.token != "" {
		opts = append(opts, sdk.SetToken(p.token))
	}
	c, err := sdk.NewClient(p.baseURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("gitea client for %s: %w", p.baseURL, err)
	}
	p.client = c
	return c, nil
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "gitea"
}

// SetToken sets the authentication token; the next call rebuilds the client.
func (p *Provider) SetToken(token string) error {
	p.token = token
	p.client = nil
	return nil
}

// ValidateToken validates the current token by fetching the authenticated user.
func (p *Provider) ValidateToken(ctx context.Context) (bool, error) {
	if p.token == "" {
		return false, nil
	}
	c, err := p.ensureClient(ctx)
	if err != nil {
		return false, err
	}
	_, _, err = c.GetMyUserInfo()
	return err == nil, nil
}

// ResolveRef resolves a branch, tag, or SHA to its commit SHA via the
// Gitea API. Used by pkg/forgeapi as a fast path ahead of git ls-remote.
func (p *Provider) ResolveRef(ctx context.Context, owner, repo, ref string) (string, error) {
	c, err := p.ensureClient(ctx)
	if err != nil {
		return "", err
	}
	commit, _, err := c.GetSingleCommit(owner, repo, ref)
	if err != nil {
		return "", fmt.Errorf("resolve ref %s for %s/%s: %w", ref, owner, repo, err)
	}
	return commit.SHA, nil
}

// giteaPageSize is large enough to cover a typical self-hosted org's
// repos in one page; Augent only ever needs the single repository
// GetRepository returns, so ListOrganizationRepos/ListUserRepos don't
// need full multi-page pagination to satisfy provider.Provider.
const giteaPageSize = 50

// ListOrganizationRepos lists the first page (up to giteaPageSize) of
// repositories in a Gitea organization
func (p *Provider) ListOrganizationRepos(ctx context.Context, org string) ([]*provider.Repository, error) {
	c, err := p.ensureClient(ctx)
	if err != nil {
		return nil, err
	}

	opt := sdk.ListOrgReposOptions{ListOptions: sdk.ListOptions{Page: 1, PageSize: giteaPageSize}}
	repos, _, err := c.ListOrgRepos(org, opt)
	if err != nil {
		return nil, fmt.Errorf("list repos for org %s: %w", org, err)
	}
	all := make([]*provider.Repository, 0, len(repos))
	for _, r := range repos {
		all = append(all, convertGiteaRepo(r))
	}
	return all, nil
}

// ListUserRepos lists the first page (up to giteaPageSize) of
// repositories for a user
func (p *Provider) ListUserRepos(ctx context.Context, user string) ([]*provider.Repository, error) {
	c, err := p.ensureClient(ctx)
	if err != nil {
		return nil, err
	}

	opt := sdk.ListReposOptions{ListOptions: sdk.ListOptions{Page: 1, PageSize: giteaPageSize}}
	repos, _, err := c.ListUserRepos(user, opt)
	if err != nil {
		return nil, fmt.Errorf("list repos for user %s: %w", user, err)
	}
	all := make([]*provider.Repository, 0, len(repos))
	for _, r := range repos {
		all = append(all, convertGiteaRepo(r))
	}
	return all, nil
}

// GetRepository gets a single repository from Gitea
func (p *Provider) GetRepository(ctx context.Context, owner, repo string) (*provider.Repository, error) {
	c, err := p.ensureClient(ctx)
	if err != nil {
		return nil, err
	}
	r, _, err := c.GetRepo(owner, repo)
	if err != nil {
		return nil, fmt.Errorf("get repo %s/%s: %w", owner, repo, err)
	}
	return convertGiteaRepo(r), nil
}

// ListOrganizations lists the first page (up to giteaPageSize) of
// organizations the authenticated user belongs to
func (p *Provider) ListOrganizations(ctx context.Context) ([]*provider.Organization, error) {
	c, err := p.ensureClient(ctx)
	if err != nil {
		return nil, err
	}

	opt := sdk.ListOrgsOptions{ListOptions: sdk.ListOptions{Page: 1, PageSize: giteaPageSize}}
	orgs, _, err := c.ListMyOrgs(opt)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	all := make([]*provider.Organization, 0, len(orgs))
	for _, o := range orgs {
		all = append(all, &provider.Organization{
			Name:        o.UserName,
			Description: o.Description,
			URL:         p.baseURL + "/" + o.UserName,
		})
	}
	return all, nil
}

// GetRateLimit returns current rate limit status. Gitea instances do
// not publish rate-limit headers the way GitHub/GitLab do, so this
// reports the client-side estimate tracked by ratelimit.Limiter rather
// than a server-reported value.
func (p *Provider) GetRateLimit(ctx context.Context) (*provider.RateLimit, error) {
	remaining, limit, resetTime := p.rateLimiter.Status()
	return &provider.RateLimit{
		Limit:     limit,
		Remaining: remaining,
		Reset:     resetTime,
		Used:      limit - remaining,
	}, nil
}

func convertGiteaRepo(r *sdk.Repository) *provider.Repository {
	return &provider.Repository{
		Name:          r.Name,
		FullName:      r.FullName,
		CloneURL:      r.CloneURL,
		SSHURL:        r.SSHURL,
		HTMLURL:       r.HTMLURL,
		Description:   r.Description,
		DefaultBranch: r.DefaultBranch,
		Private:       r.Private,
		Archived:      r.Archived,
		Fork:          r.Fork,
		Size:          r.Size,
		Stars:         r.StarsCount,
		CreatedAt:     r.Created,
		UpdatedAt:     r.Updated,
	}
}
