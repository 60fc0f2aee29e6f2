package forgeapi

import (
	"context"
	"testing"
)

func TestDetectHost(t *testing.T) {
	cases := []struct {
		url  string
		want Host
	}{
		{"https://github.com/ex/bundle.git", HostGitHub},
		{"https://github.com/ex/bundle", HostGitHub},
		{"https://gitlab.com/ex/bundle.git", HostGitLab},
		{"https://git.example.com/ex/bundle.git", HostUnknown},
		{"not a url", HostUnknown},
	}
	for _, c := range cases {
		if got := DetectHost(c.url); got != c.want {
			t.Errorf("DetectHost(%q) = %q, want %q", c.url, got, c.want)
		}
	}
}

func TestOwnerRepo(t *testing.T) {
	owner, repo, ok := ownerRepo("https://github.com/ex/bundle.git")
	if !ok || owner != "ex" || repo != "bundle" {
		t.Errorf("ownerRepo = (%q, %q, %v)", owner, repo, ok)
	}

	if _, _, ok := ownerRepo("not a url"); ok {
		t.Error("expected ownerRepo to reject a non-URL input")
	}
}

func TestLookupUnknownHostReturnsFalseNotError(t *testing.T) {
	repo, known, err := Lookup(context.Background(), "https://git.example.com/ex/bundle.git")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if known {
		t.Error("expected known=false for an unrecognized forge host")
	}
	if repo != nil {
		t.Error("expected nil repository for an unrecognized forge host")
	}
}

func TestResolveRefUnknownHostReturnsFalseNotError(t *testing.T) {
	sha, ok, err := ResolveRef(context.Background(), "https://git.example.com/ex/bundle.git", "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected ok=false for an unrecognized forge host")
	}
	if sha != "" {
		t.Errorf("expected empty sha, got %q", sha)
	}
}

func TestResolveRefRejectsNonURL(t *testing.T) {
	_, ok, err := ResolveRef(context.Background(), "not a url", "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected ok=false for a non-URL input")
	}
}
