package source

import (
	"path/filepath"
	"testing"
)

func TestParseEmptyIsInvalid(t *testing.T) {
	if _, err := Parse("", ""); err == nil {
		t.Fatal("expected error for empty source string")
	}
}

// TestParseDirPaths checks that a relative Dir path is resolved against
// the supplied cwd (so it remains meaningful regardless of the
// process's actual working directory later), while an absolute path
// and a no-cwd parse pass through unchanged.
func TestParseDirPaths(t *testing.T) {
	cwd := t.TempDir()
	cases := []struct {
		in   string
		want string
	}{
		{"./local-bundle", filepath.Join(cwd, "./local-bundle")},
		{"../sibling", filepath.Join(cwd, "../sibling")},
		{"/abs/path", "/abs/path"},
	}
	for _, c := range cases {
		s, err := Parse(c.in, cwd)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", c.in, err)
		}
		if s.Kind != KindDir {
			t.Errorf("Parse(%q) = %+v, want Dir", c.in, s)
		}
		if s.Path != c.want {
			t.Errorf("Parse(%q).Path = %q, want %q", c.in, s.Path, c.want)
		}
	}

	s, err := Parse("./local-bundle", "")
	if err != nil {
		t.Fatalf("Parse with empty cwd: %v", err)
	}
	if s.Path != "./local-bundle" {
		t.Errorf("Parse with empty cwd should pass the path through unchanged, got %q", s.Path)
	}
}

func TestParseExistingDirectoryRelativeToCwd(t *testing.T) {
	dir := t.TempDir()
	s, err := Parse(dir, "")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if s.Kind != KindDir {
		t.Fatalf("expected Dir, got %+v", s)
	}
}

func TestParseGitHubTreeURL(t *testing.T) {
	s, err := Parse("https://github.com/ex/bundle/tree/main/sub", "")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if s.Kind != KindGit || s.URL != "https://github.com/ex/bundle.git" || s.Ref != "main" || s.Subpath != "sub" {
		t.Fatalf("unexpected parse: %+v", s)
	}
}

func TestParseSSHURL(t *testing.T) {
	s, err := Parse("git@github.com:ex/bundle.git#v1", "")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if s.Kind != KindGit || s.URL != "git@github.com:ex/bundle.git" || s.Ref != "v1" {
		t.Fatalf("unexpected parse: %+v", s)
	}
}

func TestParseGitHubShortForm(t *testing.T) {
	s, err := Parse("github:ex/bundle#main", "")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if s.URL != "https://github.com/ex/bundle.git" || s.Ref != "main" {
		t.Fatalf("unexpected parse: %+v", s)
	}
}

func TestParseBareOwnerRepoWithSubBundleAndRef(t *testing.T) {
	s, err := Parse("ex/bundle/sub-name@v2", "")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if s.URL != "https://github.com/ex/bundle.git" || s.SubBundle != "sub-name" || s.Ref != "v2" {
		t.Fatalf("unexpected parse: %+v", s)
	}
}

func TestParseSubpathSeparator(t *testing.T) {
	s, err := Parse("ex/bundle:packages/foo#main", "")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if s.Subpath != "packages/foo" || s.Ref != "main" {
		t.Fatalf("unexpected parse: %+v", s)
	}
}

func TestIsSHA(t *testing.T) {
	if !IsSHA("0123456789abcdef0123456789abcdef01234567") {
		t.Error("expected valid 40-hex SHA to be recognized")
	}
	if IsSHA("main") {
		t.Error("branch name must not be recognized as a SHA")
	}
}

func TestStringRoundTripDir(t *testing.T) {
	s := Source{Kind: KindDir, Path: "./local-bundle"}
	if s.String() != "./local-bundle" {
		t.Errorf("String() = %q", s.String())
	}
}

func TestStringRoundTripGit(t *testing.T) {
	s := Source{Kind: KindGit, URL: "https://github.com/ex/bundle.git", Ref: "main", Subpath: "sub"}
	got := s.String()
	want := "https://github.com/ex/bundle.git:sub#main"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
