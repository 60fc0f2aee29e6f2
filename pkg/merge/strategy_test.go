package merge

import (
	"strings"
	"testing"

	"github.com/asyrjasalo/augent/pkg/platform"
	"github.com/asyrjasalo/augent/pkg/transform"
)

func contrib(bundle, content string) transform.Contribution {
	return transform.Contribution{
		OutputPath:   "out",
		Content:      []byte(content),
		SourceBundle: bundle,
		SourceFile:   bundle + "/file",
	}
}

func TestMergeReplaceKeepsLastContributor(t *testing.T) {
	got, err := Merge(platform.StrategyReplace, []transform.Contribution{
		contrib("a", "first"),
		contrib("b", "second"),
	})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("got %q, want %q", got, "second")
	}
}

func TestMergeShallowOverridesTopLevelKeys(t *testing.T) {
	got, err := Merge(platform.StrategyShallow, []transform.Contribution{
		contrib("a", `{"x": 1, "nested": {"a": 1}}`),
		contrib("b", `{"x": 2, "y": 3}`),
	})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	s := string(got)
	if !strings.Contains(s, `"x": 2`) || !strings.Contains(s, `"y": 3`) || !strings.Contains(s, `"nested"`) {
		t.Errorf("unexpected shallow merge result: %s", s)
	}
}

func TestMergeDeepMergesNestedKeysAndReplacesArrays(t *testing.T) {
	got, err := Merge(platform.StrategyDeep, []transform.Contribution{
		contrib("a", `{"servers": {"a": {"cmd": "x"}}, "list": [1, 2]}`),
		contrib("b", `{"servers": {"b": {"cmd": "y"}}, "list": [3]}`),
	})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	s := string(got)
	if !strings.Contains(s, `"a"`) || !strings.Contains(s, `"b"`) {
		t.Errorf("expected both nested servers to survive deep merge: %s", s)
	}
	if !strings.Contains(s, "3") || strings.Contains(s, "1,") {
		t.Errorf("expected array to be replaced wholesale, not merged: %s", s)
	}
}

func TestMergeCompositePreservesAllContributors(t *testing.T) {
	got, err := Merge(platform.StrategyComposite, []transform.Contribution{
		contrib("a", "rule A"),
		contrib("b", "rule B"),
	})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	s := string(got)
	if !strings.Contains(s, "augent: a") || !strings.Contains(s, "augent: b") {
		t.Errorf("expected bundle-delimited headers for both contributors: %s", s)
	}
	if !strings.Contains(s, "rule A") || !strings.Contains(s, "rule B") {
		t.Errorf("expected both contributors' content: %s", s)
	}
}

func TestMergeSingleContributionShortCircuits(t *testing.T) {
	got, err := Merge(platform.StrategyDeep, []transform.Contribution{contrib("a", "raw content")})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if string(got) != "raw content" {
		t.Errorf("got %q, want passthrough of the single contribution", got)
	}
}

func TestMergeInvalidStrategy(t *testing.T) {
	_, err := Merge(platform.Strategy("bogus"), []transform.Contribution{
		contrib("a", "x"), contrib("b", "y"),
	})
	if err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}

func TestMergeShallowRejectsNonObjectJSON(t *testing.T) {
	_, err := Merge(platform.StrategyShallow, []transform.Contribution{
		contrib("a", `[1, 2, 3]`),
		contrib("b", `{"x": 1}`),
	})
	if err == nil {
		t.Fatal("expected error when a shallow contribution is not a JSON object")
	}
}
