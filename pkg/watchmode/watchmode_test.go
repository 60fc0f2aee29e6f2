package watchmode

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchWithNoPathsReturnsErrNoLocalSources(t *testing.T) {
	err := Watch(context.Background(), nil, Options{}, func(ctx context.Context) error { return nil })
	if err != ErrNoLocalSources {
		t.Fatalf("expected ErrNoLocalSources, got %v", err)
	}
}

func TestWatchTriggersReinstallOnFileChange(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.md"), []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	calls := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, []string{dir}, Options{DebounceDuration: 50 * time.Millisecond}, func(ctx context.Context) error {
			calls <- struct{}{}
			return nil
		})
	}()

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "a.md"), []byte("v2"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-calls:
	case <-time.After(1500 * time.Millisecond):
		t.Fatal("expected reinstall to be triggered after file change")
	}
	cancel()
	<-done
}

func TestWatchTriggersReinstallOnNestedFileChange(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "rules", "sub")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(nested, "a.md")
	if err := os.WriteFile(target, []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	calls := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, []string{dir}, Options{DebounceDuration: 50 * time.Millisecond}, func(ctx context.Context) error {
			calls <- struct{}{}
			return nil
		})
	}()

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(target, []byte("v2"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-calls:
	case <-time.After(1500 * time.Millisecond):
		t.Fatal("expected reinstall to be triggered after a nested file change")
	}
	cancel()
	<-done
}

func TestWatchTracksNewlyCreatedSubdirectory(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	calls := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, []string{dir}, Options{DebounceDuration: 50 * time.Millisecond}, func(ctx context.Context) error {
			calls <- struct{}{}
			return nil
		})
	}()

	time.Sleep(100 * time.Millisecond)
	newDir := filepath.Join(dir, "skills", "example")
	if err := os.MkdirAll(newDir, 0o755); err != nil {
		t.Fatal(err)
	}
	// drain the reinstall triggered by the directory creation itself
	select {
	case <-calls:
	case <-time.After(1500 * time.Millisecond):
		t.Fatal("expected reinstall to be triggered after directory creation")
	}

	if err := os.WriteFile(filepath.Join(newDir, "SKILL.md"), []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-calls:
	case <-time.After(1500 * time.Millisecond):
		t.Fatal("expected reinstall to be triggered for a file inside a newly created subdirectory")
	}
	cancel()
	<-done
}
