package fetch

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestProjectName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://github.com/acme/widget.git", "widget"},
		{"https://github.com/acme/widget", "widget"},
		{"https://github.com/acme/widget/", "widget"},
		{"git@github.com:acme/widget.git", "widget"},
		{"widget", "widget"},
		{"widget.git", "widget"},
	}

	for _, tt := range tests {
		if got := ProjectName(tt.url); got != tt.want {
			t.Errorf("ProjectName(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestProjectDir(t *testing.T) {
	f := NewFetcher("/srv/workspace")

	got := f.ProjectDir("https://github.com/acme/widget.git")
	want := filepath.Join("/srv/workspace", "widget")
	if got != want {
		t.Errorf("ProjectDir = %q, want %q", got, want)
	}
}

// newUpstream creates a local git repository with one commit to clone from.
func newUpstream(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@localhost",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@localhost")
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	run("init", "--initial-branch=main")
	if err := os.WriteFile(filepath.Join(dir, "gradle.properties"), []byte("x=1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	run("add", ".")
	run("commit", "-m", "initial")
	return dir
}

func TestEnsurePresentClones(t *testing.T) {
	upstream := newUpstream(t)
	base := t.TempDir()

	f := NewFetcher(base)
	dir, err := f.EnsurePresent(context.Background(), upstream)
	if err != nil {
		t.Fatalf("EnsurePresent: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "gradle.properties")); err != nil {
		t.Errorf("cloned file missing: %v", err)
	}
}

func TestEnsurePresentResetsExistingCheckout(t *testing.T) {
	upstream := newUpstream(t)
	base := t.TempDir()
	f := NewFetcher(base)

	dir, err := f.EnsurePresent(context.Background(), upstream)
	if err != nil {
		t.Fatalf("first EnsurePresent: %v", err)
	}

	// Simulate leftovers from a previous repair session.
	marked := filepath.Join(dir, "gradle.properties")
	if err := os.WriteFile(marked, []byte("x=1\nstaleFix=2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	dir2, err := f.EnsurePresent(context.Background(), upstream)
	if err != nil {
		t.Fatalf("second EnsurePresent: %v", err)
	}
	if dir2 != dir {
		t.Errorf("expected the same project dir, got %q and %q", dir, dir2)
	}
	data, err := os.ReadFile(marked)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "x=1\n" {
		t.Errorf("local edits must be discarded, got %q", data)
	}
}
