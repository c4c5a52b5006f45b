// Package fetch ensures a project's source is present in the workspace.
// Fetching is idempotent: a repository already on disk is reset to the
// remote head instead of re-cloned.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/gradlemend/gradlemend/internal/log"
)

// Fetcher acquires project sources with git.
type Fetcher struct {
	baseDir string
	logger  log.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithLogger sets a logger for fetcher messages.
func WithLogger(logger log.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a Fetcher that clones under baseDir.
func NewFetcher(baseDir string, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		baseDir: baseDir,
		logger:  log.NewNoop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ProjectDir returns the workspace directory a repository URL maps to.
func (f *Fetcher) ProjectDir(repoURL string) string {
	return filepath.Join(f.baseDir, ProjectName(repoURL))
}

// ProjectName derives a directory name from a repository URL.
func ProjectName(repoURL string) string {
	name := strings.TrimSuffix(repoURL, "/")
	if idx := strings.LastIndexAny(name, "/:"); idx >= 0 {
		name = name[idx+1:]
	}
	return strings.TrimSuffix(name, ".git")
}

// EnsurePresent makes sure the repository is cloned under the base
// directory and at the remote head, and returns the project path.
// An existing checkout is fetched and hard-reset; local edits from a
// previous repair session are discarded so every session starts clean.
func (f *Fetcher) EnsurePresent(ctx context.Context, repoURL string) (string, error) {
	dir := f.ProjectDir(repoURL)

	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		f.logger.Info("updating existing checkout", "dir", dir)
		if err := f.git(ctx, dir, "fetch", "--depth", "1", "origin"); err != nil {
			return "", err
		}
		if err := f.git(ctx, dir, "reset", "--hard", "FETCH_HEAD"); err != nil {
			return "", err
		}
		return dir, nil
	}

	if err := os.MkdirAll(f.baseDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create workspace directory: %w", err)
	}

	f.logger.Info("cloning project", "url", repoURL, "dir", dir)
	if err := f.git(ctx, f.baseDir, "clone", "--depth", "1", repoURL, dir); err != nil {
		return "", err
	}
	return dir, nil
}

// git runs a git subcommand in dir and wraps failures with its output.
func (f *Fetcher) git(ctx context.Context, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("git %s failed: %w\n%s", args[0], err, output.String())
	}
	return nil
}
