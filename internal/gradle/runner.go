// Package gradle runs Gradle builds and edits Gradle configuration files.
//
// The Runner invokes the build tool for a project directory, preferring
// the project's own wrapper script over a globally installed gradle.
// Build output is captured combined (stdout + stderr) because Gradle
// interleaves failure details across both streams.
package gradle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/gradlemend/gradlemend/internal/log"
)

// DefaultBuildTimeout bounds a single Gradle invocation.
const DefaultBuildTimeout = 10 * time.Minute

// WrapperScript is the project-local Gradle entry point.
const WrapperScript = "gradlew"

// BuildResult is the outcome of one Gradle invocation.
// Immutable once returned.
type BuildResult struct {
	// Success is true when the build exited with code zero.
	Success bool

	// RawOutput is the combined stdout and stderr of the build.
	RawOutput string

	// TimedOut is true when the build was killed after exceeding
	// the configured timeout. TimedOut implies !Success.
	TimedOut bool

	// ExitCode is the build process exit code, or -1 when the
	// process was killed before exiting on its own.
	ExitCode int

	// Duration is the wall-clock time of the invocation.
	Duration time.Duration
}

// InvocationError indicates the build tool could not be started at all:
// no wrapper script in the project and no gradle on PATH. It is fatal
// and is not counted as a build failure.
type InvocationError struct {
	Dir string
	Err error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("cannot invoke gradle in %s: %v", e.Dir, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// Runner executes Gradle builds.
type Runner struct {
	timeout time.Duration
	args    []string
	logger  log.Logger

	// lookPath is injectable for testing entry point resolution.
	lookPath func(string) (string, error)
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithTimeout sets the per-build timeout.
func WithTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithBuildArgs overrides the arguments passed to the build tool.
func WithBuildArgs(args ...string) RunnerOption {
	return func(r *Runner) {
		r.args = args
	}
}

// WithLogger sets a logger for runner messages.
func WithLogger(logger log.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a Runner with the given options.
// By default builds run "build --stacktrace" with DefaultBuildTimeout.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		timeout:  DefaultBuildTimeout,
		args:     []string{"build", "--stacktrace"},
		logger:   log.NewNoop(),
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// resolveEntryPoint locates the build tool for a project.
// The project-local wrapper wins over a globally installed gradle.
func (r *Runner) resolveEntryPoint(projectDir string) (string, error) {
	wrapper := filepath.Join(projectDir, WrapperScript)
	if info, err := os.Stat(wrapper); err == nil && !info.IsDir() {
		return wrapper, nil
	}

	global, err := r.lookPath("gradle")
	if err != nil {
		return "", &InvocationError{
			Dir: projectDir,
			Err: fmt.Errorf("no %s in project and gradle not on PATH", WrapperScript),
		}
	}
	return global, nil
}

// Build runs the Gradle build in projectDir and returns its result.
// A failing build is not an error: the caller inspects BuildResult.Success.
// The only error cases are a missing entry point (*InvocationError) and
// caller cancellation.
func (r *Runner) Build(ctx context.Context, projectDir string) (*BuildResult, error) {
	entryPoint, err := r.resolveEntryPoint(projectDir)
	if err != nil {
		return nil, err
	}

	buildCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(buildCtx, entryPoint, r.args...)
	cmd.Dir = projectDir
	// Ensure forked daemons and workers die with the build on timeout.
	configureProcessGroup(cmd)
	cmd.WaitDelay = 10 * time.Second

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	r.logger.Info("running gradle build",
		"dir", projectDir,
		"entry_point", entryPoint,
		"timeout", r.timeout)

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	result := &BuildResult{
		RawOutput: output.String(),
		Duration:  elapsed,
		ExitCode:  -1,
	}

	if buildCtx.Err() == context.DeadlineExceeded {
		// Counted as an ordinary failed attempt, not a fatal error.
		r.logger.Warn("gradle build timed out", "dir", projectDir, "after", elapsed)
		result.TimedOut = true
		return result, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if runErr == nil {
		result.Success = true
		result.ExitCode = 0
		r.logger.Info("gradle build succeeded", "dir", projectDir, "duration", elapsed)
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		r.logger.Info("gradle build failed",
			"dir", projectDir,
			"exit_code", result.ExitCode,
			"duration", elapsed)
		return result, nil
	}

	// The entry point resolved but could not be started (permissions,
	// deleted between stat and exec). Treat like a missing entry point.
	return nil, &InvocationError{Dir: projectDir, Err: runErr}
}
