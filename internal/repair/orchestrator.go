package repair

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/gradlemend/gradlemend/internal/diagnose"
	"github.com/gradlemend/gradlemend/internal/gradle"
	"github.com/gradlemend/gradlemend/internal/log"
	"github.com/gradlemend/gradlemend/internal/oracle"
	"github.com/gradlemend/gradlemend/internal/patch"
)

// Orchestrator coordinates the build → diagnose → propose → apply cycle.
// One orchestrator serves any number of sequential sessions; per-call
// knobs that used to justify copy-pasted variants (attempt budget,
// timeouts, temperature) live in the collaborators' configuration.
//
// The oracle client is constructed by the caller and passed in; the
// orchestrator holds no process-global oracle state.
type Orchestrator struct {
	runner      *gradle.Runner
	client      *oracle.Client
	applier     *patch.Applier
	extractor   *diagnose.Extractor
	maxAttempts int
	logger      log.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMaxAttempts sets the per-session attempt budget.
func WithMaxAttempts(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxAttempts = n
		}
	}
}

// WithApplier overrides the patch applier.
func WithApplier(a *patch.Applier) Option {
	return func(o *Orchestrator) {
		o.applier = a
	}
}

// WithExtractor overrides the diagnostic extractor.
func WithExtractor(e *diagnose.Extractor) Option {
	return func(o *Orchestrator) {
		o.extractor = e
	}
}

// WithLogger sets a logger for orchestrator messages.
func WithLogger(logger log.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// New creates an Orchestrator around a build runner and an oracle client.
func New(runner *gradle.Runner, client *oracle.Client, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		runner:      runner,
		client:      client,
		applier:     patch.NewApplier(),
		extractor:   diagnose.NewExtractor(),
		maxAttempts: DefaultMaxAttempts,
		logger:      log.NewNoop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Result is the terminal outcome of a repair session.
type Result struct {
	// Session carries the full attempt history.
	Session *Session

	// State is the terminal state reached.
	State State

	// Reason explains a StateFailed terminal.
	Reason FailureReason
}

// Succeeded reports whether the build ended up passing.
func (r *Result) Succeeded() bool {
	return r.State == StateSuccess
}

// Repair runs the state machine for one project until a terminal state.
//
// A failing-then-repaired build is a success, not an error. Errors are
// returned for conditions the loop cannot work around: a missing build
// entry point, an oracle call failure, an unparsable oracle response,
// and a patch write failure. Even then the returned Result is non-nil
// and carries the attempt history accumulated so far.
func (o *Orchestrator) Repair(ctx context.Context, projectPath string) (*Result, error) {
	session := newSession(projectPath, o.maxAttempts)
	logger := o.logger.With("session", session.ID, "project", projectPath)

	logger.Info("starting repair session", "max_attempts", o.maxAttempts)

	for {
		session.transition(StateRunning)
		build, err := o.runner.Build(ctx, projectPath)
		if err != nil {
			// Invocation errors are fatal and not counted as attempts.
			session.finish(StateFailed, ReasonBuildInvocation)
			return o.result(session), err
		}
		session.LastBuild = build

		if build.Success {
			session.finish(StateSuccess, "")
			logger.Info("build repaired", "attempts", len(session.Attempts))
			return o.result(session), nil
		}

		if len(session.Attempts) == session.MaxAttempts {
			session.finish(StateExhausted, "")
			logger.Warn("attempt budget exhausted", "attempts", len(session.Attempts))
			return o.result(session), nil
		}

		session.transition(StateAwaitingOracle)
		proposal, err := o.consult(ctx, session, build)
		if err != nil {
			session.finish(StateFailed, ReasonOracleError)
			return o.result(session), err
		}

		switch proposal.Action {
		case oracle.ActionNoFix:
			session.record(build, proposal, false)
			session.finish(StateFailed, ReasonNoFix)
			logger.Info("oracle declined to propose a fix", "attempt", len(session.Attempts))
			return o.result(session), nil

		case oracle.ActionInvalid:
			session.record(build, proposal, false)
			session.finish(StateFailed, ReasonUnparsable)
			return o.result(session), &oracle.UnparsableError{Raw: proposal.Raw}

		case oracle.ActionAppend, oracle.ActionReplaceMatch:
			session.transition(StateApplying)
			targetPath := filepath.Join(projectPath, proposal.TargetFile.String())
			applied, err := o.applier.Apply(proposal, targetPath)
			if err != nil {
				session.record(build, proposal, false)
				session.finish(StateFailed, ReasonApplyFailed)
				return o.result(session), err
			}
			session.record(build, proposal, applied)
			logger.Info("attempt complete",
				"attempt", len(session.Attempts),
				"action", proposal.Action.String(),
				"target", proposal.TargetFile.String(),
				"applied", applied)

		default:
			return o.result(session), fmt.Errorf("unhandled proposal action %d", proposal.Action)
		}
	}
}

// consult extracts a diagnostic excerpt, gathers current file contents,
// and asks the oracle for a proposal.
func (o *Orchestrator) consult(ctx context.Context, session *Session, build *gradle.BuildResult) (*oracle.FixProposal, error) {
	diagnostic := o.extractor.Extract(build.RawOutput)

	contents := make(map[string]string, 2)
	for _, name := range []string{gradle.PropertiesFile, gradle.BuildScriptFile} {
		content, err := gradle.ReadConfigFile(filepath.Join(session.ProjectPath, name))
		if err != nil {
			return nil, err
		}
		contents[name] = content
	}

	return o.client.Propose(ctx, diagnostic, contents)
}

func (o *Orchestrator) result(session *Session) *Result {
	return &Result{
		Session: session,
		State:   session.TerminalState(),
		Reason:  session.Reason(),
	}
}
