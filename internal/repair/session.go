// Package repair drives the build → diagnose → propose → apply cycle
// for one Gradle project until the build passes, the oracle gives up,
// or the attempt budget runs out.
package repair

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/gradlemend/gradlemend/internal/gradle"
	"github.com/gradlemend/gradlemend/internal/oracle"
)

// DefaultMaxAttempts bounds the number of fix attempts per session.
const DefaultMaxAttempts = 3

// State identifies a position in the repair state machine.
type State int

const (
	// StateInit is the state before the first build runs.
	StateInit State = iota
	// StateRunning means a build is in flight.
	StateRunning
	// StateAwaitingOracle means a failed build's diagnostic is with the oracle.
	StateAwaitingOracle
	// StateApplying means a proposal is being written to disk.
	StateApplying
	// StateSuccess is terminal: the build passed.
	StateSuccess
	// StateFailed is terminal: the session failed for the recorded reason.
	StateFailed
	// StateExhausted is terminal: the attempt budget ran out with the
	// build still failing.
	StateExhausted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateRunning:
		return "running"
	case StateAwaitingOracle:
		return "awaiting-oracle"
	case StateApplying:
		return "applying"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	case StateExhausted:
		return "max-attempts-exhausted"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state ends a session.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateFailed || s == StateExhausted
}

// FailureReason explains a StateFailed terminal.
type FailureReason string

const (
	// ReasonNoFix means the oracle explicitly declined to propose a fix.
	ReasonNoFix FailureReason = "no-fix"
	// ReasonUnparsable means an oracle response could not be parsed.
	ReasonUnparsable FailureReason = "unparsable"
	// ReasonApplyFailed means writing a proposal to disk failed.
	ReasonApplyFailed FailureReason = "apply-failed"
	// ReasonOracleError means the oracle call itself failed or timed out.
	ReasonOracleError FailureReason = "oracle-error"
	// ReasonBuildInvocation means the build tool could not be started.
	ReasonBuildInvocation FailureReason = "build-invocation"
)

// AttemptRecord captures one loop iteration: the failed build, the
// proposal the oracle made for it, and whether the edit landed.
type AttemptRecord struct {
	// Index is the 1-based attempt number.
	Index int

	// BuildResult is the failed build that triggered this attempt.
	BuildResult *gradle.BuildResult

	// Proposal is the oracle's response for this attempt.
	Proposal *oracle.FixProposal

	// Applied is true when the proposal's edit was written to disk.
	// False for no-op ReplaceMatch and for NoFix/Invalid proposals.
	Applied bool
}

// Session owns the full history of one bounded-attempt repair run.
// It is created per invocation and never reused. Only the orchestrator
// mutates it, and only from a single goroutine.
type Session struct {
	// ID uniquely identifies the session in logs and responses.
	ID string

	// ProjectPath is the project root being repaired.
	ProjectPath string

	// MaxAttempts bounds len(Attempts).
	MaxAttempts int

	// Attempts is the append-only per-iteration history.
	Attempts []AttemptRecord

	// LastBuild is the most recent build result, terminal or not.
	LastBuild *gradle.BuildResult

	state    State
	terminal State
	reason   FailureReason
}

// newSession creates a session in StateInit.
func newSession(projectPath string, maxAttempts int) *Session {
	return &Session{
		ID:          uuid.NewString(),
		ProjectPath: projectPath,
		MaxAttempts: maxAttempts,
		state:       StateInit,
	}
}

// State returns the session's current state.
func (s *Session) State() State {
	return s.state
}

// TerminalState returns the terminal state, or StateInit if the
// session is still running.
func (s *Session) TerminalState() State {
	return s.terminal
}

// Reason returns the failure reason for a StateFailed terminal.
func (s *Session) Reason() FailureReason {
	return s.reason
}

// transition moves the session to a non-terminal state.
func (s *Session) transition(next State) {
	s.state = next
}

// finish assigns the terminal state. Assigning twice is a state machine
// bug, so it panics rather than silently overwriting history.
func (s *Session) finish(terminal State, reason FailureReason) {
	if s.terminal.Terminal() {
		panic(fmt.Sprintf("repair session %s: terminal state assigned twice (%s then %s)",
			s.ID, s.terminal, terminal))
	}
	s.state = terminal
	s.terminal = terminal
	s.reason = reason
}

// record appends an attempt. The caller must have room in the budget.
func (s *Session) record(build *gradle.BuildResult, proposal *oracle.FixProposal, applied bool) {
	s.Attempts = append(s.Attempts, AttemptRecord{
		Index:       len(s.Attempts) + 1,
		BuildResult: build,
		Proposal:    proposal,
		Applied:     applied,
	})
}

// LastAppliedFix returns the content of the most recent applied
// proposal, or "" when no proposal was applied.
func (s *Session) LastAppliedFix() string {
	for i := len(s.Attempts) - 1; i >= 0; i-- {
		if s.Attempts[i].Applied {
			return s.Attempts[i].Proposal.Content
		}
	}
	return ""
}
