package repair

import (
	"testing"

	"github.com/gradlemend/gradlemend/internal/gradle"
	"github.com/gradlemend/gradlemend/internal/oracle"
)

func TestStateTerminal(t *testing.T) {
	terminals := map[State]bool{
		StateInit:           false,
		StateRunning:        false,
		StateAwaitingOracle: false,
		StateApplying:       false,
		StateSuccess:        true,
		StateFailed:         true,
		StateExhausted:      true,
	}
	for state, want := range terminals {
		if got := state.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", state, got, want)
		}
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateInit, "init"},
		{StateRunning, "running"},
		{StateAwaitingOracle, "awaiting-oracle"},
		{StateApplying, "applying"},
		{StateSuccess, "success"},
		{StateFailed, "failed"},
		{StateExhausted, "max-attempts-exhausted"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestSessionRecordIndexes(t *testing.T) {
	s := newSession("/tmp/demo", 3)

	build := &gradle.BuildResult{ExitCode: 1}
	s.record(build, &oracle.FixProposal{Action: oracle.ActionAppend, Content: "a=1"}, true)
	s.record(build, &oracle.FixProposal{Action: oracle.ActionAppend, Content: "b=2"}, false)

	if len(s.Attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(s.Attempts))
	}
	if s.Attempts[0].Index != 1 || s.Attempts[1].Index != 2 {
		t.Errorf("indexes = %d, %d; want 1, 2", s.Attempts[0].Index, s.Attempts[1].Index)
	}
}

func TestSessionLastAppliedFix(t *testing.T) {
	s := newSession("/tmp/demo", 3)
	build := &gradle.BuildResult{ExitCode: 1}

	if s.LastAppliedFix() != "" {
		t.Error("expected empty fix for a fresh session")
	}

	s.record(build, &oracle.FixProposal{Action: oracle.ActionAppend, Content: "first"}, true)
	s.record(build, &oracle.FixProposal{Action: oracle.ActionReplaceMatch, Content: "skipped"}, false)

	if got := s.LastAppliedFix(); got != "first" {
		t.Errorf("LastAppliedFix = %q, want the most recent applied content", got)
	}

	s.record(build, &oracle.FixProposal{Action: oracle.ActionAppend, Content: "second"}, true)
	if got := s.LastAppliedFix(); got != "second" {
		t.Errorf("LastAppliedFix = %q, want %q", got, "second")
	}
}

func TestSessionFinishTwicePanics(t *testing.T) {
	s := newSession("/tmp/demo", 3)
	s.finish(StateSuccess, "")

	defer func() {
		if recover() == nil {
			t.Error("expected panic on double terminal assignment")
		}
	}()
	s.finish(StateFailed, ReasonNoFix)
}

func TestSessionUniqueIDs(t *testing.T) {
	a := newSession("/tmp/demo", 3)
	b := newSession("/tmp/demo", 3)
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("expected distinct non-empty session IDs, got %q and %q", a.ID, b.ID)
	}
}
