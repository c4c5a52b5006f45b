package oracle

import (
	"fmt"
	"regexp"
	"strings"
)

// NoFixSentinel is the distinguished action value an oracle returns when
// it cannot, or need not, propose a fix.
const NoFixSentinel = "NO_FIX"

// TargetFile identifies which configuration artifact a proposal edits.
type TargetFile int

const (
	// TargetNone means the proposal does not name a file (NoFix, Invalid).
	TargetNone TargetFile = iota
	// TargetProperties is the line-oriented gradle.properties file.
	TargetProperties
	// TargetBuildScript is the build.gradle script, treated as opaque text.
	TargetBuildScript
)

// String returns the file name the target resolves to.
func (t TargetFile) String() string {
	switch t {
	case TargetProperties:
		return "gradle.properties"
	case TargetBuildScript:
		return "build.gradle"
	default:
		return "none"
	}
}

// Action classifies what a proposal asks the patch applier to do.
// The set is exhaustive: orchestrator code switches over all four values
// and never infers an action from raw response text.
type Action int

const (
	// ActionInvalid marks a response missing a required tag.
	// Distinct from NoFix: Invalid aborts the session as unparsable.
	ActionInvalid Action = iota
	// ActionNoFix means the oracle explicitly declined to propose a fix.
	ActionNoFix
	// ActionAppend appends the proposal content to the target file.
	ActionAppend
	// ActionReplaceMatch substitutes the first match of MatchPattern
	// with the proposal content.
	ActionReplaceMatch
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionNoFix:
		return "no-fix"
	case ActionAppend:
		return "append"
	case ActionReplaceMatch:
		return "replace-match"
	default:
		return "invalid"
	}
}

// FixProposal is a structured description of a single file edit
// suggested by the oracle. Never mutated after parsing.
type FixProposal struct {
	// TargetFile is the configuration artifact to edit.
	// TargetNone for NoFix and Invalid proposals.
	TargetFile TargetFile

	// Action is the edit kind. ActionInvalid and ActionNoFix carry no edit.
	Action Action

	// MatchPattern is the first-match search pattern for ActionReplaceMatch.
	// Nil for every other action.
	MatchPattern *regexp.Regexp

	// Content is the exact text to append or substitute.
	Content string

	// Raw is the oracle's unmodified response, kept for attempt history.
	Raw string
}

// UnparsableError reports an oracle response that could not be parsed
// into a proposal. It aborts the repair session.
type UnparsableError struct {
	Raw string
}

func (e *UnparsableError) Error() string {
	return fmt.Sprintf("oracle response unparsable (%d bytes)", len(e.Raw))
}

// Response tags, required in this order. The oracle's reasoning lines
// (Observation/Thought) may precede them and are ignored.
var (
	actionTagRe  = regexp.MustCompile(`(?m)^\s*Action:\s*(.+)$`)
	fileTagRe    = regexp.MustCompile(`(?m)^\s*Action_Input_File:\s*(.+)$`)
	patternTagRe = regexp.MustCompile(`(?m)^\s*Match_Pattern:\s*(.+)$`)
	contentTagRe = regexp.MustCompile(`(?s)Action_Input_Content:\s*(.+)\z`)
)

// ParseResponse turns a raw oracle response into a FixProposal.
// It never returns an error: malformed responses yield ActionInvalid,
// which the orchestrator surfaces as an UnparsableError. The NO_FIX
// sentinel on the Action line short-circuits to ActionNoFix without
// requiring the file or content tags.
func ParseResponse(raw string) *FixProposal {
	proposal := &FixProposal{Raw: raw, Action: ActionInvalid}

	actionLoc := actionTagRe.FindStringSubmatchIndex(raw)
	if actionLoc == nil {
		return proposal
	}
	actionValue := strings.TrimSpace(raw[actionLoc[2]:actionLoc[3]])

	if strings.EqualFold(actionValue, NoFixSentinel) {
		proposal.Action = ActionNoFix
		return proposal
	}

	fileLoc := fileTagRe.FindStringSubmatchIndex(raw)
	contentLoc := contentTagRe.FindStringSubmatchIndex(raw)
	if fileLoc == nil || contentLoc == nil {
		return proposal
	}
	// Tags must appear in their fixed order.
	if fileLoc[0] < actionLoc[1] || contentLoc[0] < fileLoc[1] {
		return proposal
	}

	target := resolveTarget(strings.TrimSpace(raw[fileLoc[2]:fileLoc[3]]))
	if target == TargetNone {
		return proposal
	}

	content := strings.TrimSpace(raw[contentLoc[2]:contentLoc[3]])
	if content == "" {
		return proposal
	}

	proposal.TargetFile = target
	proposal.Content = content
	proposal.Action = ActionAppend

	// An optional Match_Pattern tag upgrades the edit to a first-match
	// replacement. A pattern that does not compile makes the whole
	// response unparsable rather than silently degrading to an append.
	if patternLoc := patternTagRe.FindStringSubmatch(raw); patternLoc != nil {
		pattern, err := regexp.Compile(strings.TrimSpace(patternLoc[1]))
		if err != nil {
			return &FixProposal{Raw: raw, Action: ActionInvalid}
		}
		proposal.Action = ActionReplaceMatch
		proposal.MatchPattern = pattern
	}

	return proposal
}

// resolveTarget maps a file identifier from the oracle to a TargetFile.
func resolveTarget(name string) TargetFile {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "gradle.properties"):
		return TargetProperties
	case strings.Contains(lower, "build.gradle"):
		return TargetBuildScript
	default:
		return TargetNone
	}
}
