// Package patch applies oracle fix proposals to Gradle configuration
// files. Edits are committed atomically: content is staged in a temp
// file next to the target and moved into place with a rename, so a
// crash or cancellation mid-write never leaves a partial edit visible.
package patch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gradlemend/gradlemend/internal/log"
	"github.com/gradlemend/gradlemend/internal/oracle"
)

// FixMarker labels appended content so a human reading the file can
// tell which lines the repair loop added.
const FixMarker = "gradlemend suggested fix:"

// WriteError indicates an I/O failure while committing an edit.
// It is fatal to the repair session.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write patch to %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Applier mutates configuration files per fix proposals.
// Callers must not run two Apply calls concurrently against the same
// file; the repair session guard serializes sessions per directory.
type Applier struct {
	logger log.Logger
}

// ApplierOption configures an Applier.
type ApplierOption func(*Applier)

// WithLogger sets a logger for applier messages.
func WithLogger(logger log.Logger) ApplierOption {
	return func(a *Applier) {
		a.logger = logger
	}
}

// NewApplier creates an Applier with the given options.
func NewApplier(opts ...ApplierOption) *Applier {
	a := &Applier{logger: log.NewNoop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Apply mutates the file at path per the proposal and reports whether
// an edit landed. For ActionReplaceMatch with an absent pattern the
// call is a no-op and returns (false, nil); the file bytes are left
// untouched. NoFix and Invalid proposals are a caller bug.
func (a *Applier) Apply(proposal *oracle.FixProposal, path string) (bool, error) {
	switch proposal.Action {
	case oracle.ActionAppend:
		return a.applyAppend(proposal, path)
	case oracle.ActionReplaceMatch:
		return a.applyReplaceMatch(proposal, path)
	default:
		return false, fmt.Errorf("proposal action %q carries no edit", proposal.Action)
	}
}

// applyAppend appends the proposal content after the existing bytes,
// wrapped in a marker comment. Existing content is never altered, so
// file size is monotonically non-decreasing. Repeated identical appends
// are not deduplicated.
func (a *Applier) applyAppend(proposal *oracle.FixProposal, path string) (bool, error) {
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return false, &WriteError{Path: path, Err: err}
	}

	var sb strings.Builder
	sb.Write(existing)
	if len(existing) > 0 && existing[len(existing)-1] != '\n' {
		sb.WriteByte('\n')
	}
	sb.WriteString(commentLeader(proposal.TargetFile))
	sb.WriteByte(' ')
	sb.WriteString(FixMarker)
	sb.WriteByte('\n')
	sb.WriteString(proposal.Content)
	sb.WriteByte('\n')

	if err := WriteAtomic(path, []byte(sb.String()), 0644); err != nil {
		return false, &WriteError{Path: path, Err: err}
	}

	a.logger.Info("appended fix", "file", path, "bytes", len(proposal.Content))
	return true, nil
}

// applyReplaceMatch substitutes the first match of the proposal pattern
// with the proposal content. No match (including a missing file) is a
// no-op, not an error, and leaves the file bytes unchanged.
func (a *Applier) applyReplaceMatch(proposal *oracle.FixProposal, path string) (bool, error) {
	existing, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		a.logger.Warn("replace target missing, skipping", "file", path)
		return false, nil
	}
	if err != nil {
		return false, &WriteError{Path: path, Err: err}
	}

	content := string(existing)
	loc := proposal.MatchPattern.FindStringIndex(content)
	if loc == nil {
		a.logger.Warn("replace pattern did not match, skipping",
			"file", path, "pattern", proposal.MatchPattern.String())
		return false, nil
	}

	updated := content[:loc[0]] + proposal.Content + content[loc[1]:]
	if err := WriteAtomic(path, []byte(updated), 0644); err != nil {
		return false, &WriteError{Path: path, Err: err}
	}

	a.logger.Info("replaced matched region",
		"file", path,
		"pattern", proposal.MatchPattern.String(),
		"bytes", len(proposal.Content))
	return true, nil
}

// commentLeader returns the comment syntax for a target file.
func commentLeader(target oracle.TargetFile) string {
	if target == oracle.TargetBuildScript {
		return "//"
	}
	return "#"
}

// WriteAtomic writes data to path via a temp file in the same directory
// followed by a rename. The temp file is removed on every error path.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Best-effort cleanup; rename below makes this a no-op on success.
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
