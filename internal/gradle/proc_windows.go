//go:build windows

package gradle

import "os/exec"

// configureProcessGroup is a no-op on Windows; exec.CommandContext's
// default kill terminates the direct child only.
func configureProcessGroup(cmd *exec.Cmd) {}
