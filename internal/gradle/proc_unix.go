//go:build unix

package gradle

import (
	"os/exec"
	"syscall"
)

// configureProcessGroup places the build in its own process group and
// kills the whole group on cancellation, so Gradle daemons and worker
// processes do not outlive a timed-out build.
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
