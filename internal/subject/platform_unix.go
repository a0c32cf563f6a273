//go:build !windows

package subject

import (
	"os/exec"
	"strings"
	"syscall"
)

// setupProcessGroup puts the subject in its own process group so a timeout
// kill reaches any children it forked.
func setupProcessGroup(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}

// killProcessGroup kills the subject and everything in its group.
func killProcessGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}

	if pgid, err := syscall.Getpgid(cmd.Process.Pid); err == nil && pgid > 0 {
		syscall.Kill(-pgid, syscall.SIGKILL)
	}

	// Kill the main process directly as a fallback.
	if err := cmd.Process.Kill(); err != nil {
		if !strings.Contains(err.Error(), "process already finished") {
			return err
		}
	}
	return nil
}
