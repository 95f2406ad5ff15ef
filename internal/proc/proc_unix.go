//go:build !windows

package proc

import (
	"os"

	"golang.org/x/sys/unix"
)

// isAlive sends signal 0, which performs error checking (existence,
// permission) without actually signaling the process.
func isAlive(pid int) bool {
	return unix.Kill(pid, 0) == nil
}

// kill sends SIGTERM to the process group first, so any children spawned
// by a worker or pipeline step die with it, then falls back to signaling
// the process directly if it isn't a group leader (or the group send
// failed for some other reason).
func kill(pid int) error {
	if err := unix.Kill(-pid, unix.SIGTERM); err == nil {
		return nil
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return nil
	}
	if err := proc.Signal(unix.SIGTERM); err != nil {
		if err == unix.ESRCH {
			return nil
		}
		return err
	}
	return nil
}
