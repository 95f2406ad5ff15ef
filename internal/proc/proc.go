// Package proc implements the process supervisor (spec §4.6): PID
// liveness probing and termination across Unix and Windows, with no
// dependency on the process being a child of this one.
package proc

import (
	"fmt"
	"strconv"
)

// ParsePID validates that s is a positive integer PID, the precondition
// shared by IsAlive and Kill.
func ParsePID(s string) (int, error) {
	pid, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("proc: %q is not an integer pid", s)
	}
	if pid <= 0 {
		return 0, fmt.Errorf("proc: pid %d is not positive", pid)
	}
	return pid, nil
}

// IsAlive reports whether pid refers to a running process. A malformed
// pid string is treated as "not alive" rather than an error, mirroring
// the defensive posture the rest of the supervisor takes toward hostile
// or stale input.
func IsAlive(pidStr string) bool {
	pid, err := ParsePID(pidStr)
	if err != nil {
		return false
	}
	return isAlive(pid)
}

// Kill terminates pid: SIGTERM to the process group then the process
// itself on Unix, a forced tree-terminate on Windows. Returns an error
// only for a malformed pid or a termination call that itself failed;
// killing an already-dead process is not an error.
func Kill(pidStr string) error {
	pid, err := ParsePID(pidStr)
	if err != nil {
		return err
	}
	return kill(pid)
}
