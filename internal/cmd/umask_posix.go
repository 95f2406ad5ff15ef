//go:build !windows

package cmd

import "golang.org/x/sys/unix"

// restrictUmask implements spec.md §4.7's "each hook uses umask 077":
// every file a hook creates inherits owner-only permissions regardless
// of the process's ambient umask.
func restrictUmask() func() {
	old := unix.Umask(0o077)
	return func() { unix.Umask(old) }
}
