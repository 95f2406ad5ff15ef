//go:build windows

package cmd

// restrictUmask is a no-op on Windows, which has no umask concept;
// pathsec.EnsureDir's ACL-based restriction is what matters there.
func restrictUmask() func() { return func() {} }
