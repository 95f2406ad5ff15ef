// Package validate implements the bounded regex-based sanitizers every
// coordinator operation and hook runs its inputs through (C3). Every
// failure here is recoverable: callers return a validation-error text
// response rather than propagating a panic or a server error.
package validate

import (
	"fmt"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
)

var (
	idRe    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	nameRe  = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)
	modelRe = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,64}$`)
	ttyRe   = regexp.MustCompile(`^(/dev/ttys?\d+|/dev/pts/\d+)$`)
)

// ID validates an opaque identifier: 1-64 chars of [A-Za-z0-9_-], and no
// ".." substring (defends path-join call sites downstream even though IDs
// are never interpolated into a shell).
func ID(s string) (string, error) {
	if !idRe.MatchString(s) {
		return "", fmt.Errorf("invalid id %q: must match [A-Za-z0-9_-]{1,64}", s)
	}
	if strings.Contains(s, "..") {
		return "", fmt.Errorf("invalid id %q: must not contain ..", s)
	}
	return s, nil
}

// ShortSessionID validates a session id and returns its first 8
// characters. The full id must satisfy ID and be at least 8 characters.
func ShortSessionID(s string) (string, error) {
	full, err := ID(s)
	if err != nil {
		return "", err
	}
	if len(full) < 8 {
		return "", fmt.Errorf("invalid session id %q: must be at least 8 characters", s)
	}
	return full[:8], nil
}

// Name validates and normalizes a display name: allowed characters are
// [A-Za-z0-9._-]; any run of other characters collapses to a single
// hyphen, and leading dots/hyphens and trailing hyphens/dots are
// trimmed. Unlike ID, Name never fails — it normalizes instead — because
// display names (task subjects slugified for a filename, team member
// names) are meant to survive arbitrary free-text input.
func Name(s string) string {
	var b strings.Builder
	lastWasSep := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '_' || r == '-' {
			b.WriteRune(r)
			lastWasSep = false
		} else if !lastWasSep {
			b.WriteByte('-')
			lastWasSep = true
		}
	}
	out := strings.Trim(b.String(), "-")
	out = strings.TrimLeft(out, ".")
	out = strings.TrimRight(out, ".-")
	if len(out) > 64 {
		out = out[:64]
	}
	if out == "" {
		out = "unnamed"
	}
	return out
}

// Model validates a model identifier.
func Model(s string) (string, error) {
	if !modelRe.MatchString(s) {
		return "", fmt.Errorf("invalid model %q: must match [A-Za-z0-9._:-]{1,64}", s)
	}
	return s, nil
}

// Agent validates an agent identifier. Unlike Model, an empty agent is
// permitted — spec.md allows spawn_worker to omit it and fall back to a
// coordinator default.
func Agent(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	if !modelRe.MatchString(s) {
		return "", fmt.Errorf("invalid agent %q: must match [A-Za-z0-9._:-]{1,64}", s)
	}
	return s, nil
}

// Directory validates a working directory string: non-empty, and free of
// NUL/CR/LF/" which would corrupt a generated wrapper script.
func Directory(s string) (string, error) {
	if s == "" {
		return "", fmt.Errorf("directory must not be empty")
	}
	if strings.ContainsAny(s, "\x00\r\n\"") {
		return "", fmt.Errorf("directory %q contains a forbidden character", s)
	}
	return s, nil
}

// SafeTTYPath validates a TTY device path against the allow-list shape
// used by the wake service: /dev/ttyNN, /dev/ttysNN or /dev/pts/NN.
func SafeTTYPath(s string) (string, error) {
	if !ttyRe.MatchString(s) {
		return "", fmt.Errorf("invalid tty path %q", s)
	}
	return s, nil
}

// NormalizeFilePath resolves p against cwd, canonicalizes separators to
// "/", resolves symlinks only if the path exists, lowercases on Windows,
// and returns "" for an empty input (nullable by design — callers treat
// "" as "drop this candidate").
func NormalizeFilePath(p, cwd string) string {
	if p == "" {
		return ""
	}
	abs := p
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(cwd, abs)
	}
	abs = filepath.Clean(abs)

	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	abs = filepath.ToSlash(abs)
	if runtime.GOOS == "windows" {
		abs = strings.ToLower(abs)
	}
	return abs
}
