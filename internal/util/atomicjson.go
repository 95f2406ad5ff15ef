package util

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteJSONAtomic marshals v and writes it to path by writing a temp file
// in the same directory and renaming it over the destination. This is the
// "open, modify, rewrite, rename" helper spec.md's design notes call for:
// every record kind (session, task, team, worker meta, pipeline meta, rate
// window) rewrites wholesale through this function so a reader never
// observes a half-written record.
func WriteJSONAtomic(path string, v any, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating parent dir for %s: %w", path, err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, mode); err != nil {
		return fmt.Errorf("writing temp file for %s: %w", path, err)
	}
	if err := os.Chmod(tmp, mode); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("chmod temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming temp file for %s: %w", path, err)
	}
	return nil
}

// ReadJSON reads and unmarshals path into v. A missing file is reported via
// the returned error satisfying os.IsNotExist; callers that should treat a
// missing/corrupt record as "no record" (per spec.md's error-handling
// design, unreadable JSON is swallowed at read sites) check with
// os.IsNotExist or just ignore a non-nil error and fall back to a zero
// value, as each call site documents.
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// AppendLineLocked appends a single line (without trailing newline) to
// path, creating it if necessary. Callers needing cross-process exclusion
// should wrap this with a lock; AppendLineLocked itself only guarantees the
// write is one syscall so partial interleavings can't split a line.
func AppendLineLocked(path string, line string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating parent dir for %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, mode)
	if err != nil {
		return fmt.Errorf("opening %s for append: %w", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("appending to %s: %w", path, err)
	}
	return nil
}
