package lock

import "fmt"

// MkdirLock is the lighter mkdir-based fallback for shell-hook
// environments that can't rely on O_EXCL file semantics (e.g. a
// restricted shell hook shelling out without a Go process around it).
// Directory creation is atomic on every POSIX and Windows filesystem
// crewdeck targets, which is all a cooperative cooldown lock needs.
type MkdirLock struct{ dir string }

// NewMkdirLock returns a lock rooted at dir.
func NewMkdirLock(dir string) *MkdirLock { return &MkdirLock{dir: dir} }

// TryLock attempts to create the lock directory; it returns false without
// blocking if the directory already exists.
func (m *MkdirLock) TryLock() (bool, error) {
	if err := mkdirExcl(m.dir); err != nil {
		if isExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("creating mkdir-lock %s: %w", m.dir, err)
	}
	return true, nil
}

// Unlock removes the lock directory.
func (m *MkdirLock) Unlock() error {
	return rmdir(m.dir)
}
