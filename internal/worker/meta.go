// Package worker implements the worker supervisor (C11): spawning a
// detached agent process via the Platform Launcher, tracking its
// lifecycle through a meta file plus PID/done markers, and soft
// cancellation.
package worker

import (
	"time"

	"github.com/fernglen/crewdeck/internal/statepath"
	"github.com/fernglen/crewdeck/internal/util"
)

// Status is the worker lifecycle sum type (spec §3).
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// Mode selects whether a worker is fire-and-forget or steerable via the
// inbox hook.
type Mode string

const (
	ModePipe        Mode = "pipe"
	ModeInteractive Mode = "interactive"
)

// Meta is the worker meta record (spec §3).
type Meta struct {
	TaskID           string    `json:"task_id"`
	Directory        string    `json:"directory"`
	OriginalDirectory string   `json:"original_directory,omitempty"`
	Prompt           string    `json:"prompt"`
	Model            string    `json:"model"`
	Agent            string    `json:"agent"`
	NotifySessionID  string    `json:"notify_session_id,omitempty"`
	Isolated         bool      `json:"isolated"`
	WorktreeBranch   string    `json:"worktree_branch,omitempty"`
	Mode             Mode      `json:"mode"`
	Files            []string  `json:"files,omitempty"`
	Spawned          time.Time `json:"spawned"`
	Status           Status    `json:"status"`
	Finished         *time.Time `json:"finished,omitempty"`
	Cancelled        *time.Time `json:"cancelled,omitempty"`
	Error            string    `json:"error,omitempty"`
}

// Save atomically rewrites the meta file.
func (m *Meta) Save(root string) error {
	return util.WriteJSONAtomic(statepath.WorkerMetaFile(root, m.TaskID), m, statepath.FileMode)
}

// LoadMeta reads a worker's meta record. A missing/corrupt record
// returns (nil, nil) per the swallow-at-read-sites error policy.
func LoadMeta(root, taskID string) (*Meta, error) {
	var m Meta
	if err := util.ReadJSON(statepath.WorkerMetaFile(root, taskID), &m); err != nil {
		return nil, nil
	}
	if m.TaskID == "" {
		return nil, nil
	}
	return &m, nil
}
