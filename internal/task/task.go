// Package task implements the task board (C13): a persistent dependency
// graph of work items with bidirectional blocked_by/blocks edges kept
// consistent on every mutation (invariant I6).
package task

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fernglen/crewdeck/internal/lock"
	"github.com/fernglen/crewdeck/internal/statepath"
	"github.com/fernglen/crewdeck/internal/util"
	"github.com/fernglen/crewdeck/internal/validate"
)

// Status is the task lifecycle sum type.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Priority is the task urgency sum type.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// statusOrdinal orders list_tasks output (spec §4.13).
var statusOrdinal = map[Status]int{
	StatusInProgress: 0,
	StatusPending:    1,
	StatusCompleted:  2,
	StatusCancelled:  3,
}

// Record is a task board entry (spec §3).
type Record struct {
	TaskID      string    `json:"task_id"`
	Subject     string    `json:"subject"`
	Description string    `json:"description,omitempty"`
	Status      Status    `json:"status"`
	Assignee    string    `json:"assignee,omitempty"`
	Priority    Priority  `json:"priority"`
	Files       []string  `json:"files,omitempty"`
	BlockedBy   []string  `json:"blocked_by,omitempty"`
	Blocks      []string  `json:"blocks,omitempty"`
	Created     time.Time `json:"created"`
	Updated     time.Time `json:"updated"`
}

func (r *Record) Save(root string) error {
	return util.WriteJSONAtomic(statepath.TaskFile(root, r.TaskID), r, statepath.FileMode)
}

// Load reads a task by id; a missing/corrupt record returns (nil, nil).
func Load(root, taskID string) (*Record, error) {
	var r Record
	if err := util.ReadJSON(statepath.TaskFile(root, taskID), &r); err != nil {
		return nil, nil
	}
	if r.TaskID == "" {
		return nil, nil
	}
	return &r, nil
}

// List reads every task record, skipping unreadable ones.
func List(root string) ([]*Record, error) {
	entries, err := os.ReadDir(statepath.TasksDir(root))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []*Record
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		id := strings.TrimSuffix(name, ".json")
		r, err := Load(root, id)
		if err != nil || r == nil {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// taskLock serializes edits to a task file. Edge updates never hold two
// task locks at once: the edited task's lock is released before the
// other side of each edge is updated under that task's own lock.
func taskLock(root, taskID string) string {
	return statepath.TaskFile(root, taskID) + ".lock"
}

// CreateInput is the validated input to Create.
type CreateInput struct {
	TaskID      string
	Subject     string
	Description string
	Assignee    string
	Priority    Priority
	Files       []string
	BlockedBy   []string
}

// Create implements create_task (spec §4.13).
func Create(root string, in CreateInput, now time.Time) (*Record, error) {
	if strings.TrimSpace(in.Subject) == "" {
		return nil, fmt.Errorf("task: subject must not be empty")
	}
	taskID := in.TaskID
	if taskID == "" {
		taskID = "T" + strconv.FormatInt(now.UnixNano(), 10)
	} else if _, err := validate.ID(taskID); err != nil {
		return nil, fmt.Errorf("task: %w", err)
	}
	if existing, _ := Load(root, taskID); existing != nil {
		return nil, fmt.Errorf("task: %q already exists", taskID)
	}

	priority := in.Priority
	if priority == "" {
		priority = PriorityNormal
	}

	r := &Record{
		TaskID: taskID, Subject: in.Subject, Description: in.Description,
		Status: StatusPending, Assignee: in.Assignee, Priority: priority,
		Files: in.Files, BlockedBy: append([]string(nil), in.BlockedBy...),
		Created: now, Updated: now,
	}
	if err := r.Save(root); err != nil {
		return nil, fmt.Errorf("task: writing %q: %w", taskID, err)
	}

	for _, dep := range in.BlockedBy {
		if err := addBlocksEdge(root, dep, taskID); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// addBlocksEdge appends taskID to dep's blocks list under dep's lock
// (invariant I6: t ∈ blocked_by(this) ⇔ this ∈ blocks(t)).
func addBlocksEdge(root, dep, taskID string) error {
	return lock.WithLock(taskLock(root, dep), lock.DefaultTimeout, lock.DefaultStaleTTL, func() error {
		depRec, err := Load(root, dep)
		if err != nil {
			return err
		}
		if depRec == nil {
			return nil // dependency not found; edge simply isn't recorded on that side
		}
		for _, b := range depRec.Blocks {
			if b == taskID {
				return nil
			}
		}
		depRec.Blocks = append(depRec.Blocks, taskID)
		return depRec.Save(root)
	})
}

// UpdateInput is the validated input to Update; nil fields mean "leave
// unchanged".
type UpdateInput struct {
	TaskID        string
	Status        *Status
	Assignee      *string
	Subject       *string
	Description   *string
	Priority      *Priority
	AddBlockedBy  []string
	AddBlocks     []string
}

// Update implements update_task (spec §4.13).
func Update(root string, in UpdateInput, now time.Time) (*Record, error) {
	changed := false
	var r *Record

	err := lock.WithLock(taskLock(root, in.TaskID), lock.DefaultTimeout, lock.DefaultStaleTTL, func() error {
		var err error
		r, err = Load(root, in.TaskID)
		if err != nil {
			return err
		}
		if r == nil {
			return fmt.Errorf("task: %q not found", in.TaskID)
		}
		if in.Status != nil {
			if !validStatus(*in.Status) {
				return fmt.Errorf("task: invalid status %q", *in.Status)
			}
			r.Status = *in.Status
			changed = true
		}
		if in.Assignee != nil {
			r.Assignee = *in.Assignee
			changed = true
		}
		if in.Subject != nil {
			r.Subject = *in.Subject
			changed = true
		}
		if in.Description != nil {
			r.Description = *in.Description
			changed = true
		}
		if in.Priority != nil {
			r.Priority = *in.Priority
			changed = true
		}
		for _, dep := range in.AddBlockedBy {
			if !contains(r.BlockedBy, dep) {
				r.BlockedBy = append(r.BlockedBy, dep)
				changed = true
			}
		}
		for _, b := range in.AddBlocks {
			if !contains(r.Blocks, b) {
				r.Blocks = append(r.Blocks, b)
				changed = true
			}
		}
		if !changed {
			return nil
		}
		r.Updated = now
		return r.Save(root)
	})
	if err != nil {
		return nil, fmt.Errorf("task: update: %w", err)
	}
	if !changed {
		return r, nil
	}

	for _, dep := range in.AddBlockedBy {
		if err := addBlocksEdge(root, dep, in.TaskID); err != nil {
			return nil, err
		}
	}
	for _, b := range in.AddBlocks {
		if err := addBlockedByEdge(root, b, in.TaskID); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func addBlockedByEdge(root, blocked, taskID string) error {
	return lock.WithLock(taskLock(root, blocked), lock.DefaultTimeout, lock.DefaultStaleTTL, func() error {
		rec, err := Load(root, blocked)
		if err != nil || rec == nil {
			return err
		}
		if contains(rec.BlockedBy, taskID) {
			return nil
		}
		rec.BlockedBy = append(rec.BlockedBy, taskID)
		return rec.Save(root)
	})
}

func validStatus(s Status) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// ListFilter narrows List's result.
type ListFilter struct {
	Status   Status
	Assignee string
}

// ListSorted implements list_tasks: sorts by status ordinal.
func ListSorted(root string, f ListFilter) ([]*Record, error) {
	all, err := List(root)
	if err != nil {
		return nil, err
	}
	var out []*Record
	for _, r := range all {
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.Assignee != "" && r.Assignee != f.Assignee {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return statusOrdinal[out[i].Status] < statusOrdinal[out[j].Status]
	})
	return out, nil
}
