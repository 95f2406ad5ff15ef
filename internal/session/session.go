// Package session implements the session store (spec §4.8): the record
// schema shared by the hook runtime and every coordinator operation that
// reads or mutates a terminal session, plus status derivation from the
// record and the wall clock.
package session

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fernglen/crewdeck/internal/statepath"
	"github.com/fernglen/crewdeck/internal/util"
)

// Status is the session lifecycle sum type (design notes: "status fields
// should be modeled as sum types with exhaustive match, not strings").
type Status string

const (
	StatusActive  Status = "active"
	StatusIdle    Status = "idle"
	StatusStale   Status = "stale"
	StatusClosed  Status = "closed"
	StatusUnknown Status = "unknown"
)

// SchemaVersion is the current session record schema (spec §3).
const SchemaVersion = 2

// activeAge and idleAge are the heartbeat-driven status thresholds used
// by Derive below. The heartbeat hook's stale sweep does not use them; it
// applies its own one-hour cutoff.
const (
	activeAge = 180 * time.Second
	idleAge   = 600 * time.Second
)

// Op is one entry of a session's bounded recent-operations ring.
type Op struct {
	T    time.Time `json:"t"`
	Tool string    `json:"tool"`
	File string    `json:"file"`
}

// Record is the on-disk session record (spec §3). Status holds whatever
// was last persisted; callers needing the authoritative status call
// Derive, which treats a persisted closed/stale status as a sticky
// override and otherwise computes it from last_active age.
type Record struct {
	Session        string         `json:"session"`
	Status         Status         `json:"status"`
	Project        string         `json:"project"`
	Branch         string         `json:"branch,omitempty"`
	CWD            string         `json:"cwd"`
	TTY            string         `json:"tty,omitempty"`
	Started        time.Time      `json:"started"`
	LastActive     time.Time      `json:"last_active"`
	SchemaVersion  int            `json:"schema_version"`
	ToolCounts     map[string]int `json:"tool_counts,omitempty"`
	FilesTouched   []string       `json:"files_touched,omitempty"`
	RecentOps      []Op           `json:"recent_ops,omitempty"`
	CurrentTask    string         `json:"current_task,omitempty"`
	CurrentFiles   []string       `json:"current_files,omitempty"`
	WorkRegistered bool           `json:"work_registered,omitempty"`
	PlanFile       string         `json:"plan_file,omitempty"`
	HasMessages    bool           `json:"has_messages,omitempty"`
	LastTool       string         `json:"last_tool,omitempty"`
	LastFile       string         `json:"last_file,omitempty"`
	Source         string         `json:"source,omitempty"`
	Ended          *time.Time     `json:"ended,omitempty"`

	// MaxFilesTouched/MaxRecentOps bound the two ring buffers (I2/I3).
}

const (
	MaxFilesTouched = 30
	MaxRecentOps    = 10
)

// Path returns this record's on-disk path.
func (r *Record) Path(root string) string {
	return statepath.SessionFile(root, r.Session)
}

// Save atomically rewrites the session record (design notes: every write
// to a record fully rewrites it atomically).
func (r *Record) Save(root string) error {
	return util.WriteJSONAtomic(r.Path(root), r, statepath.FileMode)
}

// Load reads a session record by id. A missing or corrupt record returns
// (nil, nil): per spec §7, unreadable JSON is swallowed at read sites and
// treated as "no record", never as a server error.
func Load(root, sessionID string) (*Record, error) {
	var r Record
	if err := util.ReadJSON(statepath.SessionFile(root, sessionID), &r); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, nil
	}
	if r.Session == "" {
		return nil, nil
	}
	return &r, nil
}

// List reads every session-*.json file under the terminals directory,
// skipping any that fail to parse.
func List(root string) ([]*Record, error) {
	dir := statepath.Terminals(root)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []*Record
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "session-") || !strings.HasSuffix(name, ".json") {
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(name, "session-"), ".json")
		r, err := Load(root, id)
		if err != nil || r == nil {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Session < out[j].Session })
	return out, nil
}

// Derive computes the authoritative status for r as of now, per §4.8:
// a persisted closed or stale status is a sticky override; otherwise
// status follows last_active age.
func Derive(r *Record, now time.Time) Status {
	switch r.Status {
	case StatusClosed:
		return StatusClosed
	case StatusStale:
		return StatusStale
	}
	if r.LastActive.IsZero() {
		return StatusUnknown
	}
	age := now.Sub(r.LastActive)
	switch {
	case age < activeAge:
		return StatusActive
	case age < idleAge:
		return StatusIdle
	default:
		return StatusStale
	}
}

// PushFileTouched appends path to FilesTouched, removing any prior
// occurrence first (dedup, latest occurrence wins) and keeping the tail
// of length MaxFilesTouched (I2).
func (r *Record) PushFileTouched(path string) {
	out := make([]string, 0, len(r.FilesTouched)+1)
	for _, f := range r.FilesTouched {
		if f != path {
			out = append(out, f)
		}
	}
	out = append(out, path)
	if len(out) > MaxFilesTouched {
		out = out[len(out)-MaxFilesTouched:]
	}
	r.FilesTouched = out
}

// PushRecentOp appends op to RecentOps, keeping the tail of length
// MaxRecentOps (I3).
func (r *Record) PushRecentOp(op Op) {
	r.RecentOps = append(r.RecentOps, op)
	if len(r.RecentOps) > MaxRecentOps {
		r.RecentOps = r.RecentOps[len(r.RecentOps)-MaxRecentOps:]
	}
}

// PlanArtifactGlobs matches paths the heartbeat hook records as PlanFile.
var PlanArtifactGlobs = []string{"PLAN.md", "plan.md", "*.plan.md"}

// IsPlanArtifact reports whether path's basename matches one of the
// plan-artifact glob patterns.
func IsPlanArtifact(path string) bool {
	base := filepath.Base(path)
	for _, pat := range PlanArtifactGlobs {
		if ok, _ := filepath.Match(pat, base); ok {
			return true
		}
	}
	return false
}
