package session

import (
	"encoding/json"
	"time"

	"github.com/fernglen/crewdeck/internal/jsonl"
	"github.com/fernglen/crewdeck/internal/statepath"
	"github.com/fernglen/crewdeck/internal/util"
)

// activityTruncateThreshold and activityTruncateKeep implement the
// heartbeat's "truncate activity.jsonl to 500 entries when exceeding
// 600" rule (spec §4.7).
const (
	activityTruncateThreshold = 600
	activityTruncateKeep      = 500
)

// ActivityEntry is one line of the universal per-tool-call activity log
// (spec §3, §4.10).
// File holds the full (not basename-shortened) path of a file-tool call,
// since the conflict detector's recent-edit scan needs to compare it
// against normalized candidate paths — basename-only comparisons are
// explicitly forbidden (spec §4.10, predecessor false-positive bug).
type ActivityEntry struct {
	T       time.Time `json:"t"`
	Session string    `json:"session"`
	Tool    string    `json:"tool"`
	File    string    `json:"file,omitempty"`
}

// AppendActivity appends a single activity line under an exclusive
// append lock and truncates the log if it has grown too large.
func AppendActivity(root string, e ActivityEntry) error {
	path := statepath.ActivityLog(root)
	line, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if err := util.AppendLineLocked(path, string(line), statepath.FileMode); err != nil {
		return err
	}
	return truncateIfLarge(path, activityTruncateThreshold, activityTruncateKeep)
}

// RecentActivity returns up to the last `limit` parsed activity entries
// (oldest first), per the jsonl reader's caps. Used by the conflict
// detector to scan for recent Edit/Write events.
func RecentActivity(root string, limit int) ([]*ActivityEntry, error) {
	entries, _, err := jsonl.ReadInto[ActivityEntry](statepath.ActivityLog(root), jsonl.DefaultMaxBytes, limit)
	if err != nil {
		return nil, err
	}
	return entries, nil
}
