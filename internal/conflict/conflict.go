// Package conflict implements the conflict detector (C10): given a
// requesting session and a candidate file list, reports overlaps with
// other sessions' touched files and recent Edit/Write activity.
package conflict

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fernglen/crewdeck/internal/session"
	"github.com/fernglen/crewdeck/internal/statepath"
	"github.com/fernglen/crewdeck/internal/util"
	"github.com/fernglen/crewdeck/internal/validate"
)

const activityLookback = 5 * time.Minute
const activityScanLimit = 100

// SessionOverlap is one entry of the session-overlap section.
type SessionOverlap struct {
	Session string
	Project string
	Task    string
	Files   []string
}

// RecentEdit is one entry of the recent-activity section.
type RecentEdit struct {
	Session string
	Tool    string
	File    string
	At      time.Time
}

// Report is the full result of Detect.
type Report struct {
	Overlaps    []SessionOverlap
	RecentEdits []RecentEdit
}

func (r *Report) Empty() bool { return len(r.Overlaps) == 0 && len(r.RecentEdits) == 0 }

// Render renders the report into the text spec §8.2's S2/S3 scenarios
// pin literally: "No conflicts detected" when empty, otherwise a
// "CONFLICTS DETECTED" banner naming each overlapping session and the
// files it touched, followed by any recent-activity matches.
func (r *Report) Render() string {
	if r.Empty() {
		return "No conflicts detected"
	}

	var b strings.Builder
	b.WriteString("CONFLICTS DETECTED\n")
	for _, o := range r.Overlaps {
		names := make([]string, len(o.Files))
		for i, f := range o.Files {
			names[i] = filepath.Base(f)
		}
		b.WriteString(fmt.Sprintf("- session %s also touched: %s\n", o.Session, strings.Join(names, ", ")))
	}
	for _, e := range r.RecentEdits {
		b.WriteString(fmt.Sprintf("- session %s %s %s recently\n", e.Session, strings.ToLower(e.Tool), filepath.Base(e.File)))
	}
	return strings.TrimRight(b.String(), "\n")
}

// Detect implements detect_conflicts (spec §4.10).
func Detect(root, sessionID string, files []string) (*Report, error) {
	requester, err := session.Load(root, sessionID)
	if err != nil {
		return nil, fmt.Errorf("conflict: loading requester: %w", err)
	}
	if requester == nil {
		return nil, fmt.Errorf("conflict: unknown session %q", sessionID)
	}

	requestedNorm := map[string]bool{}
	for _, f := range files {
		if norm := validate.NormalizeFilePath(f, requester.CWD); norm != "" {
			requestedNorm[norm] = true
		}
	}

	others, err := session.List(root)
	if err != nil {
		return nil, fmt.Errorf("conflict: listing sessions: %w", err)
	}

	report := &Report{}
	now := time.Now()
	for _, other := range others {
		if other.Session == requester.Session {
			continue
		}
		if session.Derive(other, now) == session.StatusClosed {
			continue
		}

		union := map[string]bool{}
		for _, f := range other.CurrentFiles {
			union[f] = true
		}
		for _, f := range other.FilesTouched {
			union[f] = true
		}

		var overlapping []string
		for f := range union {
			norm := validate.NormalizeFilePath(f, other.CWD)
			if norm != "" && requestedNorm[norm] {
				overlapping = append(overlapping, f)
			}
		}
		if len(overlapping) > 0 {
			report.Overlaps = append(report.Overlaps, SessionOverlap{
				Session: other.Session, Project: other.Project, Task: other.CurrentTask, Files: overlapping,
			})
		}
	}

	cwdBySession := map[string]string{requester.Session: requester.CWD}
	for _, other := range others {
		cwdBySession[other.Session] = other.CWD
	}

	entries, err := session.RecentActivity(root, activityScanLimit)
	if err == nil {
		cutoff := now.Add(-activityLookback)
		for _, e := range entries {
			if e.T.Before(cutoff) {
				continue
			}
			if e.Tool != "Edit" && e.Tool != "Write" {
				continue
			}
			if e.Session == requester.Session {
				continue
			}
			norm := validate.NormalizeFilePath(e.File, cwdBySession[e.Session])
			if norm != "" && requestedNorm[norm] {
				report.RecentEdits = append(report.RecentEdits, RecentEdit{
					Session: e.Session, Tool: e.Tool, File: e.File, At: e.T,
				})
			}
		}
	}

	if err := appendAudit(root, files, report); err != nil {
		return nil, err
	}
	return report, nil
}

type auditLine struct {
	TS        time.Time `json:"ts"`
	Detector  string    `json:"detector"`
	Files     []string  `json:"files"`
	Conflicts []string  `json:"conflicts"`
}

func appendAudit(root string, files []string, report *Report) error {
	var conflicted []string
	for _, o := range report.Overlaps {
		conflicted = append(conflicted, o.Session)
	}
	line, err := json.Marshal(auditLine{TS: time.Now(), Detector: "detect_conflicts", Files: files, Conflicts: conflicted})
	if err != nil {
		return err
	}
	return util.AppendLineLocked(statepath.ConflictsLog(root), string(line), statepath.FileMode)
}
