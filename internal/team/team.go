// Package team implements the team registry (C14): named groupings of
// members with roles and references to their sessions/tasks.
package team

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fernglen/crewdeck/internal/statepath"
	"github.com/fernglen/crewdeck/internal/util"
)

// Member is one entry of a team's roster.
type Member struct {
	Name      string    `json:"name"`
	Role      string    `json:"role,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	TaskID    string    `json:"task_id,omitempty"`
	Joined    time.Time `json:"joined"`
	Updated   time.Time `json:"updated"`
}

// Record is a team record (spec §3).
type Record struct {
	TeamName    string    `json:"team_name"`
	Project     string    `json:"project,omitempty"`
	Description string    `json:"description,omitempty"`
	Created     time.Time `json:"created"`
	Updated     time.Time `json:"updated"`
	Members     []Member  `json:"members,omitempty"`
}

func (r *Record) Save(root string) error {
	return util.WriteJSONAtomic(statepath.TeamFile(root, r.TeamName), r, statepath.FileMode)
}

// Load reads a team by name; a missing/corrupt record returns (nil, nil).
func Load(root, name string) (*Record, error) {
	var r Record
	if err := util.ReadJSON(statepath.TeamFile(root, name), &r); err != nil {
		return nil, nil
	}
	if r.TeamName == "" {
		return nil, nil
	}
	return &r, nil
}

// List reads every team record, skipping unreadable ones.
func List(root string) ([]*Record, error) {
	entries, err := os.ReadDir(statepath.TeamsDir(root))
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
		r, err := Load(root, strings.TrimSuffix(name, ".json"))
		if err != nil || r == nil {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// MemberInput describes one member to upsert via Create.
type MemberInput struct {
	Name      string
	Role      string
	SessionID string
	TaskID    string
}

// CreateInput is the validated input to Create.
type CreateInput struct {
	TeamName    string
	Project     string
	Description string
	Members     []MemberInput
}

// Create implements create_team: upserts a team record, and for each
// member by name either creates it (joined = now) or updates its
// mutable fields (spec §4.14).
func Create(root string, in CreateInput, now time.Time) (*Record, error) {
	if strings.TrimSpace(in.TeamName) == "" {
		return nil, fmt.Errorf("team: team_name must not be empty")
	}

	r, err := Load(root, in.TeamName)
	if err != nil {
		return nil, err
	}
	if r == nil {
		r = &Record{TeamName: in.TeamName, Created: now}
	}
	if in.Project != "" {
		r.Project = in.Project
	}
	if in.Description != "" {
		r.Description = in.Description
	}

	for _, mi := range in.Members {
		upsertMember(r, mi, now)
	}
	r.Updated = now

	if err := r.Save(root); err != nil {
		return nil, fmt.Errorf("team: writing %q: %w", in.TeamName, err)
	}
	return r, nil
}

func upsertMember(r *Record, mi MemberInput, now time.Time) {
	for i := range r.Members {
		if r.Members[i].Name == mi.Name {
			if mi.Role != "" {
				r.Members[i].Role = mi.Role
			}
			if mi.SessionID != "" {
				r.Members[i].SessionID = mi.SessionID
			}
			if mi.TaskID != "" {
				r.Members[i].TaskID = mi.TaskID
			}
			r.Members[i].Updated = now
			return
		}
	}
	r.Members = append(r.Members, Member{
		Name: mi.Name, Role: mi.Role, SessionID: mi.SessionID, TaskID: mi.TaskID,
		Joined: now, Updated: now,
	})
}
