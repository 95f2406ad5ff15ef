package coordinator

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fernglen/crewdeck/internal/session"
)

func TestDispatchUnknownTool(t *testing.T) {
	root := t.TempDir()
	resp := Dispatch(root, "nonexistent_op", nil)
	if len(resp.Content) != 1 || resp.Content[0].Text != "Unknown tool: nonexistent_op" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestDispatchInvalidArgumentsRendering(t *testing.T) {
	root := t.TempDir()
	resp := Dispatch(root, "get_session", map[string]any{})
	text := resp.Content[0].Text
	if !strings.HasPrefix(text, "Invalid arguments for get_session:") {
		t.Fatalf("text = %q, want an 'Invalid arguments' prefix", text)
	}
}

func TestDispatchCreateTaskReturnsRecord(t *testing.T) {
	root := t.TempDir()
	createResp := Dispatch(root, "create_task", map[string]any{"subject": "write docs"})
	if !strings.Contains(createResp.Content[0].Text, "write docs") {
		t.Fatalf("create_task response missing subject: %s", createResp.Content[0].Text)
	}
	if !strings.Contains(createResp.Content[0].Text, `"task_id":"`) {
		t.Fatalf("create_task response missing generated task_id: %s", createResp.Content[0].Text)
	}
}

func TestDispatchCreateTeamThenListTeams(t *testing.T) {
	root := t.TempDir()
	resp := Dispatch(root, "create_team", map[string]any{
		"team_name": "alpha",
		"members":   []any{map[string]any{"name": "lead", "role": "coordinator"}},
	})
	if !strings.Contains(resp.Content[0].Text, "coordinator") {
		t.Fatalf("create_team response: %s", resp.Content[0].Text)
	}

	listResp := Dispatch(root, "list_teams", map[string]any{})
	if !strings.Contains(listResp.Content[0].Text, "alpha") {
		t.Fatalf("list_teams response: %s", listResp.Content[0].Text)
	}
}

func TestDispatchGetSessionNotFound(t *testing.T) {
	root := t.TempDir()
	resp := Dispatch(root, "get_session", map[string]any{"session_id": "abcdefgh"})
	if !strings.Contains(resp.Content[0].Text, "not found") {
		t.Fatalf("response: %s", resp.Content[0].Text)
	}
}

func TestDispatchSendMessageRejectsUnknownRecipientByDefault(t *testing.T) {
	root := t.TempDir()
	resp := Dispatch(root, "send_message", map[string]any{"from": "a", "to": "ghost", "content": "hi"})
	if !strings.Contains(resp.Content[0].Text, "Invalid arguments") {
		t.Fatalf("expected rejection for unknown recipient, got: %s", resp.Content[0].Text)
	}
}

// TestDispatchDetectConflictsRendersConflictBanner implements scenario
// S2: the response text must literally contain "CONFLICTS DETECTED"
// and name the other session and file, not a bare JSON dump.
func TestDispatchDetectConflictsRendersConflictBanner(t *testing.T) {
	root := t.TempDir()
	seedSessionForConflict(t, root, "aaaa1111", "/p", []string{"/p/src/x.ts"})
	seedSessionForConflict(t, root, "bbbb2222", "/p", []string{"/p/src/x.ts", "/p/src/y.ts"})

	resp := Dispatch(root, "detect_conflicts", map[string]any{
		"session_id": "aaaa1111",
		"files":      []any{"/p/src/x.ts"},
	})
	text := resp.Content[0].Text
	if !strings.Contains(text, "CONFLICTS DETECTED") {
		t.Fatalf("response missing CONFLICTS DETECTED banner: %q", text)
	}
	if !strings.Contains(text, "bbbb2222") {
		t.Fatalf("response missing conflicting session id: %q", text)
	}
	if !strings.Contains(text, "x.ts") {
		t.Fatalf("response missing conflicting file: %q", text)
	}
}

// TestDispatchDetectConflictsNoConflicts implements scenario S3.
func TestDispatchDetectConflictsNoConflicts(t *testing.T) {
	root := t.TempDir()
	seedSessionForConflict(t, root, "p1sess01", "/p1", []string{"/p1/src/a.ts"})
	seedSessionForConflict(t, root, "p2sess02", "/p2", []string{"/p2/src/a.ts"})

	resp := Dispatch(root, "detect_conflicts", map[string]any{
		"session_id": "p1sess01",
		"files":      []any{"/p1/src/a.ts"},
	})
	text := resp.Content[0].Text
	if text != "No conflicts detected" {
		t.Fatalf("text = %q, want exactly %q", text, "No conflicts detected")
	}
}

func seedSessionForConflict(t *testing.T, root, sid, cwd string, filesTouched []string) {
	t.Helper()
	r := &session.Record{Session: sid, Status: session.StatusActive, CWD: cwd, LastActive: time.Now(), FilesTouched: filesTouched}
	if err := r.Save(root); err != nil {
		t.Fatal(err)
	}
}

// TestDispatchUpdateTaskNoChanges covers update_task called with only a
// task_id: spec §4.13 calls for a distinct "no changes" response rather
// than re-rendering the untouched record.
func TestDispatchUpdateTaskNoChanges(t *testing.T) {
	root := t.TempDir()
	createResp := Dispatch(root, "create_task", map[string]any{"subject": "write docs"})
	var created struct {
		TaskID string `json:"task_id"`
	}
	if err := json.Unmarshal([]byte(createResp.Content[0].Text), &created); err != nil {
		t.Fatalf("parsing create_task response: %v", err)
	}

	resp := Dispatch(root, "update_task", map[string]any{"task_id": created.TaskID})
	if resp.Content[0].Text != "no changes" {
		t.Fatalf("text = %q, want %q", resp.Content[0].Text, "no changes")
	}
}

func TestDispatchListTasksEmpty(t *testing.T) {
	root := t.TempDir()
	resp := Dispatch(root, "list_tasks", map[string]any{})
	if resp.Content[0].Text != "null" && resp.Content[0].Text != "[]" {
		t.Fatalf("expected empty task list, got: %s", resp.Content[0].Text)
	}
}
