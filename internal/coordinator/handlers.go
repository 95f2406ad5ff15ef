package coordinator

import (
	"fmt"
	"time"

	"github.com/fernglen/crewdeck/internal/conflict"
	"github.com/fernglen/crewdeck/internal/inbox"
	"github.com/fernglen/crewdeck/internal/launch"
	"github.com/fernglen/crewdeck/internal/pipeline"
	"github.com/fernglen/crewdeck/internal/session"
	"github.com/fernglen/crewdeck/internal/task"
	"github.com/fernglen/crewdeck/internal/team"
	"github.com/fernglen/crewdeck/internal/validate"
	"github.com/fernglen/crewdeck/internal/wake"
	"github.com/fernglen/crewdeck/internal/worker"
)

// wakerFunc adapts a plain function to inbox.Waker so send_directive can
// invoke the wake service without an import cycle.
type wakerFunc func(root, sessionID, message string) error

func (f wakerFunc) Wake(root, sessionID, message string) error { return f(root, sessionID, message) }

func handleListSessions(root string, a args) (string, error) {
	recs, err := session.List(root)
	if err != nil {
		return "", err
	}
	includeClosed := a.boolOr("include_closed", false)
	project := a.str("project")
	now := time.Now()

	out := make([]map[string]any, 0, len(recs))
	for _, r := range recs {
		status := session.Derive(r, now)
		if !includeClosed && status == session.StatusClosed {
			continue
		}
		if project != "" && r.Project != project {
			continue
		}
		out = append(out, map[string]any{
			"session": r.Session, "status": status, "project": r.Project,
			"cwd": r.CWD, "current_task": r.CurrentTask, "last_active": r.LastActive,
		})
	}
	return toJSON(out)
}

func handleGetSession(root string, a args) (string, error) {
	id, err := a.requireStr("session_id")
	if err != nil {
		return "", err
	}
	r, err := session.Load(root, id)
	if err != nil {
		return "", err
	}
	if r == nil {
		return "", fmt.Errorf("session %q not found", id)
	}
	return toJSON(r)
}

func handleCheckInbox(root string, a args) (string, error) {
	id, err := a.requireStr("session_id")
	if err != nil {
		return "", err
	}
	if _, err := validate.ID(id); err != nil {
		return "", err
	}
	result, err := inbox.CheckInbox(root, id)
	if err != nil {
		return "", err
	}
	return toJSON(result.Items)
}

func handleSendMessage(root string, a args) (string, error) {
	from, err := a.requireStr("from")
	if err != nil {
		return "", err
	}
	to, err := a.requireStr("to")
	if err != nil {
		return "", err
	}
	content, err := a.requireStr("content")
	if err != nil {
		return "", err
	}
	priority := inbox.Priority(a.str("priority"))
	if priority == "" {
		priority = inbox.PriorityNormal
	}
	allowOffline := a.boolOr("allow_offline", false)
	if err := inbox.Send(root, from, to, content, priority, allowOffline); err != nil {
		return "", err
	}
	return "sent", nil
}

func handleBroadcast(root string, a args) (string, error) {
	from, err := a.requireStr("from")
	if err != nil {
		return "", err
	}
	content, err := a.requireStr("content")
	if err != nil {
		return "", err
	}
	priority := inbox.Priority(a.str("priority"))
	if priority == "" {
		priority = inbox.PriorityNormal
	}
	n, err := inbox.Broadcast(root, from, content, priority)
	if err != nil {
		return "", err
	}
	return toJSON(map[string]any{"sent_to": n})
}

func handleSendDirective(root string, a args) (string, error) {
	from, err := a.requireStr("from")
	if err != nil {
		return "", err
	}
	to, err := a.requireStr("to")
	if err != nil {
		return "", err
	}
	content, err := a.requireStr("content")
	if err != nil {
		return "", err
	}
	priority := inbox.Priority(a.str("priority"))
	if priority == "" {
		priority = inbox.PriorityNormal
	}
	if err := inbox.SendDirective(root, from, to, content, priority, wakerFunc(wake.Wake)); err != nil {
		return "", err
	}
	return "sent", nil
}

func handleDetectConflicts(root string, a args) (string, error) {
	id, err := a.requireStr("session_id")
	if err != nil {
		return "", err
	}
	files := a.strSlice("files")
	report, err := conflict.Detect(root, id, files)
	if err != nil {
		return "", err
	}
	return report.Render(), nil
}

func handleSpawnTerminal(root string, a args) (string, error) {
	directory, err := a.requireStr("directory")
	if err != nil {
		return "", err
	}
	if _, err := validate.Directory(directory); err != nil {
		return "", err
	}
	layout := launch.Layout(a.str("layout"))
	if layout == "" {
		layout = launch.LayoutTab
	}
	if err := spawnTerminal(directory, a.str("initial_prompt"), layout); err != nil {
		return "", err
	}
	return "launched", nil
}

func handleSpawnWorker(root string, a args) (string, error) {
	directory, err := a.requireStr("directory")
	if err != nil {
		return "", err
	}
	prompt, err := a.requireStr("prompt")
	if err != nil {
		return "", err
	}
	model := a.str("model")
	if model != "" {
		if model, err = validate.Model(model); err != nil {
			return "", err
		}
	}
	agent, err := validate.Agent(a.str("agent"))
	if err != nil {
		return "", err
	}
	notify := a.str("notify_session_id")
	if notify == "" {
		notify = a.str("session_id")
	}
	mode := worker.Mode(a.str("mode"))
	if mode == "" {
		mode = worker.ModePipe
	}
	layout := launch.Layout(a.str("layout"))
	if layout == "" {
		layout = launch.LayoutTab
	}

	c := loadConfig(root)
	spec := worker.Spec{
		Directory: directory, Prompt: prompt, Model: model, Agent: agent,
		TaskID: a.str("task_id"), NotifySessionID: notify, Files: a.strSlice("files"),
		Layout: layout, Mode: mode, Isolate: a.boolOr("isolate", false),
		AgentBinary: c.AgentBinary,
	}
	m, err := worker.Spawn(root, spec, time.Now())
	if err != nil {
		return "", err
	}
	return toJSON(m)
}

func handleGetResult(root string, a args) (string, error) {
	id, err := a.requireStr("task_id")
	if err != nil {
		return "", err
	}
	result, err := worker.GetResult(root, id, a.intOr("tail_lines", worker.DefaultTailLines))
	if err != nil {
		return "", err
	}
	return toJSON(result)
}

func handleWakeSession(root string, a args) (string, error) {
	id, err := a.requireStr("session_id")
	if err != nil {
		return "", err
	}
	message, err := a.requireStr("message")
	if err != nil {
		return "", err
	}
	if err := wake.Wake(root, id, message); err != nil {
		return "", err
	}
	return "woken", nil
}

func handleKillWorker(root string, a args) (string, error) {
	id, err := a.requireStr("task_id")
	if err != nil {
		return "", err
	}
	if err := worker.Kill(root, id, time.Now()); err != nil {
		return "", err
	}
	return "killed", nil
}

func handleRunPipeline(root string, a args) (string, error) {
	directory, err := a.requireStr("directory")
	if err != nil {
		return "", err
	}
	rawTasks := a.mapSlice("tasks")
	if len(rawTasks) == 0 {
		return "", fmt.Errorf("tasks must not be empty")
	}
	steps := make([]pipeline.StepSpec, 0, len(rawTasks))
	for _, t := range rawTasks {
		steps = append(steps, pipeline.StepSpec{
			Name:   strField(t, "name"),
			Prompt: strField(t, "prompt"),
			Model:  strField(t, "model"),
			Agent:  strField(t, "agent"),
		})
	}
	c := loadConfig(root)
	m, err := pipeline.Run(root, directory, steps, a.str("pipeline_id"), c.AgentBinary, time.Now())
	if err != nil {
		return "", err
	}
	return toJSON(m)
}

func strField(m map[string]any, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func handleGetPipeline(root string, a args) (string, error) {
	id, err := a.requireStr("pipeline_id")
	if err != nil {
		return "", err
	}
	result, err := pipeline.Get(root, id)
	if err != nil {
		return "", err
	}
	return toJSON(result)
}

func handleCreateTask(root string, a args) (string, error) {
	subject, err := a.requireStr("subject")
	if err != nil {
		return "", err
	}
	priority := task.Priority(a.str("priority"))
	if priority == "" {
		priority = task.PriorityNormal
	}
	r, err := task.Create(root, task.CreateInput{
		TaskID: a.str("task_id"), Subject: subject, Description: a.str("description"),
		Assignee: a.str("assignee"), Priority: priority, Files: a.strSlice("files"),
		BlockedBy: a.strSlice("blocked_by"),
	}, time.Now())
	if err != nil {
		return "", err
	}
	return toJSON(r)
}

func handleUpdateTask(root string, a args) (string, error) {
	id, err := a.requireStr("task_id")
	if err != nil {
		return "", err
	}
	in := task.UpdateInput{TaskID: id, AddBlockedBy: a.strSlice("add_blocked_by"), AddBlocks: a.strSlice("add_blocks")}
	if v := a.str("status"); v != "" {
		s := task.Status(v)
		in.Status = &s
	}
	if v := a.str("assignee"); v != "" {
		in.Assignee = &v
	}
	if v := a.str("subject"); v != "" {
		in.Subject = &v
	}
	if v := a.str("description"); v != "" {
		in.Description = &v
	}
	if v := a.str("priority"); v != "" {
		p := task.Priority(v)
		in.Priority = &p
	}
	if in.Status == nil && in.Assignee == nil && in.Subject == nil && in.Description == nil &&
		in.Priority == nil && len(in.AddBlockedBy) == 0 && len(in.AddBlocks) == 0 {
		return "no changes", nil
	}
	r, err := task.Update(root, in, time.Now())
	if err != nil {
		return "", err
	}
	return toJSON(r)
}

func handleListTasks(root string, a args) (string, error) {
	f := task.ListFilter{Status: task.Status(a.str("status")), Assignee: a.str("assignee")}
	list, err := task.ListSorted(root, f)
	if err != nil {
		return "", err
	}
	return toJSON(list)
}

func handleGetTask(root string, a args) (string, error) {
	id, err := a.requireStr("task_id")
	if err != nil {
		return "", err
	}
	r, err := task.Load(root, id)
	if err != nil {
		return "", err
	}
	if r == nil {
		return "", fmt.Errorf("task %q not found", id)
	}
	return toJSON(r)
}

func handleCreateTeam(root string, a args) (string, error) {
	name, err := a.requireStr("team_name")
	if err != nil {
		return "", err
	}
	var members []team.MemberInput
	for _, m := range a.mapSlice("members") {
		members = append(members, team.MemberInput{
			Name: strField(m, "name"), Role: strField(m, "role"),
			SessionID: strField(m, "session_id"), TaskID: strField(m, "task_id"),
		})
	}
	r, err := team.Create(root, team.CreateInput{
		TeamName: name, Project: a.str("project"), Description: a.str("description"), Members: members,
	}, time.Now())
	if err != nil {
		return "", err
	}
	return toJSON(r)
}

func handleGetTeam(root string, a args) (string, error) {
	name, err := a.requireStr("team_name")
	if err != nil {
		return "", err
	}
	r, err := team.Load(root, name)
	if err != nil {
		return "", err
	}
	if r == nil {
		return "", fmt.Errorf("team %q not found", name)
	}
	return toJSON(r)
}

func handleListTeams(root string, _ args) (string, error) {
	list, err := team.List(root)
	if err != nil {
		return "", err
	}
	return toJSON(list)
}
