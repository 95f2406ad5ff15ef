package worker

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/fernglen/crewdeck/internal/launch"
	"github.com/fernglen/crewdeck/internal/proc"
	"github.com/fernglen/crewdeck/internal/statepath"
	"github.com/fernglen/crewdeck/internal/validate"
)

// maxPromptPreview bounds how much of the prompt is retained verbatim in
// the meta record (spec §3: "prompt (first 500 chars only)").
const maxPromptPreview = 500

// priorContextBudget bounds the prior-context preamble prepended to a
// worker's prompt file (spec §4.11 step 5).
const priorContextBudget = 3 * 1024

// Spec is the validated input to Spawn.
type Spec struct {
	Directory       string
	Prompt          string
	Model           string
	Agent           string
	TaskID          string
	NotifySessionID string
	Files           []string
	Layout          launch.Layout
	Mode            Mode
	Isolate         bool
	AgentBinary     string
}

// Spawn implements spawn_worker (spec §4.11). On any failure after the
// meta file has been written, the meta is updated to status=failed with
// the error message and Spawn returns that meta with a nil error rather
// than propagating the error as a server fault; the cause is available
// only as the meta's Error field.
func Spawn(root string, s Spec, now time.Time) (*Meta, error) {
	if _, err := validate.Directory(s.Directory); err != nil {
		return nil, fmt.Errorf("worker: %w", err)
	}
	if strings.TrimSpace(s.Prompt) == "" {
		return nil, fmt.Errorf("worker: prompt must not be empty")
	}
	if _, err := os.Stat(s.Directory); err != nil {
		return nil, fmt.Errorf("worker: directory %q does not exist", s.Directory)
	}

	taskID := s.TaskID
	if taskID == "" {
		taskID = "W" + strconv.FormatInt(now.UnixMilli(), 10)
	} else if _, err := validate.ID(taskID); err != nil {
		return nil, fmt.Errorf("worker: %w", err)
	}

	if _, err := os.Stat(statepath.WorkerMetaFile(root, taskID)); err == nil {
		return nil, fmt.Errorf("worker: task %q already exists", taskID)
	}
	if _, err := os.Stat(statepath.WorkerOutFile(root, taskID)); err == nil {
		return nil, fmt.Errorf("worker: task %q already exists", taskID)
	}

	if conflict := findRunningConflict(root, s.Directory, s.Files); conflict != "" {
		return nil, fmt.Errorf("worker: conflicts with running worker %s", conflict)
	}

	originalDir := s.Directory
	workDir := s.Directory
	var worktreeBranch string
	if s.Isolate {
		branch := "worker/" + taskID
		wtDir := filepath.Join(s.Directory, ".claude", "worktrees", taskID)
		if err := createWorktree(s.Directory, wtDir, branch); err != nil {
			return nil, fmt.Errorf("worker: worktree isolation failed: %w", err)
		}
		workDir = wtDir
		worktreeBranch = branch
	}

	agentBinary := s.AgentBinary
	if agentBinary == "" {
		agentBinary = "claude"
	}

	m := &Meta{
		TaskID:            taskID,
		Directory:         workDir,
		OriginalDirectory: originalDir,
		Prompt:            truncate(s.Prompt, maxPromptPreview),
		Model:             s.Model,
		Agent:             s.Agent,
		NotifySessionID:   s.NotifySessionID,
		Isolated:          s.Isolate,
		WorktreeBranch:    worktreeBranch,
		Mode:              s.Mode,
		Files:             s.Files,
		Spawned:           now,
		Status:            StatusRunning,
	}
	if err := m.Save(root); err != nil {
		return nil, fmt.Errorf("worker: writing meta: %w", err)
	}

	promptPath := statepath.WorkerPromptFile(root, taskID)
	if err := writePromptFile(root, promptPath, s.Prompt, s.Mode); err != nil {
		failMeta(root, m, err)
		return m, nil
	}

	scriptPath, err := writeWrapperScript(root, taskID, workDir, promptPath, agentBinary, s.Model, s.Agent)
	if err != nil {
		failMeta(root, m, err)
		return m, nil
	}

	plan, err := buildLaunchPlan(scriptPath)
	if err != nil {
		failMeta(root, m, err)
		return m, nil
	}
	if err := launch.Exec(plan); err != nil {
		failMeta(root, m, err)
		return m, nil
	}

	return m, nil
}

func failMeta(root string, m *Meta, cause error) {
	m.Status = StatusFailed
	m.Error = cause.Error()
	_ = m.Save(root)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// findRunningConflict scans results/*.meta.json for a worker without a
// .meta.json.done whose live PID's declared Files intersect files. Both
// sides are normalized with validate.NormalizeFilePath against their own
// directory first, mirroring internal/conflict's session-overlap check
// (C10), so differently-cased or relative/absolute variants of the same
// path still collide.
func findRunningConflict(root, cwd string, files []string) string {
	dir := statepath.ResultsDir(root)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	want := map[string]bool{}
	for _, f := range files {
		if norm := validate.NormalizeFilePath(f, cwd); norm != "" {
			want[norm] = true
		}
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".meta.json") {
			continue
		}
		taskID := strings.TrimSuffix(name, ".meta.json")
		if _, err := os.Stat(statepath.WorkerDoneFile(root, taskID)); err == nil {
			continue // already terminal
		}
		m, err := LoadMeta(root, taskID)
		if err != nil || m == nil {
			continue
		}
		pidData, err := os.ReadFile(statepath.WorkerPIDFile(root, taskID))
		if err != nil {
			continue
		}
		if !proc.IsAlive(strings.TrimSpace(string(pidData))) {
			continue
		}
		for _, f := range m.Files {
			norm := validate.NormalizeFilePath(f, m.Directory)
			if norm != "" && want[norm] {
				return taskID
			}
		}
	}
	return ""
}

func buildLaunchPlan(scriptPath string) (*launch.Plan, error) {
	app := launch.DetectApp()
	var command string
	if runtime.GOOS == "windows" {
		command = "powershell -NoProfile -ExecutionPolicy Bypass -File " + scriptPath
	} else {
		command = "bash " + launch.SingleQuote(scriptPath)
	}
	return launch.Build(runtime.GOOS, app, command, launch.LayoutTab)
}
