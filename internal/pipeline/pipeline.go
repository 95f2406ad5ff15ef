// Package pipeline implements the pipeline executor (C12): a static
// sequence of agent invocations run by a generated runner script, with
// per-step JSONL progress logging and a done marker.
package pipeline

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/fernglen/crewdeck/internal/launch"
	"github.com/fernglen/crewdeck/internal/statepath"
	"github.com/fernglen/crewdeck/internal/util"
	"github.com/fernglen/crewdeck/internal/validate"
)

// Status mirrors the pipeline's own coarse lifecycle.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
)

// StepSpec is one requested pipeline step.
type StepSpec struct {
	Name   string
	Prompt string
	Model  string
	Agent  string
}

// StepMeta is the meta record's per-step summary.
type StepMeta struct {
	Step  int    `json:"step"`
	Name  string `json:"name"`
	Model string `json:"model"`
}

// Meta is the pipeline meta record (spec §3).
type Meta struct {
	PipelineID  string     `json:"pipeline_id"`
	Directory   string     `json:"directory"`
	TotalSteps  int        `json:"total_steps"`
	Tasks       []StepMeta `json:"tasks"`
	Started     time.Time  `json:"started"`
	Status      Status     `json:"status"`
}

func (m *Meta) Save(root string) error {
	return util.WriteJSONAtomic(statepath.PipelineMetaFile(root, m.PipelineID), m, statepath.FileMode)
}

// LoadMeta reads a pipeline's meta record. A missing/corrupt record
// returns (nil, nil).
func LoadMeta(root, pipelineID string) (*Meta, error) {
	var m Meta
	if err := util.ReadJSON(statepath.PipelineMetaFile(root, pipelineID), &m); err != nil {
		return nil, nil
	}
	if m.PipelineID == "" {
		return nil, nil
	}
	return &m, nil
}

// LogEntry is one line of pipeline.log (spec §3).
type LogEntry struct {
	Step     int       `json:"step"`
	Name     string    `json:"name"`
	Status   string    `json:"status"`
	Started  time.Time `json:"started,omitempty"`
	Finished time.Time `json:"finished,omitempty"`
}

// Run implements run_pipeline (spec §4.12). agentBinary is the
// operator-configured binary to invoke for every step (cfg.Config's
// AgentBinary, default "claude").
func Run(root, directory string, steps []StepSpec, pipelineID, agentBinary string, now time.Time) (*Meta, error) {
	if _, err := validate.Directory(directory); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("pipeline: at least one task is required")
	}
	if pipelineID == "" {
		pipelineID = "P" + strconv.FormatInt(now.UnixMilli(), 10)
	} else if _, err := validate.ID(pipelineID); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	if _, err := os.Stat(statepath.PipelineDir(root, pipelineID)); err == nil {
		return nil, fmt.Errorf("pipeline: %q already exists", pipelineID)
	}

	dir := statepath.PipelineDir(root, pipelineID)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("pipeline: creating workspace: %w", err)
	}

	meta := &Meta{PipelineID: pipelineID, Directory: directory, TotalSteps: len(steps), Started: now, Status: StatusRunning}
	for i, s := range steps {
		name := validate.Name(s.Name)
		if strings.TrimSpace(s.Prompt) == "" {
			return nil, fmt.Errorf("pipeline: step %d prompt must not be empty", i)
		}
		if err := writeStepPrompt(root, pipelineID, i, name, s.Prompt); err != nil {
			return nil, err
		}
		meta.Tasks = append(meta.Tasks, StepMeta{Step: i, Name: name, Model: s.Model})
	}
	if err := meta.Save(root); err != nil {
		return nil, fmt.Errorf("pipeline: writing meta: %w", err)
	}

	if agentBinary == "" {
		agentBinary = "claude"
	}
	scriptPath, err := writeRunnerScript(root, pipelineID, directory, steps, agentBinary)
	if err != nil {
		return nil, err
	}

	plan, err := buildLaunchPlan(scriptPath)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	if err := launch.Exec(plan); err != nil {
		return nil, fmt.Errorf("pipeline: launch failed: %w", err)
	}
	return meta, nil
}

func writeStepPrompt(root, pipelineID string, i int, name, prompt string) error {
	ctx := priorContext(root)
	var b strings.Builder
	if ctx != "" {
		b.WriteString(ctx)
		b.WriteString("\n\n")
	}
	b.WriteString(prompt)
	path := statepath.PipelineStepPrompt(root, pipelineID, i, name)
	if err := os.WriteFile(path, []byte(b.String()), statepath.FileMode); err != nil {
		return fmt.Errorf("pipeline: writing step %d prompt: %w", i, err)
	}
	return nil
}

const priorContextBudget = 3 * 1024

func priorContext(root string) string {
	data, err := os.ReadFile(statepath.SessionCache(root) + "/coder-context.md")
	if err != nil {
		return ""
	}
	if len(data) > priorContextBudget {
		data = data[:priorContextBudget]
	}
	return string(data)
}

func buildLaunchPlan(scriptPath string) (*launch.Plan, error) {
	app := launch.DetectApp()
	var command string
	if runtime.GOOS == "windows" {
		command = scriptPath
	} else {
		command = "bash " + launch.SingleQuote(scriptPath)
	}
	return launch.Build(runtime.GOOS, app, command, launch.LayoutTab)
}

// Get implements get_pipeline (spec §4.12).
type GetResult struct {
	Meta           *Meta
	Done           bool
	CompletedSteps int
	CurrentStep    *LogEntry
	TailOutput     string
}

func Get(root, pipelineID string) (*GetResult, error) {
	meta, err := LoadMeta(root, pipelineID)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, fmt.Errorf("pipeline: %q not found", pipelineID)
	}

	_, doneErr := os.Stat(statepath.PipelineDoneFile(root, pipelineID))
	done := doneErr == nil

	entries := readLog(root, pipelineID)
	completed := map[int]bool{}
	var running *LogEntry
	for i := range entries {
		e := &entries[i]
		if e.Status == "completed" {
			completed[e.Step] = true
			if running != nil && running.Step == e.Step {
				running = nil
			}
		} else if e.Status == "running" {
			running = e
		}
	}

	result := &GetResult{Meta: meta, Done: done, CompletedSteps: len(completed)}
	target := running
	if target == nil && len(entries) > 0 {
		// most recent completed step
		for i := len(entries) - 1; i >= 0; i-- {
			if entries[i].Status == "completed" {
				target = &entries[i]
				break
			}
		}
	}
	result.CurrentStep = target
	if target != nil {
		for _, t := range meta.Tasks {
			if t.Step == target.Step {
				result.TailOutput = tailLines(statepath.PipelineStepOutput(root, pipelineID, t.Step, t.Name), 15)
			}
		}
	}
	return result, nil
}

func readLog(root, pipelineID string) []LogEntry {
	f, err := os.Open(statepath.PipelineLogFile(root, pipelineID))
	if err != nil {
		return nil
	}
	defer f.Close()
	var entries []LogEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		var e LogEntry
		if json.Unmarshal(scanner.Bytes(), &e) == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func tailLines(path string, n int) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
