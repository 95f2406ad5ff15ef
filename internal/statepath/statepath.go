// Package statepath defines the on-disk layout of crewdeck's state root
// and the small set of path helpers every other package builds on.
//
// All state lives under a single owner-restricted directory, by default
// ~/.crewdeck. The layout mirrors the protocol described in the design
// doc: a terminals/ directory holding session, inbox, task, team and
// worker-result state, plus a session-cache/ directory for context
// preambles.
package statepath

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/fernglen/crewdeck/internal/util"
)

// EnvHome overrides the default state root, mainly for tests and for
// operators running more than one coordinator on the same box.
const EnvHome = "CREWDECK_HOME"

// DirMode and FileMode are the owner-only permissions every state-root
// entry is created and re-chmoded with (see pathsec.EnsureDir).
const (
	DirMode  os.FileMode = 0700
	FileMode os.FileMode = 0600
)

// Root returns the state root directory, honoring CREWDECK_HOME.
func Root() string {
	if v := os.Getenv(EnvHome); v != "" {
		return util.ExpandHome(v)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".crewdeck"
	}
	return filepath.Join(home, ".crewdeck")
}

// Terminals returns <root>/terminals.
func Terminals(root string) string { return filepath.Join(root, "terminals") }

// SessionCache returns <root>/session-cache.
func SessionCache(root string) string { return filepath.Join(root, "session-cache") }

// SessionFile returns the path to a session's record file.
func SessionFile(root, sessionID string) string {
	return filepath.Join(Terminals(root), "session-"+sessionID+".json")
}

// SessionsLog returns the append-only start/stop event log.
func SessionsLog(root string) string { return filepath.Join(Terminals(root), "sessions.jsonl") }

// ActivityLog returns the universal per-tool-call activity log.
func ActivityLog(root string) string { return filepath.Join(Terminals(root), "activity.jsonl") }

// ConflictsLog returns the conflict-detection audit log.
func ConflictsLog(root string) string { return filepath.Join(Terminals(root), "conflicts.jsonl") }

// QueueLog returns the assigned-tasks queue log.
func QueueLog(root string) string { return filepath.Join(Terminals(root), "queue.jsonl") }

// RateFile returns the sliding rate-limit window file for a recipient.
func RateFile(root, sessionID string) string {
	return filepath.Join(Terminals(root), "rate-"+sessionID+".json")
}

// InboxDir returns <root>/terminals/inbox.
func InboxDir(root string) string { return filepath.Join(Terminals(root), "inbox") }

// InboxFile returns a session's inbox JSONL file.
func InboxFile(root, sessionID string) string {
	return filepath.Join(InboxDir(root), sessionID+".jsonl")
}

// InboxDrainFile returns the rename target used during a crash-safe drain.
func InboxDrainFile(root, sessionID string, ts int64) string {
	return filepath.Join(InboxDir(root), sessionID+".drain."+strconv.FormatInt(ts, 10))
}

// ResultsDir returns <root>/terminals/results.
func ResultsDir(root string) string { return filepath.Join(Terminals(root), "results") }

// WorkerMetaFile, WorkerDoneFile, WorkerPIDFile, WorkerOutFile and
// WorkerPromptFile return the per-task worker artifact paths.
func WorkerMetaFile(root, taskID string) string {
	return filepath.Join(ResultsDir(root), taskID+".meta.json")
}
func WorkerDoneFile(root, taskID string) string {
	return filepath.Join(ResultsDir(root), taskID+".meta.json.done")
}
func WorkerPIDFile(root, taskID string) string {
	return filepath.Join(ResultsDir(root), taskID+".pid")
}
func WorkerOutFile(root, taskID string) string {
	return filepath.Join(ResultsDir(root), taskID+".txt")
}
func WorkerPromptFile(root, taskID string) string {
	return filepath.Join(ResultsDir(root), taskID+".prompt")
}
func WorkerScriptFile(root, taskID, ext string) string {
	return filepath.Join(ResultsDir(root), taskID+".worker"+ext)
}
func WorkerReportedFile(root, taskID string) string {
	return filepath.Join(ResultsDir(root), taskID+".reported")
}

// PipelineDir returns the workspace directory for a pipeline.
func PipelineDir(root, pipelineID string) string {
	return filepath.Join(ResultsDir(root), pipelineID)
}
func PipelineMetaFile(root, pipelineID string) string {
	return filepath.Join(PipelineDir(root, pipelineID), "pipeline.meta.json")
}
func PipelineDoneFile(root, pipelineID string) string {
	return filepath.Join(PipelineDir(root, pipelineID), "pipeline.done")
}
func PipelineLogFile(root, pipelineID string) string {
	return filepath.Join(PipelineDir(root, pipelineID), "pipeline.log")
}
func PipelineStepPrompt(root, pipelineID string, i int, name string) string {
	return filepath.Join(PipelineDir(root, pipelineID), strconv.Itoa(i)+"-"+name+".prompt")
}
func PipelineStepOutput(root, pipelineID string, i int, name string) string {
	return filepath.Join(PipelineDir(root, pipelineID), strconv.Itoa(i)+"-"+name+".txt")
}
func PipelineRunnerScript(root, pipelineID, ext string) string {
	return filepath.Join(PipelineDir(root, pipelineID), "run"+ext)
}

// TasksDir and TaskFile locate task-board records.
func TasksDir(root string) string { return filepath.Join(Terminals(root), "tasks") }
func TaskFile(root, taskID string) string {
	return filepath.Join(TasksDir(root), taskID+".json")
}

// TeamsDir and TeamFile locate team records.
func TeamsDir(root string) string { return filepath.Join(Terminals(root), "teams") }
func TeamFile(root, name string) string {
	return filepath.Join(TeamsDir(root), name+".json")
}

// ConfigFile returns <root>/config.toml.
func ConfigFile(root string) string { return filepath.Join(root, "config.toml") }

// GCMarkerFile returns the path of a "GC ran" marker file. No package
// writes it; the once-per-boot flag lives in gc's process memory.
func GCMarkerFile(root string) string { return filepath.Join(Terminals(root), ".gc-last") }

// AllDirs lists every directory that must exist (and be hardened) before
// the coordinator or a hook touches the state root.
func AllDirs(root string) []string {
	return []string{
		root,
		Terminals(root),
		InboxDir(root),
		ResultsDir(root),
		TasksDir(root),
		TeamsDir(root),
		SessionCache(root),
	}
}
