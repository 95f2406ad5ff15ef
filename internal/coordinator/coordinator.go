// Package coordinator implements the request dispatcher (C17): it
// validates inputs, lazily hardens the state root, runs the garbage
// collector once per process, routes each operation to its handler, and
// renders every outcome — success or failure — as a text response.
package coordinator

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/fernglen/crewdeck/internal/cfg"
	"github.com/fernglen/crewdeck/internal/gc"
	"github.com/fernglen/crewdeck/internal/pathsec"
	"github.com/fernglen/crewdeck/internal/statepath"
)

// Content is one block of a Response (spec §6.1's {type, text} shape).
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Response is what every operation returns, success or failure alike.
type Response struct {
	Content []Content `json:"content"`
}

func textResponse(text string) *Response {
	return &Response{Content: []Content{{Type: "text", Text: text}}}
}

type handlerFunc func(root string, a args) (string, error)

var registry = map[string]handlerFunc{
	"list_sessions":    handleListSessions,
	"get_session":      handleGetSession,
	"check_inbox":      handleCheckInbox,
	"send_message":     handleSendMessage,
	"broadcast":        handleBroadcast,
	"send_directive":   handleSendDirective,
	"detect_conflicts": handleDetectConflicts,
	"spawn_terminal":   handleSpawnTerminal,
	"spawn_worker":     handleSpawnWorker,
	"get_result":       handleGetResult,
	"wake_session":     handleWakeSession,
	"kill_worker":      handleKillWorker,
	"run_pipeline":     handleRunPipeline,
	"get_pipeline":     handleGetPipeline,
	"create_task":      handleCreateTask,
	"update_task":      handleUpdateTask,
	"list_tasks":       handleListTasks,
	"get_task":         handleGetTask,
	"create_team":      handleCreateTeam,
	"get_team":         handleGetTeam,
	"list_teams":       handleListTeams,
}

// ensuredRoots and gc's ranThisBoot are the two justified package-global
// bits of in-process state spec.md §5 allows: "a set of already-created
// directories and a 'GC ran this boot' flag." gc.RunOnce owns the
// latter; this package owns the former.
var (
	ensureMu     sync.Mutex
	ensuredRoots = map[string]bool{}
)

func ensure(root string) {
	ensureMu.Lock()
	defer ensureMu.Unlock()
	if ensuredRoots[root] {
		return
	}
	for _, d := range statepath.AllDirs(root) {
		_ = pathsec.EnsureDir(d)
	}
	ensuredRoots[root] = true

	c := loadConfig(root)
	gc.RunOnce(root, c.GCTTL.Duration())
}

func loadConfig(root string) *cfg.Config {
	c, err := cfg.Load(statepath.ConfigFile(root))
	if err != nil {
		return cfg.Default()
	}
	return c
}

// Dispatch implements spec §4.17's five-step request handling. It never
// returns a Go error: every outcome, including "unknown tool" and
// "invalid arguments", is rendered into the returned Response's text.
func Dispatch(root, op string, rawArgs map[string]any) *Response {
	ensure(root)

	handler, ok := registry[op]
	if !ok {
		return textResponse(fmt.Sprintf("Unknown tool: %s", op))
	}

	text, err := handler(root, args(rawArgs))
	if err != nil {
		return textResponse(fmt.Sprintf("Invalid arguments for %s: %s", op, err))
	}
	return textResponse(text)
}

// toJSON renders v as a compact JSON text body — the content of a
// successful operation's single text block.
func toJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("rendering response: %w", err)
	}
	return string(b), nil
}
