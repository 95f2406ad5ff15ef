package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fernglen/crewdeck/internal/coordinator"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:     "serve",
	GroupID: GroupCore,
	Short:   "Run the coordinator loop over stdin/stdout",
	Long: `serve reads one JSON request frame per line from stdin and writes one
JSON response frame per line to stdout:

  {"op": "list_sessions", "args": {"include_closed": false}}
  {"content":[{"type":"text","text":"[...]"}]}

There is no state held across lines beyond the coordinator's own
lazily-ensured directories and its once-per-boot garbage collection
pass (spec.md §5) — serve holds no session data in memory.`,
	RunE: runServe,
}

type requestFrame struct {
	Op   string         `json:"op"`
	Args map[string]any `json:"args"`
}

func runServe(cmd *cobra.Command, args []string) error {
	root := resolveRoot()
	in := bufio.NewScanner(os.Stdin)
	in.Buffer(make([]byte, 0, 64*1024), 1<<20)
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	for in.Scan() {
		line := in.Bytes()
		if len(line) == 0 {
			continue
		}
		var req requestFrame
		if err := json.Unmarshal(line, &req); err != nil {
			writeFrame(out, coordinatorErrorFrame(fmt.Sprintf("malformed request: %s", err)))
			continue
		}
		resp := coordinator.Dispatch(root, req.Op, req.Args)
		writeFrame(out, resp)
	}
	if err := in.Err(); err != nil && err != io.EOF {
		return fmt.Errorf("serve: reading stdin: %w", err)
	}
	return nil
}

func coordinatorErrorFrame(text string) *coordinator.Response {
	return &coordinator.Response{Content: []coordinator.Content{{Type: "text", Text: text}}}
}

func writeFrame(out *bufio.Writer, resp *coordinator.Response) {
	b, err := json.Marshal(resp)
	if err != nil {
		return
	}
	out.Write(b)
	out.WriteByte('\n')
	out.Flush()
}
