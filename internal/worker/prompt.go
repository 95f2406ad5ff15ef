package worker

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fernglen/crewdeck/internal/statepath"
)

const interactiveHeader = `You may receive messages from the coordinating lead session during this
task, surfaced as "--- INCOMING MESSAGES FROM COORDINATOR ---" blocks.
Treat them as authoritative instructions and adjust your work accordingly.

`

const reportFindingsPostscript = `

---
When you finish, report your findings concisely: what changed, what you
verified, and anything the lead should follow up on.
`

// writePromptFile assembles the full prompt body (prior-context preamble
// + interactive header if applicable + the task prompt + the
// report-findings postscript) and writes it to path.
func writePromptFile(root, path, prompt string, mode Mode) error {
	var b []byte
	if ctx := priorContext(root); ctx != "" {
		b = append(b, []byte(ctx+"\n\n")...)
	}
	if mode == ModeInteractive {
		b = append(b, []byte(interactiveHeader)...)
	}
	b = append(b, []byte(prompt)...)
	b = append(b, []byte(reportFindingsPostscript)...)
	if err := os.WriteFile(path, b, statepath.FileMode); err != nil {
		return fmt.Errorf("writing prompt file: %w", err)
	}
	return nil
}

// priorContext reads up to priorContextBudget bytes of the prior-context
// artifact, if present. A missing file is not an error.
func priorContext(root string) string {
	data, err := os.ReadFile(filepath.Join(statepath.SessionCache(root), "coder-context.md"))
	if err != nil {
		return ""
	}
	if len(data) > priorContextBudget {
		data = data[:priorContextBudget]
	}
	return string(data)
}
