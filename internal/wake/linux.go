package wake

import (
	"os"

	"github.com/fernglen/crewdeck/internal/session"
)

// attentionLinux attempts a single append to the session's TTY device
// (spec §4.15 step 4, Linux row). A successful write is the whole of
// the signal — no message content crosses into the terminal.
func attentionLinux(r *session.Record) bool {
	path, ok := safeTTY(r)
	if !ok {
		return false
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return false
	}
	defer f.Close()
	_, err = f.Write([]byte("\n"))
	return err == nil
}
