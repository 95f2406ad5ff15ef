package wake

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/fernglen/crewdeck/internal/session"
)

const darwinAttentionTimeout = 5 * time.Second

// attentionDarwin runs an AppleScript that locates the session's iTerm2
// tab by TTY (preferred) or tab name, or a Terminal.app tab by name, and
// issues only an Enter keystroke (spec §4.15 step 4, macOS row).
func attentionDarwin(r *session.Record) bool {
	script := darwinAttentionScript(r)
	if script == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), darwinAttentionTimeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, "osascript", "-e", script)
	return cmd.Run() == nil
}

func darwinAttentionScript(r *session.Record) string {
	if tty, ok := safeTTY(r); ok {
		return fmt.Sprintf(`tell application "iTerm2"
  repeat with w in windows
    repeat with t in tabs of w
      repeat with s in sessions of t
        if (tty of s) is %s then
          tell application "System Events" to tell process "iTerm2"
            set frontmost to true
            key code 36
          end tell
          return
        end if
      end repeat
    end repeat
  end repeat
end tell`, appleQuote(tty))
	}
	if r.Session == "" {
		return ""
	}
	tabName := "agent-" + r.Session
	return fmt.Sprintf(`tell application "Terminal"
  repeat with w in windows
    repeat with t in tabs of w
      if (name of t contains %s) then
        tell application "System Events" to tell process "Terminal"
          set frontmost to true
          key code 36
        end tell
        return
      end if
    end repeat
  end repeat
end tell`, appleQuote(tabName))
}

// appleQuote produces an AppleScript string literal, escaping embedded
// quotes and backslashes (AppleScript's own cousin of POSIX single-quote
// escaping, since it has no equivalent shorthand).
func appleQuote(s string) string {
	out := make([]byte, 0, len(s)+2)
	out = append(out, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' || c == '\\' {
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	out = append(out, '"')
	return string(out)
}
