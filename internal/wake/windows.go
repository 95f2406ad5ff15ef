package wake

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/fernglen/crewdeck/internal/session"
)

const windowsAttentionTimeout = 10 * time.Second

// attentionWindows generates a one-shot PowerShell script that
// AppActivates the window whose title contains "agent-<sid>" and sends
// an Enter keystroke, runs it, then deletes it (spec §4.15 step 4,
// Windows row).
func attentionWindows(r *session.Record) bool {
	if r.Session == "" {
		return false
	}
	title := "agent-" + r.Session
	script := fmt.Sprintf(`$ws = New-Object -ComObject WScript.Shell
if ($ws.AppActivate(%s)) {
  Start-Sleep -Milliseconds 200
  $ws.SendKeys("{ENTER}")
  exit 0
}
exit 1
`, psQuote(title))

	return runPowerShellScript(script)
}

func runPowerShellScript(script string) bool {
	f, err := os.CreateTemp("", "crewdeck-wake-*.ps1")
	if err != nil {
		return false
	}
	path := f.Name()
	defer os.Remove(path)
	if _, err := f.WriteString(script); err != nil {
		f.Close()
		return false
	}
	f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), windowsAttentionTimeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, "powershell", "-NoProfile", "-ExecutionPolicy", "Bypass", "-File", path)
	return cmd.Run() == nil
}

// psQuote produces a PowerShell single-quoted string literal, escaping
// the one special case: an embedded single quote doubles itself.
func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
