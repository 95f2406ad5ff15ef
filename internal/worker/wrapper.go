package worker

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/fernglen/crewdeck/internal/launch"
	"github.com/fernglen/crewdeck/internal/statepath"
)

// nestingEnvVar is unset before execing a worker so it doesn't believe
// it is running nested inside the host agent (spec §6.4).
const nestingEnvVar = "CLAUDECODE"

// writeWrapperScript synthesizes and writes the per-task wrapper script
// (spec §4.11 step 6), returning its path. On POSIX a shell script is
// generated; on Windows, PowerShell.
func writeWrapperScript(root, taskID, workDir, promptPath, agentBinary, model, agent string) (string, error) {
	if runtime.GOOS == "windows" {
		return writePowerShellWrapper(root, taskID, workDir, promptPath, agentBinary, model, agent)
	}
	return writePOSIXWrapper(root, taskID, workDir, promptPath, agentBinary, model, agent)
}

func writePOSIXWrapper(root, taskID, workDir, promptPath, agentBinary, model, agent string) (string, error) {
	out := statepath.WorkerOutFile(root, taskID)
	pidFile := statepath.WorkerPIDFile(root, taskID)
	doneFile := statepath.WorkerDoneFile(root, taskID)
	scriptPath := statepath.WorkerScriptFile(root, taskID, ".sh")

	agentCmd := agentBinary
	if model != "" {
		agentCmd += " --model " + launch.SingleQuote(model)
	}
	if agent != "" {
		agentCmd += " --agent " + launch.SingleQuote(agent)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "#!/bin/sh\n")
	fmt.Fprintf(&b, "cd %s || exit 1\n", launch.SingleQuote(workDir))
	fmt.Fprintf(&b, "unset %s\n", nestingEnvVar)
	fmt.Fprintf(&b, "echo '=== worker %s starting ===' > %s\n", taskID, launch.SingleQuote(out))
	fmt.Fprintf(&b, "echo $$ > %s\n", launch.SingleQuote(pidFile))
	fmt.Fprintf(&b, "%s < %s >> %s 2>&1\n", agentCmd, launch.SingleQuote(promptPath), launch.SingleQuote(out))
	fmt.Fprintf(&b, "STATUS=$?\n")
	fmt.Fprintf(&b, "if [ \"$STATUS\" -eq 0 ]; then DONE_STATUS=completed; else DONE_STATUS=failed; fi\n")
	fmt.Fprintf(&b, "printf '{\"status\":\"%%s\",\"finished\":\"%%s\"}' \"$DONE_STATUS\" \"$(date -u +%%Y-%%m-%%dT%%H:%%M:%%SZ)\" > %s\n", launch.SingleQuote(doneFile))
	fmt.Fprintf(&b, "rm -f %s\n", launch.SingleQuote(pidFile))

	if err := os.WriteFile(scriptPath, []byte(b.String()), 0700); err != nil {
		return "", fmt.Errorf("writing wrapper script: %w", err)
	}
	return scriptPath, nil
}

func writePowerShellWrapper(root, taskID, workDir, promptPath, agentBinary, model, agent string) (string, error) {
	out := statepath.WorkerOutFile(root, taskID)
	pidFile := statepath.WorkerPIDFile(root, taskID)
	doneFile := statepath.WorkerDoneFile(root, taskID)
	scriptPath := statepath.WorkerScriptFile(root, taskID, ".ps1")

	var extra strings.Builder
	if model != "" {
		fmt.Fprintf(&extra, " --model %s", launch.BatQuote(model))
	}
	if agent != "" {
		fmt.Fprintf(&extra, " --agent %s", launch.BatQuote(agent))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Set-Location -LiteralPath '%s'\n", workDir)
	fmt.Fprintf(&b, "Remove-Item Env:%s -ErrorAction SilentlyContinue\n", nestingEnvVar)
	fmt.Fprintf(&b, "\"=== worker %s starting ===\" | Out-File -FilePath '%s' -Encoding utf8\n", taskID, out)
	fmt.Fprintf(&b, "$PID | Out-File -FilePath '%s' -Encoding ascii\n", pidFile)
	fmt.Fprintf(&b, "Get-Content '%s' | & %s%s 2>&1 | Out-File -FilePath '%s' -Append -Encoding utf8\n", promptPath, agentBinary, extra.String(), out)
	fmt.Fprintf(&b, "$doneStatus = if ($LASTEXITCODE -eq 0) { 'completed' } else { 'failed' }\n")
	fmt.Fprintf(&b, "'{\"status\":\"' + $doneStatus + '\",\"finished\":\"' + (Get-Date -AsUTC -Format o) + '\"}' | Out-File -FilePath '%s' -Encoding utf8\n", doneFile)
	fmt.Fprintf(&b, "Remove-Item '%s' -ErrorAction SilentlyContinue\n", pidFile)

	if err := os.WriteFile(scriptPath, []byte(b.String()), 0600); err != nil {
		return "", fmt.Errorf("writing wrapper script: %w", err)
	}
	return scriptPath, nil
}

const worktreeTimeout = 10 * time.Second

// createWorktree creates a git worktree rooted at wtDir on a new branch,
// off the repository at repoDir. A failure here fails the whole spawn,
// per spec §4.11 step 3 ("never silently falls back").
func createWorktree(repoDir, wtDir, branch string) error {
	ctx, cancel := context.WithTimeout(context.Background(), worktreeTimeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, "git", "-C", repoDir, "worktree", "add", "-b", branch, wtDir)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git worktree add: %w (%s)", err, strings.TrimSpace(string(out)))
	}
	return nil
}
