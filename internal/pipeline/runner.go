package pipeline

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/fernglen/crewdeck/internal/launch"
	"github.com/fernglen/crewdeck/internal/statepath"
	"github.com/fernglen/crewdeck/internal/validate"
)

const nestingEnvVar = "CLAUDECODE"

// writeRunnerScript synthesizes the sequential runner script for a
// pipeline (spec §4.12 step 3): POSIX shell with `set -e`, or an
// analogous Windows .bat using batQuote escaping.
func writeRunnerScript(root, pipelineID, directory string, steps []StepSpec, agentBinary string) (string, error) {
	if runtime.GOOS == "windows" {
		return writeBatRunner(root, pipelineID, directory, steps, agentBinary)
	}
	return writePOSIXRunner(root, pipelineID, directory, steps, agentBinary)
}

func writePOSIXRunner(root, pipelineID, directory string, steps []StepSpec, agentBinary string) (string, error) {
	logFile := statepath.PipelineLogFile(root, pipelineID)
	doneFile := statepath.PipelineDoneFile(root, pipelineID)

	var b strings.Builder
	fmt.Fprintf(&b, "#!/bin/sh\nset -e\n")
	fmt.Fprintf(&b, "cd %s\n", launch.SingleQuote(directory))
	fmt.Fprintf(&b, "unset %s\n", nestingEnvVar)

	for i, s := range steps {
		name := validate.Name(s.Name)
		promptPath := statepath.PipelineStepPrompt(root, pipelineID, i, name)
		outPath := statepath.PipelineStepOutput(root, pipelineID, i, name)

		fmt.Fprintf(&b, "echo '=== Step %d: %s ===' >> %s\n", i, name, launch.SingleQuote(logFile))
		fmt.Fprintf(&b, "printf '{\"step\":%d,\"name\":\"%s\",\"status\":\"running\",\"started\":\"%%s\"}\\n' \"$(date -u +%%Y-%%m-%%dT%%H:%%M:%%SZ)\" >> %s\n",
			i, name, launch.SingleQuote(logFile))
		fmt.Fprintf(&b, "%s < %s > %s 2>&1\n", agentBinary, launch.SingleQuote(promptPath), launch.SingleQuote(outPath))
		fmt.Fprintf(&b, "printf '{\"step\":%d,\"name\":\"%s\",\"status\":\"completed\",\"finished\":\"%%s\"}\\n' \"$(date -u +%%Y-%%m-%%dT%%H:%%M:%%SZ)\" >> %s\n",
			i, name, launch.SingleQuote(logFile))
	}

	fmt.Fprintf(&b, "printf '{\"status\":\"completed\",\"finished\":\"%%s\"}' \"$(date -u +%%Y-%%m-%%dT%%H:%%M:%%SZ)\" > %s\n", launch.SingleQuote(doneFile))

	scriptPath := statepath.PipelineRunnerScript(root, pipelineID, ".sh")
	if err := os.WriteFile(scriptPath, []byte(b.String()), 0700); err != nil {
		return "", fmt.Errorf("pipeline: writing runner script: %w", err)
	}
	return scriptPath, nil
}

func writeBatRunner(root, pipelineID, directory string, steps []StepSpec, agentBinary string) (string, error) {
	logFile := statepath.PipelineLogFile(root, pipelineID)
	doneFile := statepath.PipelineDoneFile(root, pipelineID)

	var b strings.Builder
	fmt.Fprintf(&b, "@echo off\r\n")
	fmt.Fprintf(&b, "cd /d \"%s\"\r\n", directory)
	fmt.Fprintf(&b, "set %s=\r\n", nestingEnvVar)

	for i, s := range steps {
		name := validate.Name(s.Name)
		promptPath := statepath.PipelineStepPrompt(root, pipelineID, i, name)
		outPath := statepath.PipelineStepOutput(root, pipelineID, i, name)

		fmt.Fprintf(&b, "echo === Step %d: %s === >> \"%s\"\r\n", i, launch.BatQuote(name), logFile)
		fmt.Fprintf(&b, "echo {\"step\":%d,\"name\":\"%s\",\"status\":\"running\"} >> \"%s\"\r\n", i, launch.BatQuote(name), logFile)
		fmt.Fprintf(&b, "%s < \"%s\" > \"%s\" 2>&1\r\n", agentBinary, promptPath, outPath)
		fmt.Fprintf(&b, "if errorlevel 1 exit /b 1\r\n")
		fmt.Fprintf(&b, "echo {\"step\":%d,\"name\":\"%s\",\"status\":\"completed\"} >> \"%s\"\r\n", i, launch.BatQuote(name), logFile)
	}

	fmt.Fprintf(&b, "echo {\"status\":\"completed\"} > \"%s\"\r\n", doneFile)

	scriptPath := statepath.PipelineRunnerScript(root, pipelineID, ".bat")
	if err := os.WriteFile(scriptPath, []byte(b.String()), 0600); err != nil {
		return "", fmt.Errorf("pipeline: writing runner script: %w", err)
	}
	return scriptPath, nil
}
