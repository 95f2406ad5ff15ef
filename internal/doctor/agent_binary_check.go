package doctor

import (
	"fmt"
	"os/exec"
)

// AgentBinaryCheck verifies the operator-configured agent binary (cfg's
// AgentBinary, default "claude") is reachable on PATH — workers and
// pipelines fail at spawn time otherwise.
type AgentBinaryCheck struct{ BaseCheck }

func NewAgentBinaryCheck() *AgentBinaryCheck {
	return &AgentBinaryCheck{BaseCheck{CheckName: "agent-binary"}}
}

func (c *AgentBinaryCheck) Run(ctx *CheckContext) *CheckResult {
	bin := ctx.AgentBinary
	if bin == "" {
		bin = "claude"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return &CheckResult{
			Name: c.Name(), Status: StatusError,
			Message: fmt.Sprintf("%q not found on PATH", bin),
			Details: []string{"spawn_worker and run_pipeline will fail until this is installed or config.toml's agent_binary is corrected"},
		}
	}
	return &CheckResult{Name: c.Name(), Status: StatusOK, Message: fmt.Sprintf("%s (%s)", bin, path)}
}
