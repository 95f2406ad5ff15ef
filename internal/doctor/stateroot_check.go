package doctor

import (
	"fmt"

	"github.com/fernglen/crewdeck/internal/pathsec"
	"github.com/fernglen/crewdeck/internal/statepath"
)

// StateRootCheck verifies every state-root subdirectory exists and is
// hardened (owner-only, not a symlink) via the same pathsec.EnsureDir
// path the coordinator itself uses on every boot.
type StateRootCheck struct{ BaseCheck }

func NewStateRootCheck() *StateRootCheck {
	return &StateRootCheck{BaseCheck{CheckName: "state-root-hardened"}}
}

func (c *StateRootCheck) Run(ctx *CheckContext) *CheckResult {
	var bad []string
	for _, dir := range statepath.AllDirs(ctx.Root) {
		if err := pathsec.EnsureDir(dir); err != nil {
			bad = append(bad, fmt.Sprintf("%s: %v", dir, err))
		}
	}
	if len(bad) > 0 {
		return &CheckResult{Name: c.Name(), Status: StatusError, Message: "one or more state directories failed hardening", Details: bad}
	}
	return &CheckResult{Name: c.Name(), Status: StatusOK, Message: fmt.Sprintf("%s hardened", ctx.Root)}
}
