package doctor

import (
	"fmt"
	"os"

	"github.com/fernglen/crewdeck/internal/statepath"
)

// GCBacklogCheck reports how many non-directory entries sit directly
// under terminals/ plus how many entries sit under results/. It does not
// look at entry ages, so the count includes live records and logs, not
// only entries past the GC TTL, and it always reports StatusOK.
type GCBacklogCheck struct{ BaseCheck }

func NewGCBacklogCheck() *GCBacklogCheck {
	return &GCBacklogCheck{BaseCheck{CheckName: "gc-backlog"}}
}

func (c *GCBacklogCheck) Run(ctx *CheckContext) *CheckResult {
	sessions, _ := os.ReadDir(statepath.Terminals(ctx.Root))
	results, _ := os.ReadDir(statepath.ResultsDir(ctx.Root))

	n := 0
	for _, e := range sessions {
		if !e.IsDir() {
			n++
		}
	}
	n += len(results)

	if n == 0 {
		return &CheckResult{Name: c.Name(), Status: StatusOK, Message: "state root is empty"}
	}
	return &CheckResult{Name: c.Name(), Status: StatusOK, Message: fmt.Sprintf("%d entries under state root", n)}
}
