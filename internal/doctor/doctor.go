// Package doctor runs a small set of environment health checks against
// a crewdeck state root: is it hardened, is the configured agent binary
// reachable, and are there stale lock files left behind by a crashed
// process. It is additive UX (spec.md says nothing about it) grounded
// on the teacher's own check-registry pattern.
package doctor

// Status is a single check's outcome.
type Status int

const (
	StatusOK Status = iota
	StatusWarning
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusWarning:
		return "warn"
	default:
		return "error"
	}
}

// CheckContext carries the inputs every check needs.
type CheckContext struct {
	Root        string
	AgentBinary string
}

// CheckResult is what a Check reports.
type CheckResult struct {
	Name    string
	Status  Status
	Message string
	Details []string
}

// Check is one environment probe.
type Check interface {
	Name() string
	Run(ctx *CheckContext) *CheckResult
}

// BaseCheck supplies the Name() boilerplate every concrete check embeds.
type BaseCheck struct {
	CheckName string
}

func (b BaseCheck) Name() string { return b.CheckName }

// Doctor runs a registered set of checks in order.
type Doctor struct {
	checks []Check
}

func NewDoctor() *Doctor { return &Doctor{} }

func (d *Doctor) Register(c Check) { d.checks = append(d.checks, c) }

// Run executes every registered check and returns their results in
// registration order.
func (d *Doctor) Run(ctx *CheckContext) []*CheckResult {
	results := make([]*CheckResult, 0, len(d.checks))
	for _, c := range d.checks {
		results = append(results, c.Run(ctx))
	}
	return results
}

// DefaultChecks returns crewdeck's built-in check set: state root
// hardening, agent binary reachability, stale lock files, and GC
// backlog size.
func DefaultChecks() []Check {
	return []Check{
		NewStateRootCheck(),
		NewAgentBinaryCheck(),
		NewStaleLocksCheck(),
		NewGCBacklogCheck(),
	}
}
