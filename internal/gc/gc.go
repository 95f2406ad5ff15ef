// Package gc implements the garbage collector (C16): a once-per-boot
// sweep that removes session records, worker artifact sets, and
// pipeline directories once they are past a TTL.
package gc

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fernglen/crewdeck/internal/session"
	"github.com/fernglen/crewdeck/internal/statepath"
)

// DefaultTTL matches spec §4.16.
const DefaultTTL = 24 * time.Hour

// Counts reports how many of each kind Run removed.
type Counts struct {
	Sessions  int
	Workers   int
	Pipelines int
}

// ranThisBoot gates Run to once per process per spec §4.17 step 2 ("running
// §4.16 once on first invocation"). Process-global by design: GC is a
// boot-scoped concern, not a per-request one, and every coordinator
// instance runs in its own process.
var (
	ranThisBoot   bool
	ranThisBootMu sync.Mutex
)

// RunOnce runs Run at most once per process lifetime; subsequent calls
// are no-ops returning a zero Counts.
func RunOnce(root string, ttl time.Duration) Counts {
	ranThisBootMu.Lock()
	defer ranThisBootMu.Unlock()
	if ranThisBoot {
		return Counts{}
	}
	ranThisBoot = true
	return Run(root, ttl, time.Now())
}

// Run performs the sweep unconditionally; exported separately from
// RunOnce so tests can invoke it deterministically.
func Run(root string, ttl time.Duration, now time.Time) Counts {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	var c Counts
	c.Sessions = sweepSessions(root, ttl, now)
	c.Workers, c.Pipelines = sweepResults(root, ttl, now)
	return c
}

func sweepSessions(root string, ttl time.Duration, now time.Time) int {
	recs, err := session.List(root)
	if err != nil {
		return 0
	}
	removed := 0
	for _, r := range recs {
		if r.Status != session.StatusStale && r.Status != session.StatusClosed {
			continue
		}
		path := r.Path(root)
		fi, err := os.Stat(path)
		if err != nil {
			continue
		}
		if now.Sub(fi.ModTime()) < ttl {
			continue
		}
		if os.Remove(path) == nil {
			removed++
		}
	}
	return removed
}

// sweepResults walks <root>/terminals/results, removing finished worker
// artifact sets and finished pipeline directories past ttl. Worker files
// are flat entries directly under results/; pipelines are subdirectories.
func sweepResults(root string, ttl time.Duration, now time.Time) (workers, pipelines int) {
	dir := statepath.ResultsDir(root)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0
	}

	seenTaskIDs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			if sweepPipelineDir(filepath.Join(dir, name), ttl, now) {
				pipelines++
			}
			continue
		}
		const doneSuffix = ".meta.json.done"
		if !strings.HasSuffix(name, doneSuffix) {
			continue
		}
		taskID := strings.TrimSuffix(name, doneSuffix)
		if seenTaskIDs[taskID] {
			continue
		}
		seenTaskIDs[taskID] = true

		fi, err := os.Stat(filepath.Join(dir, name))
		if err != nil || now.Sub(fi.ModTime()) < ttl {
			continue
		}
		if removeWorkerArtifacts(dir, taskID) {
			workers++
		}
	}
	return workers, pipelines
}

func removeWorkerArtifacts(dir, taskID string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	prefix := taskID + "."
	removedAny := false
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		if os.Remove(filepath.Join(dir, e.Name())) == nil {
			removedAny = true
		}
	}
	return removedAny
}

func sweepPipelineDir(dir string, ttl time.Duration, now time.Time) bool {
	donePath := filepath.Join(dir, "pipeline.done")
	fi, err := os.Stat(donePath)
	if err != nil {
		return false
	}
	if now.Sub(fi.ModTime()) < ttl {
		return false
	}
	return os.RemoveAll(dir) == nil
}
