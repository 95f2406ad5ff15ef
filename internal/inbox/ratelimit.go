package inbox

import (
	"fmt"
	"time"

	"github.com/fernglen/crewdeck/internal/lock"
	"github.com/fernglen/crewdeck/internal/statepath"
	"github.com/fernglen/crewdeck/internal/util"
)

// rateWindow is the on-disk sliding window of send timestamps for one
// recipient (spec §4.9.1).
type rateWindow struct {
	Timestamps []time.Time `json:"timestamps"`
}

const rateWindowSpan = 60 * time.Second

// CheckRateLimit is the exported form used by the wake service, which
// shares the same per-recipient window as message sends.
func CheckRateLimit(root, to string, cap int) (bool, error) {
	return checkRateLimit(root, to, cap)
}

// checkRateLimit prunes timestamps older than 60s from <to>'s rate
// window under a lock; if the remainder is already at cap, the send is
// rejected without recording anything. Otherwise the current timestamp
// is pushed and the file rewritten.
func checkRateLimit(root, to string, cap int) (bool, error) {
	path := statepath.RateFile(root, to)
	lockPath := path + ".lock"

	var allowed bool
	err := lock.WithLock(lockPath, lock.RateLimitTimeout, lock.RateLimitStaleTTL, func() error {
		var w rateWindow
		_ = util.ReadJSON(path, &w)

		now := time.Now()
		cutoff := now.Add(-rateWindowSpan)
		pruned := w.Timestamps[:0]
		for _, t := range w.Timestamps {
			if t.After(cutoff) {
				pruned = append(pruned, t)
			}
		}
		w.Timestamps = pruned

		if len(w.Timestamps) >= cap {
			allowed = false
			return nil
		}
		w.Timestamps = append(w.Timestamps, now)
		allowed = true
		return util.WriteJSONAtomic(path, &w, statepath.FileMode)
	})
	if err != nil {
		return false, fmt.Errorf("rate limit lock: %w", err)
	}
	return allowed, nil
}
