// Package cfg loads crewdeck's operator-tunable settings from
// <state_root>/config.toml. The file is optional: every field has a
// built-in default, so a coordinator with no config file behaves
// identically to one with an empty [crewdeck] table.
package cfg

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds the operator-tunable settings read from config.toml.
// Only AgentBinary and GCTTL are read by other packages. RateLimitPerMin,
// LockTimeout, LockStaleTTL, HeartbeatIdleSec and HeartbeatStaleSec are
// parsed and defaulted but have no effect: the inbox rate cap, lock
// timeouts and heartbeat thresholds come from package constants.
type Config struct {
	AgentBinary      string        `toml:"agent_binary"`
	RateLimitPerMin  int           `toml:"rate_limit_per_min"`
	GCTTL            duration      `toml:"gc_ttl"`
	LockTimeout      duration      `toml:"lock_timeout"`
	LockStaleTTL     duration      `toml:"lock_stale_ttl"`
	HeartbeatIdleSec int           `toml:"heartbeat_idle_seconds"`
	HeartbeatStaleSec int          `toml:"heartbeat_stale_seconds"`
}

// duration wraps time.Duration so the TOML decoder accepts the usual
// Go duration strings ("24h", "5m") instead of raw nanosecond integers.
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("cfg: invalid duration %q: %w", text, err)
	}
	*d = duration(parsed)
	return nil
}

func (d duration) Duration() time.Duration { return time.Duration(d) }

// Default returns the built-in configuration used when no config.toml
// is present, or a value is left unset in one that is.
func Default() *Config {
	return &Config{
		AgentBinary:       "claude",
		RateLimitPerMin:   120,
		GCTTL:             duration(24 * time.Hour),
		LockTimeout:       duration(5 * time.Second),
		LockStaleTTL:      duration(5 * time.Minute),
		HeartbeatIdleSec:  180,
		HeartbeatStaleSec: 600,
	}
}

// Load reads path, merging any set fields over Default(). A missing
// file is not an error — it yields the defaults unchanged, since
// crewdeck is meant to run with zero configuration out of the box.
func Load(path string) (*Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("cfg: reading %s: %w", path, err)
	}

	var raw struct {
		AgentBinary       *string  `toml:"agent_binary"`
		RateLimitPerMin   *int     `toml:"rate_limit_per_min"`
		GCTTL             *duration `toml:"gc_ttl"`
		LockTimeout       *duration `toml:"lock_timeout"`
		LockStaleTTL      *duration `toml:"lock_stale_ttl"`
		HeartbeatIdleSec  *int     `toml:"heartbeat_idle_seconds"`
		HeartbeatStaleSec *int     `toml:"heartbeat_stale_seconds"`
	}
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, fmt.Errorf("cfg: parsing %s: %w", path, err)
	}

	if raw.AgentBinary != nil {
		c.AgentBinary = *raw.AgentBinary
	}
	if raw.RateLimitPerMin != nil {
		c.RateLimitPerMin = *raw.RateLimitPerMin
	}
	if raw.GCTTL != nil {
		c.GCTTL = *raw.GCTTL
	}
	if raw.LockTimeout != nil {
		c.LockTimeout = *raw.LockTimeout
	}
	if raw.LockStaleTTL != nil {
		c.LockStaleTTL = *raw.LockStaleTTL
	}
	if raw.HeartbeatIdleSec != nil {
		c.HeartbeatIdleSec = *raw.HeartbeatIdleSec
	}
	if raw.HeartbeatStaleSec != nil {
		c.HeartbeatStaleSec = *raw.HeartbeatStaleSec
	}
	return c, nil
}
