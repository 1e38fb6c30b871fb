package supervisor

import (
	"time"

	"github.com/shardhost/botengine/internal/radar"
)

// Config is the set of knobs an operator can tune per deployment; all have
// sane single-host defaults.
type Config struct {
	RuntimeABinary string // defaults to "python3"
	RuntimeBBinary string // defaults to "node"
	WorkspaceRoot  string

	MemoryMaxMB float64
	CPUMaxPct   float64

	MaxBotsPerUser int // 0 means unlimited

	SampleInterval time.Duration // defaults to 3s

	GracefulStopWait int // seconds, defaults to 5
	RestartDelay     int // seconds, defaults to 1
}

func (c Config) withDefaults() Config {
	if c.RuntimeABinary == "" {
		c.RuntimeABinary = "python3"
	}
	if c.RuntimeBBinary == "" {
		c.RuntimeBBinary = "node"
	}
	if c.SampleInterval == 0 {
		c.SampleInterval = 3 * time.Second
	}
	if c.GracefulStopWait == 0 {
		c.GracefulStopWait = 5
	}
	if c.RestartDelay == 0 {
		c.RestartDelay = 1
	}
	return c
}

func (c Config) limits() radar.Limits {
	return radar.NewLimits(c.MemoryMaxMB, c.CPUMaxPct)
}
