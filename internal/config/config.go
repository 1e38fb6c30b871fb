// Package config defines the engine's tunable knobs and wires them to
// both command-line flags and environment variables via urfave/cli.
package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/shardhost/botengine/internal/supervisor"
)

const (
	DefaultMemoryMaxMB    = 128
	DefaultCPUMaxPct      = 50
	DefaultSampleInterval = 3 * time.Second
	DefaultWorkspaceRoot  = "./data/workspaces"
	DefaultRuntimeABinary = "python3"
	DefaultRuntimeBBinary = "node"
	DefaultGracefulStop   = 5 * time.Second
	DefaultRestartDelay   = 1 * time.Second
	DefaultMaxBotsPerUser = 0 // 0 means the collaborator enforces no cap itself
	DefaultStoreDriver    = "sqlite"
	DefaultListenAddr     = ":8080"
)

// Config is the complete set of operator-tunable settings for the engine
// process. Every field has a single-host default suitable for a demo or
// small deployment.
type Config struct {
	MemoryMaxMB float64
	CPUMaxPct   float64

	MaxBotsPerUser int

	WorkspaceRoot  string
	RuntimeABinary string
	RuntimeBBinary string

	SampleInterval   time.Duration
	GracefulStopWait time.Duration
	RestartDelay     time.Duration

	StoreDriver string // "sqlite" or "memory"
	StoreDSN    string

	ListenAddr string
}

// Flags returns the urfave/cli/v2 flag set a command can embed to populate
// a Config via Load.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "memory-max",
			Usage:   "per-bot resident memory ceiling, a bare megabyte number or a humanized size like \"256MiB\"",
			Value:   "128",
			EnvVars: []string{"MEMORY_MAX"},
		},
		&cli.Float64Flag{
			Name:    "cpu-quota",
			Usage:   "per-bot CPU ceiling as a percent of one core",
			Value:   DefaultCPUMaxPct,
			EnvVars: []string{"CPU_QUOTA"},
		},
		&cli.IntFlag{
			Name:    "max-bots-per-user",
			Usage:   "advisory cap surfaced to the creating collaborator; 0 disables",
			Value:   DefaultMaxBotsPerUser,
			EnvVars: []string{"MAX_BOTS_PER_USER"},
		},
		&cli.StringFlag{
			Name:    "workspace-root",
			Usage:   "directory under which each bot's workspace is materialized",
			Value:   DefaultWorkspaceRoot,
			EnvVars: []string{"WORKSPACE_ROOT"},
		},
		&cli.StringFlag{
			Name:    "runtime-a-binary",
			Usage:   "executable used to launch Runtime A bots",
			Value:   DefaultRuntimeABinary,
			EnvVars: []string{"RUNTIME_A_BINARY"},
		},
		&cli.StringFlag{
			Name:    "runtime-b-binary",
			Usage:   "executable used to launch Runtime B bots",
			Value:   DefaultRuntimeBBinary,
			EnvVars: []string{"RUNTIME_B_BINARY"},
		},
		&cli.DurationFlag{
			Name:    "sample-interval",
			Usage:   "resource sampler poll interval",
			Value:   DefaultSampleInterval,
			EnvVars: []string{"SAMPLE_INTERVAL"},
		},
		&cli.DurationFlag{
			Name:    "graceful-stop-wait",
			Usage:   "time to wait for a graceful exit before escalating to a kill signal",
			Value:   DefaultGracefulStop,
			EnvVars: []string{"GRACEFUL_STOP_WAIT"},
		},
		&cli.DurationFlag{
			Name:    "restart-delay",
			Usage:   "pause between stop and start during a restart",
			Value:   DefaultRestartDelay,
			EnvVars: []string{"RESTART_DELAY"},
		},
		&cli.StringFlag{
			Name:    "store-driver",
			Usage:   `persistence backend: "sqlite" or "memory"`,
			Value:   DefaultStoreDriver,
			EnvVars: []string{"STORE_DRIVER"},
		},
		&cli.StringFlag{
			Name:    "store-dsn",
			Usage:   "data source name for the sqlite store",
			Value:   "./data/botengine.db",
			EnvVars: []string{"STORE_DSN"},
		},
		&cli.StringFlag{
			Name:    "listen-addr",
			Usage:   "address the websocket/health/metrics HTTP server binds",
			Value:   DefaultListenAddr,
			EnvVars: []string{"LISTEN_ADDR"},
		},
	}
}

// Load reads a Config from a populated cli.Context. memory-max may be given
// as a plain megabyte number or a humanized byte string (e.g. "256MiB").
func Load(c *cli.Context) Config {
	return Config{
		MemoryMaxMB:      resolveMemoryMaxMB(c),
		CPUMaxPct:        c.Float64("cpu-quota"),
		MaxBotsPerUser:   c.Int("max-bots-per-user"),
		WorkspaceRoot:    c.String("workspace-root"),
		RuntimeABinary:   c.String("runtime-a-binary"),
		RuntimeBBinary:   c.String("runtime-b-binary"),
		SampleInterval:   c.Duration("sample-interval"),
		GracefulStopWait: c.Duration("graceful-stop-wait"),
		RestartDelay:     c.Duration("restart-delay"),
		StoreDriver:      c.String("store-driver"),
		StoreDSN:         c.String("store-dsn"),
		ListenAddr:       c.String("listen-addr"),
	}
}

// ToSupervisorConfig adapts the flag-and-env-driven Config into the plain
// struct internal/supervisor expects.
func (c Config) ToSupervisorConfig() supervisor.Config {
	return supervisor.Config{
		RuntimeABinary:   c.RuntimeABinary,
		RuntimeBBinary:   c.RuntimeBBinary,
		WorkspaceRoot:    c.WorkspaceRoot,
		MemoryMaxMB:      c.MemoryMaxMB,
		CPUMaxPct:        c.CPUMaxPct,
		MaxBotsPerUser:   c.MaxBotsPerUser,
		SampleInterval:   c.SampleInterval,
		GracefulStopWait: int(c.GracefulStopWait / time.Second),
		RestartDelay:     int(c.RestartDelay / time.Second),
	}
}

// resolveMemoryMaxMB lets operators set MEMORY_MAX as either a bare number
// of megabytes (the native unit) or a humanized size string like "256MiB".
// A bare number is tried first since ParseBytes would otherwise read it as
// a raw byte count rather than megabytes.
func resolveMemoryMaxMB(c *cli.Context) float64 {
	raw := strings.TrimSpace(c.String("memory-max"))
	if mb, err := strconv.ParseFloat(raw, 64); err == nil {
		return mb
	}
	if bytes, err := humanize.ParseBytes(raw); err == nil {
		return float64(bytes) / (1024 * 1024)
	}
	return DefaultMemoryMaxMB
}
