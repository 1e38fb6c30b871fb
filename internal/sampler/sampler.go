package sampler

import (
	"context"
	"time"

	"github.com/shardhost/botengine/internal/logger"
	"github.com/shardhost/botengine/internal/radar"
)

const defaultInterval = 3 * time.Second

// Observer receives each tick's formatted sample and is told when the
// runtime quota has been breached.
type Observer interface {
	OnSample(botID string, memoryMB, cpuPct float64, memoryText, cpuText, uptimeText string)
	OnQuotaBreach(botID, reason string)
}

// Run polls pid on interval (defaultInterval if zero) until the process
// vanishes, the quota is breached, or ctx is cancelled. Intended to be
// launched in its own goroutine right after a successful spawn.
func Run(ctx context.Context, log logger.Logger, botID string, pid int, startedAt time.Time, limits radar.Limits, interval time.Duration, obs Observer) {
	if interval <= 0 {
		interval = defaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastTicks int64
	var lastSampleAt time.Time
	haveLast := false

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if !processAlive(pid) {
				log.Debug("[sampler] pid %d for bot %s is gone, stopping", pid, botID)
				return
			}

			ticks, err := cpuTicks(pid)
			if err != nil {
				log.Debug("[sampler] pid %d stat read failed: %v", pid, err)
				return
			}
			memMB, err := residentMemoryMB(pid)
			if err != nil {
				log.Debug("[sampler] pid %d status read failed: %v", pid, err)
				return
			}

			var cpuPct float64
			if haveLast {
				elapsedSeconds := now.Sub(lastSampleAt).Seconds()
				if elapsedSeconds > 0 {
					deltaTicks := float64(ticks - lastTicks)
					cpuPct = (deltaTicks / clockTicksPerSecondF() / elapsedSeconds) * 100
				}
			}
			lastTicks = ticks
			lastSampleAt = now
			haveLast = true

			uptime := FormatUptime(now.Sub(startedAt))
			obs.OnSample(botID, memMB, cpuPct, FormatMemoryMB(memMB), FormatCPUPercent(cpuPct), uptime)

			verdict := radar.CheckSample(memMB, cpuPct, limits)
			if verdict.Breach {
				log.Warn("[sampler] bot %s breached quota: %s", botID, verdict.Reason)
				obs.OnQuotaBreach(botID, verdict.Reason)
				return
			}
		}
	}
}

func clockTicksPerSecondF() float64 { return float64(clockTicksPerSecond) }
