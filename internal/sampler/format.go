package sampler

import (
	"fmt"
	"time"
)

// FormatMemoryMB renders rounded megabytes as the bot record's textual
// memory field, e.g. "42MB".
func FormatMemoryMB(mb float64) string {
	return fmt.Sprintf("%dMB", int64(mb+0.5))
}

// FormatCPUPercent renders one-decimal CPU percent, e.g. "3.1%".
func FormatCPUPercent(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// ZeroMemory and ZeroCPU are the reset values written when a bot stops or
// errors.
const (
	ZeroMemory = "0MB"
	ZeroCPU    = "0%"
)

// FormatUptime renders an elapsed duration, dropping leading zero
// components only down to whichever scale is largest:
//
//	days present:    "Nd Nh Nm"
//	hours present:   "Nh Nm Ns"
//	minutes present: "Nm Ns"
//	otherwise:       "Ns"
func FormatUptime(elapsed time.Duration) string {
	total := int64(elapsed.Seconds())
	if total < 0 {
		total = 0
	}

	days := total / 86400
	rem := total % 86400
	hours := rem / 3600
	rem %= 3600
	minutes := rem / 60
	seconds := rem % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
