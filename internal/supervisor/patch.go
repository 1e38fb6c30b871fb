package supervisor

import (
	"time"

	"github.com/shardhost/botengine/internal/model"
)

func statusPtr(s model.Status) *model.Status { return &s }
func strPtr(s string) *string                { return &s }

func pidSet(pid int) **int {
	p := &pid
	return &p
}

func pidClear() **int {
	var p *int
	return &p
}

func timeSet(t time.Time) **time.Time {
	tp := &t
	return &tp
}

// stoppedOrErrorPatch sets status, resets the textual resource fields and clears pid, used on
// every transition into stopped or error.
func stoppedOrErrorPatch(status model.Status) model.BotPatch {
	return model.BotPatch{
		Status: statusPtr(status),
		PID:    pidClear(),
		Memory: strPtr("0MB"),
		CPU:    strPtr("0%"),
	}
}
