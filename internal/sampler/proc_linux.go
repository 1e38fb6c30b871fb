//go:build linux

// Package sampler polls /proc for a child's CPU and memory usage on a
// fixed cadence, via direct file reads rather than a library, since the
// fields needed are a handful of whitespace-delimited integers.
package sampler

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
)

var clockTicksPerSecond int64 = 100 // getconf CLK_TCK on virtually every Linux; avoids a cgo call to sysconf.

// cpuTicks is utime+stime in clock ticks, read from /proc/<pid>/stat.
func cpuTicks(pid int) (int64, error) {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/stat", pid))
	if err != nil {
		return 0, err
	}

	closeParen := bytes.LastIndexByte(data, ')')
	if closeParen == -1 || closeParen >= len(data)-1 {
		return 0, fmt.Errorf("sampler: malformed stat for pid %d", pid)
	}

	fields := strings.Fields(string(data[closeParen+2:]))
	// Fields after "(comm)": state(0) ppid(1) pgrp(2) session(3) tty_nr(4)
	// tpgid(5) flags(6) minflt(7) cminflt(8) majflt(9) cmajflt(10)
	// utime(11) stime(12)
	if len(fields) < 13 {
		return 0, fmt.Errorf("sampler: not enough stat fields for pid %d", pid)
	}

	utime, err := strconv.ParseInt(fields[11], 10, 64)
	if err != nil {
		return 0, err
	}
	stime, err := strconv.ParseInt(fields[12], 10, 64)
	if err != nil {
		return 0, err
	}
	return utime + stime, nil
}

// residentMemoryMB reads VmRSS from /proc/<pid>/status, in megabytes.
func residentMemoryMB(pid int) (float64, error) {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/status", pid))
	if err != nil {
		return 0, err
	}

	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, "VmRSS:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0, fmt.Errorf("sampler: malformed VmRSS line")
		}
		kb, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return 0, err
		}
		return kb / 1024, nil
	}
	return 0, fmt.Errorf("sampler: VmRSS not found for pid %d", pid)
}

// processAlive reports whether /proc/<pid> still exists.
func processAlive(pid int) bool {
	_, err := os.Stat(fmt.Sprintf("/proc/%d", pid))
	return err == nil
}
