package config

import (
	"flag"
	"testing"
	"time"

	"github.com/urfave/cli/v2"
)

func newTestContext(t *testing.T, args ...string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range Flags() {
		if err := f.Apply(set); err != nil {
			t.Fatalf("applying flag: %v", err)
		}
	}
	if err := set.Parse(args); err != nil {
		t.Fatalf("parsing args: %v", err)
	}
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestLoadDefaults(t *testing.T) {
	c := Load(newTestContext(t))
	if c.MemoryMaxMB != DefaultMemoryMaxMB {
		t.Errorf("MemoryMaxMB = %v, want %v", c.MemoryMaxMB, DefaultMemoryMaxMB)
	}
	if c.CPUMaxPct != DefaultCPUMaxPct {
		t.Errorf("CPUMaxPct = %v, want %v", c.CPUMaxPct, DefaultCPUMaxPct)
	}
	if c.SampleInterval != DefaultSampleInterval {
		t.Errorf("SampleInterval = %v, want %v", c.SampleInterval, DefaultSampleInterval)
	}
}

func TestResolveMemoryMaxAcceptsBareNumber(t *testing.T) {
	c := Load(newTestContext(t, "--memory-max=256"))
	if c.MemoryMaxMB != 256 {
		t.Fatalf("MemoryMaxMB = %v, want 256", c.MemoryMaxMB)
	}
}

func TestResolveMemoryMaxAcceptsHumanizedSize(t *testing.T) {
	c := Load(newTestContext(t, "--memory-max=256MiB"))
	if c.MemoryMaxMB != 256 {
		t.Fatalf("MemoryMaxMB = %v, want 256", c.MemoryMaxMB)
	}
}

func TestResolveMemoryMaxFallsBackOnGarbage(t *testing.T) {
	c := Load(newTestContext(t, "--memory-max=not-a-size"))
	if c.MemoryMaxMB != DefaultMemoryMaxMB {
		t.Fatalf("MemoryMaxMB = %v, want default %v", c.MemoryMaxMB, DefaultMemoryMaxMB)
	}
}

func TestToSupervisorConfigConvertsDurationsToSeconds(t *testing.T) {
	c := Config{GracefulStopWait: 7 * time.Second, RestartDelay: 2 * time.Second}
	sc := c.ToSupervisorConfig()
	if sc.GracefulStopWait != 7 || sc.RestartDelay != 2 {
		t.Fatalf("got GracefulStopWait=%d RestartDelay=%d", sc.GracefulStopWait, sc.RestartDelay)
	}
}
