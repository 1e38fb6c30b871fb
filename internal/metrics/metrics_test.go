package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestObserveSampleExposedViaHandler(t *testing.T) {
	c := NewCollector()
	c.ObserveSample("bot1", 64, 12.5)
	c.SetRunning("bot1", true)
	c.IncVeto("static")
	c.IncInstallFailure("runtime_a")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()

	for _, want := range []string{
		`botengine_bot_memory_mb{bot_id="bot1"} 64`,
		`botengine_bot_cpu_percent{bot_id="bot1"} 12.5`,
		`botengine_bot_running{bot_id="bot1"} 1`,
		`botengine_radar_vetoes_total{stage="static"} 1`,
		`botengine_installer_failures_total{runtime="runtime_a"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q\nfull output:\n%s", want, body)
		}
	}
}

func TestClearBotRemovesSeries(t *testing.T) {
	c := NewCollector()
	c.ObserveSample("bot1", 64, 12.5)
	c.ClearBot("bot1")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if strings.Contains(rec.Body.String(), `bot_id="bot1"`) {
		t.Fatalf("expected bot1 series to be cleared, got:\n%s", rec.Body.String())
	}
}
