// Package metrics exposes the engine's Prometheus collectors: per-bot
// resource gauges fed by the Resource Sampler and counters for the
// failure-disposition events the error taxonomy distinguishes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the engine's Prometheus registry and the gauges/counters
// other components update as they observe bot state.
type Collector struct {
	registry *prometheus.Registry

	memoryMB     *prometheus.GaugeVec
	cpuPct       *prometheus.GaugeVec
	running      *prometheus.GaugeVec
	vetoes       *prometheus.CounterVec
	installFails *prometheus.CounterVec
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		memoryMB: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "botengine_bot_memory_mb",
			Help: "Most recently sampled resident memory for a bot, in megabytes.",
		}, []string{"bot_id"}),
		cpuPct: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "botengine_bot_cpu_percent",
			Help: "Most recently sampled CPU usage for a bot, as a percent of one core.",
		}, []string{"bot_id"}),
		running: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "botengine_bot_running",
			Help: "1 if the bot currently has a live process handle, else 0.",
		}, []string{"bot_id"}),
		vetoes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "botengine_radar_vetoes_total",
			Help: "Count of RADAR static or runtime vetoes, by stage.",
		}, []string{"stage"}),
		installFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "botengine_installer_failures_total",
			Help: "Count of dependency installer commands that exhausted their fallbacks.",
		}, []string{"runtime"}),
	}
	c.registry.MustRegister(c.memoryMB, c.cpuPct, c.running, c.vetoes, c.installFails)
	return c
}

// ObserveSample records a single Resource Sampler tick for botID.
func (c *Collector) ObserveSample(botID string, memoryMB, cpuPct float64) {
	c.memoryMB.WithLabelValues(botID).Set(memoryMB)
	c.cpuPct.WithLabelValues(botID).Set(cpuPct)
}

// SetRunning records whether botID currently has a live process handle.
func (c *Collector) SetRunning(botID string, running bool) {
	v := 0.0
	if running {
		v = 1.0
	}
	c.running.WithLabelValues(botID).Set(v)
}

// ClearBot drops all series for a bot that has been deleted.
func (c *Collector) ClearBot(botID string) {
	c.memoryMB.DeleteLabelValues(botID)
	c.cpuPct.DeleteLabelValues(botID)
	c.running.DeleteLabelValues(botID)
}

// IncVeto increments the veto counter for the given RADAR stage ("static"
// or "runtime").
func (c *Collector) IncVeto(stage string) {
	c.vetoes.WithLabelValues(stage).Inc()
}

// IncInstallFailure increments the installer-exhausted counter for the
// given runtime tag.
func (c *Collector) IncInstallFailure(runtime string) {
	c.installFails.WithLabelValues(runtime).Inc()
}

// Handler returns the HTTP handler to mount at /metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
