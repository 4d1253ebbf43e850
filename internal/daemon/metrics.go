package daemon

import (
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	promcollect "github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"git.home.luguber.info/inful/docbuild/internal/sphinx"
)

// Metrics exposes build counters and gauges on the daemon's /metrics
// endpoint.
type Metrics struct {
	registry *prom.Registry

	buildsTotal        prom.Counter
	buildsFailedTotal  prom.Counter
	buildDuration      prom.Histogram
	lastBuildSuccess   prom.Gauge
	lastBuildTimestamp prom.Gauge
}

// NewMetrics creates and registers the daemon metric set.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prom.NewRegistry(),
		buildsTotal: prom.NewCounter(prom.CounterOpts{
			Namespace: "docbuild", Name: "builds_total",
			Help: "Total builds executed by the daemon"}),
		buildsFailedTotal: prom.NewCounter(prom.CounterOpts{
			Namespace: "docbuild", Name: "builds_failed_total",
			Help: "Failed builds executed by the daemon"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "docbuild", Name: "build_duration_seconds",
			Help:    "Build wall-clock duration",
			Buckets: prom.ExponentialBuckets(0.5, 2, 10)}),
		lastBuildSuccess: prom.NewGauge(prom.GaugeOpts{
			Namespace: "docbuild", Name: "last_build_success",
			Help: "Whether the most recent build succeeded (1) or failed (0)"}),
		lastBuildTimestamp: prom.NewGauge(prom.GaugeOpts{
			Namespace: "docbuild", Name: "last_build_timestamp_seconds",
			Help: "Unix timestamp of the most recent build"}),
	}

	m.registry.MustRegister(
		m.buildsTotal, m.buildsFailedTotal, m.buildDuration,
		m.lastBuildSuccess, m.lastBuildTimestamp,
		promcollect.NewGoCollector(),
		promcollect.NewProcessCollector(promcollect.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveBuild records one completed build.
func (m *Metrics) ObserveBuild(report sphinx.Report) {
	m.buildsTotal.Inc()
	if report.Status != sphinx.StatusSucceeded {
		m.buildsFailedTotal.Inc()
	}
	m.buildDuration.Observe(report.Duration.Seconds())
	if report.Status == sphinx.StatusSucceeded {
		m.lastBuildSuccess.Set(1)
	} else {
		m.lastBuildSuccess.Set(0)
	}
	m.lastBuildTimestamp.Set(float64(report.Started.Unix()))
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
