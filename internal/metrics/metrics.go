// Package metrics holds the Prometheus collectors of batch runs and the preview server.
package metrics

import (
	"net/http"
	"time"

	"github.com/maxbolgarin/errm"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// File results
const (
	ResultChanged   = "changed"
	ResultUnchanged = "unchanged"
	ResultFailed    = "failed"
)

// Metrics uses an isolated registry, every instance starts from zero
type Metrics struct {
	Registry *prometheus.Registry

	FilesTotal          *prometheus.CounterVec
	FileDurationSeconds prometheus.Histogram
	PhaseDuration       *prometheus.GaugeVec
	Authors             *prometheus.GaugeVec
	LastRunTimestamp    prometheus.Gauge

	PreviewRequestsTotal *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,

		FilesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docmeta_files_total",
				Help: "Number of processed HTML files by result.",
			},
			[]string{"result"},
		),
		FileDurationSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "docmeta_file_duration_seconds",
				Help:    "Time spent enriching one file.",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
			},
		),
		PhaseDuration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "docmeta_phase_duration_seconds",
				Help: "Duration of the last run phases.",
			},
			[]string{"phase"},
		),
		Authors: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "docmeta_authors",
				Help: "Number of unique author emails by resolution state.",
			},
			[]string{"state"},
		),
		LastRunTimestamp: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "docmeta_last_run_timestamp_seconds",
				Help: "Unix time of the last finished run.",
			},
		),
		PreviewRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docmeta_preview_requests_total",
				Help: "Requests served by the preview server.",
			},
			[]string{"code"},
		),
	}

	reg.MustRegister(
		m.FilesTotal,
		m.FileDurationSeconds,
		m.PhaseDuration,
		m.Authors,
		m.LastRunTimestamp,
		m.PreviewRequestsTotal,
	)

	return m
}

// ObserveFile records the outcome of one file
func (m *Metrics) ObserveFile(result string, elapsed time.Duration) {
	m.FilesTotal.WithLabelValues(result).Inc()
	m.FileDurationSeconds.Observe(elapsed.Seconds())
}

// ObservePhase records the duration of a run phase
func (m *Metrics) ObservePhase(phase string, elapsed time.Duration) {
	m.PhaseDuration.WithLabelValues(phase).Set(elapsed.Seconds())
}

// Finish marks the end of a run
func (m *Metrics) Finish(at time.Time) {
	m.LastRunTimestamp.Set(float64(at.Unix()))
}

// WriteTextfile writes all metrics in the text exposition format for the node exporter textfile collector
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return errm.Wrap(err, "failed to write metrics")
	}
	return nil
}

// Handler serves the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
