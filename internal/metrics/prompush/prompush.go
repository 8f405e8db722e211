// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// A pipeline run is a batch process, so metrics are pushed to a Pushgateway
// at the end of the run instead of being exposed on a scrape endpoint. All
// Prometheus-specific dependencies stay in this package; the rest of the
// project depends only on metrics.Backend.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"kddprep/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string
	jobName    string
	reg        *prometheus.Registry

	stageCounter  *prometheus.CounterVec // kddprep_stage_total
	stageDuration *prometheus.SummaryVec // kddprep_stage_duration_seconds
	rowCounter    *prometheus.CounterVec // kddprep_rows_total
	batchCounter  prometheus.Counter     // kddprep_batches_total
}

// NewBackend constructs a Pushgateway backend. jobName becomes the
// Pushgateway "job" grouping key; gatewayURL is the base URL of the server.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "kddprep"
	}

	reg := prometheus.NewRegistry()

	stageCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kddprep_stage_total",
			Help: "Total pipeline stage executions, partitioned by stage and status.",
		},
		[]string{"stage", "status"},
	)
	stageDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "kddprep_stage_duration_seconds",
			Help:       "Duration of pipeline stages in seconds, partitioned by stage and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"stage", "status"},
	)
	rowCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kddprep_rows_total",
			Help: "Row-level counts per dataset and kind (streamed, malformed, loaded, etc.).",
		},
		[]string{"dataset", "kind"},
	)
	batchCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kddprep_batches_total",
			Help: "Total bulk-insert batches flushed during this run.",
		},
	)

	for _, c := range []prometheus.Collector{stageCounter, stageDuration, rowCounter, batchCounter} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register collector: %w", err)
		}
	}

	return &Backend{
		gatewayURL:    gatewayURL,
		jobName:       jobName,
		reg:           reg,
		stageCounter:  stageCounter,
		stageDuration: stageDuration,
		rowCounter:    rowCounter,
		batchCounter:  batchCounter,
	}, nil
}

// IncCounter implements metrics.Backend. Unknown metric names are ignored.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "kddprep_stage_total":
		b.stageCounter.WithLabelValues(labels["stage"], labels["status"]).Add(delta)
	case "kddprep_rows_total":
		b.rowCounter.WithLabelValues(labels["dataset"], labels["kind"]).Add(delta)
	case "kddprep_batches_total":
		b.batchCounter.Add(delta)
	}
}

// ObserveHistogram implements metrics.Backend.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != "kddprep_stage_duration_seconds" {
		return
	}
	b.stageDuration.WithLabelValues(labels["stage"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
