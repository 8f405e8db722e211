// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from the pipeline.
//
// It exposes a narrow Backend interface focused on counters and duration
// observations, with a global, pluggable backend defaulting to a no-op so
// metrics are always safe to call. Concrete systems (Prometheus Pushgateway,
// Datadog) live in subpackages, mirroring the registration pattern of the
// blob and warehouse packages.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a duration-style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it.
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing one.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStage measures one pipeline stage execution: latency plus a
// success/failure counter. Stages are "mount", "fetch", "stream",
// "register".
func RecordStage(job, stage string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"stage":  stage,
		"status": status,
	}

	backend.IncCounter("kddprep_stage_total", 1, lbls)
	backend.ObserveHistogram("kddprep_stage_duration_seconds", d.Seconds(), lbls)
}

// RecordRows increments a row-level counter for one dataset. Typical kinds
// mirror the stage summaries: "streamed", "malformed", "loaded", "skipped",
// "materialized".
func RecordRows(job, dataset, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("kddprep_rows_total", float64(delta), Labels{
		"job":     job,
		"dataset": dataset,
		"kind":    kind,
	})
}

// RecordBatches increments the bulk-insert batch counter for the job.
func RecordBatches(job string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("kddprep_batches_total", float64(delta), Labels{
		"job": job,
	})
}
