package prompush

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"kddprep/internal/metrics"
)

func TestNewBackend_Validation(t *testing.T) {
	t.Parallel()

	if _, err := NewBackend("kdd99", ""); err == nil {
		t.Fatal("empty gateway URL accepted")
	}
	b, err := NewBackend("", "http://localhost:9091")
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	if b.jobName != "kddprep" {
		t.Fatalf("default jobName = %q, want kddprep", b.jobName)
	}
}

// TestFlushPushesMetrics stands up a fake Pushgateway and checks the pushed
// body carries the recorded series.
func TestFlushPushesMetrics(t *testing.T) {
	t.Parallel()

	var (
		mu   sync.Mutex
		path string
		body string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		path = r.URL.Path
		body += string(data)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	b, err := NewBackend("kdd99", srv.URL)
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}

	b.IncCounter("kddprep_stage_total", 1, metrics.Labels{"stage": "fetch", "status": "success"})
	b.IncCounter("kddprep_rows_total", 42, metrics.Labels{"dataset": "kdd", "kind": "streamed"})
	b.IncCounter("kddprep_batches_total", 3, nil)
	b.ObserveHistogram("kddprep_stage_duration_seconds", 1.25, metrics.Labels{"stage": "fetch", "status": "success"})

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if !strings.Contains(path, "/job/kdd99") {
		t.Errorf("push path %q missing job grouping", path)
	}
	for _, want := range []string{
		"kddprep_stage_total",
		`stage="fetch"`,
		"kddprep_rows_total",
		`dataset="kdd"`,
		"kddprep_batches_total",
		"kddprep_stage_duration_seconds",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("pushed body missing %q", want)
		}
	}
}

// TestUnknownMetricIgnored verifies stray metric names do not panic.
func TestUnknownMetricIgnored(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("kdd99", "http://localhost:9091")
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	b.IncCounter("something_else_total", 1, nil)
	b.ObserveHistogram("something_else_seconds", 1, nil)
}
