package httpds

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// TestNewClient_Defaults verifies that NewClient applies defaults and sets
// TLS behavior when no custom Transport is supplied.
func TestNewClient_Defaults(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{InsecureSkipVerify: true})

	if c.httpClient.Timeout <= 0 {
		t.Fatalf("expected non-zero timeout, got %v", c.httpClient.Timeout)
	}
	if c.maxRetries != 0 {
		t.Fatalf("expected default maxRetries=0, got %d", c.maxRetries)
	}
	if c.initialBackoff <= 0 || c.maxBackoff <= 0 {
		t.Fatalf("expected positive backoff defaults, got %v/%v", c.initialBackoff, c.maxBackoff)
	}

	transport, ok := c.httpClient.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("expected *http.Transport, got %T", c.httpClient.Transport)
	}
	if transport.TLSClientConfig == nil || !transport.TLSClientConfig.InsecureSkipVerify {
		t.Fatalf("expected InsecureSkipVerify=true when configured")
	}
}

// TestGet_Success_NoRetry verifies that a 200 returns immediately without
// retries, even when MaxRetries > 0.
func TestGet_Success_NoRetry(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		io.WriteString(w, "payload")
	}))
	defer srv.Close()

	c := NewClient(Config{
		MaxRetries:     3,
		Timeout:        2 * time.Second,
		InitialBackoff: 10 * time.Millisecond,
		MaxBackoff:     20 * time.Millisecond,
	})
	c.sleep = func(time.Duration) {}

	resp, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if string(body) != "payload" {
		t.Fatalf("body = %q, want payload", body)
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("expected exactly 1 request, got %d", got)
	}
}

// TestGet_RetryOn5xxThenSuccess verifies the client retries on 5xx and
// returns the successful response once the server recovers.
func TestGet_RetryOn5xxThenSuccess(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&hits, 1)
		if n <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(Config{
		MaxRetries:     3,
		Timeout:        2 * time.Second,
		InitialBackoff: 1 * time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	})

	var sleeps []time.Duration
	c.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }

	resp, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	defer resp.Body.Close()

	if got := atomic.LoadInt32(&hits); got != 3 {
		t.Fatalf("expected 3 attempts (2x500 + 1x200), got %d", got)
	}
	if len(sleeps) == 0 {
		t.Fatalf("expected at least one backoff sleep, got none")
	}
}

// TestGet_StopsAfterMaxRetries verifies the client gives up after the
// configured retries when every response remains retryable.
func TestGet_StopsAfterMaxRetries(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(Config{
		MaxRetries:     2, // initial + 2 retries = 3 attempts total
		Timeout:        2 * time.Second,
		InitialBackoff: 1 * time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	})
	c.sleep = func(time.Duration) {}

	resp, err := c.Get(context.Background(), srv.URL)
	if err == nil {
		resp.Body.Close()
		t.Fatalf("expected error after exhausting retries, got nil")
	}
	if got := atomic.LoadInt32(&hits); got != 3 {
		t.Fatalf("expected 3 attempts (1 initial + 2 retries), got %d", got)
	}
}

// TestGet_NonRetryableStatus verifies that a 404 fails immediately without
// retries. A dataset that is gone will not come back on the next attempt.
func TestGet_NonRetryableStatus(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(Config{
		MaxRetries:     5,
		Timeout:        2 * time.Second,
		InitialBackoff: 1 * time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	})
	c.sleep = func(time.Duration) {}

	if _, err := c.Get(context.Background(), srv.URL); err == nil {
		t.Fatalf("expected error for 404, got nil")
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("expected 1 attempt for non-retryable status, got %d", got)
	}
}

// TestBackoffDuration verifies exponential backoff with clamping.
func TestBackoffDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		initial time.Duration
		attempt int
		max     time.Duration
		want    time.Duration
	}{
		{100 * time.Millisecond, 0, 1 * time.Second, 100 * time.Millisecond},
		{100 * time.Millisecond, 1, 1 * time.Second, 200 * time.Millisecond},
		{100 * time.Millisecond, 2, 1 * time.Second, 400 * time.Millisecond},
		{600 * time.Millisecond, 1, 1 * time.Second, 1 * time.Second}, // clamped
	}
	for _, tt := range tests {
		got := backoffDuration(tt.initial, tt.attempt, tt.max)
		if got != tt.want {
			t.Errorf("backoffDuration(%v, %d, %v) = %v, want %v",
				tt.initial, tt.attempt, tt.max, got, tt.want)
		}
	}
}

// TestIsRetryableStatus verifies 5xx and 429 are retryable and common final
// statuses are not.
func TestIsRetryableStatus(t *testing.T) {
	t.Parallel()

	for _, code := range []int{429, 500, 503} {
		if !isRetryableStatus(code) {
			t.Errorf("expected status %d to be retryable", code)
		}
	}
	for _, code := range []int{200, 400, 404} {
		if isRetryableStatus(code) {
			t.Errorf("expected status %d to be non-retryable", code)
		}
	}
}

// TestSleepWithContextCancellation verifies sleepWithContext aborts early on
// a canceled context.
func TestSleepWithContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sleepWithContext(ctx, func(time.Duration) {}, 100*time.Millisecond)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

// TestSource_Open verifies the datasource adapter hands back the body.
func TestSource_Open(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "0,tcp,http,SF\n")
	}))
	defer srv.Close()

	src := NewSource(NewClient(Config{Timeout: 2 * time.Second}), srv.URL)
	rc, err := src.Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()

	body, _ := io.ReadAll(rc)
	if string(body) != "0,tcp,http,SF\n" {
		t.Fatalf("body = %q", body)
	}
}
