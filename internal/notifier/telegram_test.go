package notifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newFailingServer(t *testing.T, calls *atomic.Int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSendWithRetry_NoBackoffAfterFinalAttempt(t *testing.T) {
	var calls atomic.Int64
	srv := newFailingServer(t, &calls)

	tn := NewTelegramNotifier("token", "chat", "")
	tn.APIBase = srv.URL

	start := time.Now()
	err := tn.SendWithRetry(context.Background(), "hello", 0)
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("expected error when every attempt fails")
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 attempt, got %d", calls.Load())
	}
	// maxRetries=0 means one attempt and no backoff at all; anything near
	// the 1s first-backoff duration means we slept after the last failure.
	if elapsed > 500*time.Millisecond {
		t.Errorf("final failure should return immediately, took %v", elapsed)
	}
}

func TestSendWithRetry_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(srv.Close)

	tn := NewTelegramNotifier("token", "chat", "")
	tn.APIBase = srv.URL

	if err := tn.SendWithRetry(context.Background(), "hello", 2); err != nil {
		t.Fatalf("expected success on second attempt: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 attempts, got %d", calls.Load())
	}
}

func TestSendWithRetry_ContextCancelDuringBackoff(t *testing.T) {
	var calls atomic.Int64
	srv := newFailingServer(t, &calls)

	tn := NewTelegramNotifier("token", "chat", "")
	tn.APIBase = srv.URL

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	err := tn.SendWithRetry(ctx, "hello", 3)
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("cancel during backoff should stop retries, got %d attempts", calls.Load())
	}
}
