package provider

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"infobot/internal/domain"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNewClient_UserAgent(t *testing.T) {
	var ua atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua.Store(r.Header.Get("User-Agent"))
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{Timeout: time.Second, UserAgent: "infobot-test"})
	if _, err := get(context.Background(), c, "test", srv.URL, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, _ := ua.Load().(string); got != "infobot-test" {
		t.Errorf("User-Agent = %q", got)
	}
}

func TestNewClient_NoRetryByDefault(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := get(context.Background(), NewClient(ClientConfig{Timeout: time.Second}), "test", srv.URL, nil)
	if domain.KindOf(err) != domain.KindStatus {
		t.Fatalf("expected status error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestNewClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{Timeout: 5 * time.Second, Retries: 3, Logger: quietLogger()})
	c.SetRetryWaitTime(time.Millisecond).SetRetryMaxWaitTime(5 * time.Millisecond)

	body, err := get(context.Background(), c, "test", srv.URL, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("body = %s", body)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestNewClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{Timeout: time.Second, Retries: 2, Logger: quietLogger()})
	c.SetRetryWaitTime(time.Millisecond)

	if _, err := get(context.Background(), c, "test", srv.URL, nil); err == nil {
		t.Fatal("expected error for 404")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestGet_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{Timeout: 50 * time.Millisecond})
	_, err := get(context.Background(), c, "test", srv.URL, nil)
	if !domain.IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
}
