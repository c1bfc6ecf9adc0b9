package agent

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/clearlane/invoice-extractor/internal/config"
)

func testClient(baseURL string, maxAttempts int) *Client {
	return NewClient(config.AgentConfig{
		BaseURL:         baseURL,
		AgentName:       "Unified PDF Parser",
		APIKey:          "test-key",
		SubmitTimeout:   2 * time.Second,
		PollTimeout:     2 * time.Second,
		PollInterval:    time.Millisecond,
		MaxPollAttempts: maxAttempts,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestPoll_CompletesOnLaterAttempt(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/run-1/status" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected Authorization header %q", got)
		}
		n := atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		if n < 3 {
			json.NewEncoder(w).Encode(map[string]any{"status": "running"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"status": "completed", "output": `{"line_items":[]}`})
	}))
	defer server.Close()

	client := testClient(server.URL, 3)
	body, err := client.Poll(context.Background(), "run-1", "")
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if body["status"] != "completed" {
		t.Errorf("expected completed body, got %v", body["status"])
	}
	// One call per attempt when the first endpoint answers.
	if calls != 3 {
		t.Errorf("expected 3 status calls, got %d", calls)
	}
}

func TestPoll_TimeoutAfterExactlyMaxAttempts(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"status": "running"})
	}))
	defer server.Close()

	client := testClient(server.URL, 4)
	_, err := client.Poll(context.Background(), "run-2", "")

	var timeoutErr *PollTimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected PollTimeoutError, got %v", err)
	}
	if timeoutErr.Attempts != 4 {
		t.Errorf("expected 4 attempts, got %d", timeoutErr.Attempts)
	}
	if calls != 4 {
		t.Errorf("expected exactly 4 status calls, got %d", calls)
	}
}

func TestPoll_404FallsThroughWithinSameAttempt(t *testing.T) {
	var statusCalls, runCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/run-3/status":
			atomic.AddInt32(&statusCalls, 1)
			http.NotFound(w, r)
		case "/run/run-3":
			atomic.AddInt32(&runCalls, 1)
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{"status": "succeeded", "output": "{}"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := testClient(server.URL, 1)
	body, err := client.Poll(context.Background(), "run-3", "")
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if body["status"] != "succeeded" {
		t.Errorf("expected succeeded, got %v", body["status"])
	}
	if statusCalls != 1 || runCalls != 1 {
		t.Errorf("expected fallback within one attempt, got status=%d run=%d", statusCalls, runCalls)
	}
}

func TestPoll_TerminalFailureReturnsWorkflowError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"status": "failed", "error": "model crashed"})
	}))
	defer server.Close()

	client := testClient(server.URL, 5)
	_, err := client.Poll(context.Background(), "run-4", "")

	var wfErr *WorkflowError
	if !errors.As(err, &wfErr) {
		t.Fatalf("expected WorkflowError, got %v", err)
	}
	if wfErr.Reason != "model crashed" {
		t.Errorf("unexpected reason %q", wfErr.Reason)
	}
}

func TestPoll_WorkflowScopedCandidatesTried(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/wf-9/runs/run-5/status" {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{"status": "completed", "output": "{}"})
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := testClient(server.URL, 1)
	if _, err := client.Poll(context.Background(), "run-5", "wf-9"); err != nil {
		t.Fatalf("Poll failed: %v", err)
	}

	want := []string{"/run-5/status", "/wf-9/run/run-5", "/wf-9/runs/run-5/status"}
	if len(paths) != len(want) {
		t.Fatalf("expected %d probes, got %v", len(want), paths)
	}
	for i, p := range want {
		if paths[i] != p {
			t.Errorf("probe %d: expected %s, got %s", i, p, paths[i])
		}
	}
}
