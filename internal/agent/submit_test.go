package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSubmit_AgentNamePayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/run" {
			t.Errorf("expected /run, got %s", r.URL.Path)
		}

		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload["agent_name"] != "Unified PDF Parser" {
			t.Errorf("expected agent_name in payload, got %v", payload["agent_name"])
		}
		inputs, ok := payload["agent_inputs"].(map[string]any)
		if !ok {
			t.Fatalf("missing agent_inputs")
		}
		if inputs["pdf_document"] != "ZG9j" {
			t.Errorf("unexpected pdf_document %v", inputs["pdf_document"])
		}
		if !strings.Contains(inputs["custom_instructions"].(string), "line item") {
			t.Errorf("instructions not forwarded")
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"run_id": "run-77"})
	}))
	defer server.Close()

	client := testClient(server.URL, 1)
	sub, err := client.Submit(context.Background(), "ZG9j", "Extract every line item.")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if sub.RunID != "run-77" {
		t.Errorf("expected run-77, got %q", sub.RunID)
	}
	if sub.Immediate != nil {
		t.Errorf("expected async submission, got immediate result")
	}
}

func TestSubmit_WorkflowScopedOmitsAgentName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wf-1/run" {
			t.Errorf("expected /wf-1/run, got %s", r.URL.Path)
		}
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		if _, present := payload["agent_name"]; present {
			t.Errorf("agent_name must be omitted when a workflow id is configured")
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"run_id": "run-1"})
	}))
	defer server.Close()

	client := testClient(server.URL, 1)
	client.cfg.WorkflowID = "wf-1"
	sub, err := client.Submit(context.Background(), "ZG9j", "x")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if sub.WorkflowID != "wf-1" {
		t.Errorf("expected workflow id carried through, got %q", sub.WorkflowID)
	}
}

func TestSubmit_ClassifiesHTTPErrors(t *testing.T) {
	cases := []struct {
		status int
		kind   ErrorKind
	}{
		{http.StatusUnauthorized, KindAuth},
		{http.StatusForbidden, KindAuth},
		{http.StatusNotFound, KindNotFound},
		{http.StatusBadGateway, KindTransient},
		{http.StatusTeapot, KindGeneric},
	}
	for _, tc := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			w.Write([]byte(`{"message": "upstream says no"}`))
		}))

		client := testClient(server.URL, 1)
		_, err := client.Submit(context.Background(), "ZG9j", "x")

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("status %d: expected APIError, got %v", tc.status, err)
		}
		if apiErr.Kind != tc.kind {
			t.Errorf("status %d: expected kind %s, got %s", tc.status, tc.kind, apiErr.Kind)
		}
		if apiErr.Message != "upstream says no" {
			t.Errorf("status %d: expected upstream message, got %q", tc.status, apiErr.Message)
		}
		server.Close()
	}
}

func TestSubmit_SynchronousWorkflowFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status":            "workflow_execution_failed",
			"workflow_executed": "None (failed)",
			"error":             "no agent matched",
		})
	}))
	defer server.Close()

	client := testClient(server.URL, 1)
	_, err := client.Submit(context.Background(), "ZG9j", "x")

	var wfErr *WorkflowError
	if !errors.As(err, &wfErr) {
		t.Fatalf("expected WorkflowError, got %v", err)
	}
}

func TestSubmit_ImmediateResultFastPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"run_id": "run-9",
			"status": "completed",
			"output": `{"line_items":[]}`,
		})
	}))
	defer server.Close()

	client := testClient(server.URL, 1)
	sub, err := client.Submit(context.Background(), "ZG9j", "x")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if sub.Immediate == nil {
		t.Fatalf("expected immediate result")
	}
	if sub.Immediate["status"] != "completed" {
		t.Errorf("unexpected immediate status %v", sub.Immediate["status"])
	}
}

func TestSubmit_MissingRunIDAndOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"accepted": true})
	}))
	defer server.Close()

	client := testClient(server.URL, 1)
	if _, err := client.Submit(context.Background(), "ZG9j", "x"); err == nil {
		t.Fatalf("expected error for response without run_id or output")
	}
}
