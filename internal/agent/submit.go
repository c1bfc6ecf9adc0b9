package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Submission is the outcome of submitting one extraction job. Either RunID is
// set and the caller must poll, or Immediate carries an already-terminal body
// (sync fast-path).
type Submission struct {
	RunID      string
	WorkflowID string
	Immediate  map[string]any
}

// failure sentinels the agent returns in an otherwise-200 submit response
func isWorkflowFailure(body map[string]any) bool {
	if s, _ := body["status"].(string); s == "workflow_execution_failed" {
		return true
	}
	if s, _ := body["workflow_executed"].(string); s == "None (failed)" {
		return true
	}
	return false
}

// Submit serializes the document and instructions into the agent's request
// shape and posts it. With a workflow id configured the payload omits
// agent_name; otherwise agent_name selects the agent. Non-2xx responses are
// classified, never retried here.
func (c *Client) Submit(ctx context.Context, documentBase64, instructions string) (*Submission, error) {
	reqID := uuid.New().String()
	start := time.Now()
	endpoint := SubmitURL(c.cfg.BaseURL, c.cfg.SubmitEndpoint, c.cfg.WorkflowID)

	payload := map[string]any{
		"agent_inputs": map[string]any{
			"pdf_document":        documentBase64,
			"custom_instructions": instructions,
		},
	}
	if c.cfg.WorkflowID == "" {
		payload["agent_name"] = c.cfg.AgentName
	}

	c.log.Info("agent.submit.request",
		"req_id", reqID,
		"endpoint", endpoint,
		"workflow_id", c.cfg.WorkflowID,
		"agent_name", c.cfg.AgentName,
		"has_api_key", c.cfg.APIKey != "",
		"document_chars", len(documentBase64),
		"instruction_chars", len(instructions),
	)

	raw, status, err := c.postJSON(ctx, endpoint, payload, c.cfg.SubmitTimeout)
	if err != nil {
		return nil, fmt.Errorf("agent submit: %w", err)
	}

	if status >= 400 {
		apiErr := &APIError{
			Status:   status,
			Kind:     ClassifyStatus(status),
			Endpoint: endpoint,
			Message:  upstreamMessage(raw, fmt.Sprintf("HTTP %d", status)),
		}
		c.log.Error("agent.submit.api_error",
			"req_id", reqID,
			"status", status,
			"kind", string(apiErr.Kind),
			"endpoint", endpoint,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, apiErr
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("agent submit: decode response: %w", err)
	}

	if isWorkflowFailure(body) {
		reason := upstreamMessage(raw, "workflow execution failed")
		c.log.Error("agent.submit.workflow_failed", "req_id", reqID, "reason", reason)
		return nil, &WorkflowError{Reason: reason}
	}

	sub := &Submission{
		RunID:      stringField(body, "run_id", "runId"),
		WorkflowID: stringField(body, "workflow_id", "workflowId"),
	}
	if sub.WorkflowID == "" {
		sub.WorkflowID = c.cfg.WorkflowID
	}

	// Fast-path: the response is already terminal with embedded output.
	statusStr, _ := body["status"].(string)
	if (statusStr == "completed" || statusStr == "succeeded") && body["output"] != nil {
		c.log.Info("agent.submit.immediate_result", "req_id", reqID, "status", statusStr,
			"elapsed_ms", time.Since(start).Milliseconds())
		sub.Immediate = body
		return sub, nil
	}

	if sub.RunID == "" {
		return nil, fmt.Errorf("agent submit: response carries neither run_id nor terminal output")
	}

	c.log.Info("agent.submit.accepted",
		"req_id", reqID,
		"run_id", sub.RunID,
		"workflow_id", sub.WorkflowID,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return sub, nil
}

func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
