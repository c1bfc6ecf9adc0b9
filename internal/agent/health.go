package agent

import (
	"context"
	"strings"
	"time"
)

// HealthStatus summarizes agent reachability for the service health endpoint.
// It never carries credentials, only whether a key is configured.
type HealthStatus struct {
	Connected      bool   `json:"connected"`
	Endpoint       string `json:"endpoint"`
	ResponseTimeMS int64  `json:"response_time_ms,omitempty"`
	HTTPStatus     int    `json:"http_status,omitempty"`
	HasAPIKey      bool   `json:"has_api_key"`
	Note           string `json:"note,omitempty"`
	Error          string `json:"error,omitempty"`
}

// CheckConnection probes the agent. It tries a derived health endpoint first,
// then the submit endpoint; a POST-only endpoint that rejects GET still
// counts as reachable.
func (c *Client) CheckConnection(ctx context.Context) HealthStatus {
	endpoint := SubmitURL(c.cfg.BaseURL, c.cfg.SubmitEndpoint, c.cfg.WorkflowID)
	st := HealthStatus{Endpoint: endpoint, HasAPIKey: c.cfg.APIKey != ""}

	healthURL := strings.TrimSuffix(endpoint, "/run") + "/health"
	start := time.Now()

	if _, status, err := c.getJSON(ctx, healthURL, 5*time.Second); err == nil && status < 400 {
		st.Connected = true
		st.HTTPStatus = status
		st.ResponseTimeMS = time.Since(start).Milliseconds()
		return st
	}

	c.log.Debug("agent.health.fallback_to_main_endpoint", "health_url", healthURL)
	if _, status, err := c.getJSON(ctx, endpoint, 5*time.Second); err == nil {
		st.Connected = true
		st.HTTPStatus = status
		st.ResponseTimeMS = time.Since(start).Milliseconds()
		st.Note = "main endpoint responded (may not be a health check)"
		return st
	} else if ctx.Err() == nil {
		// Both probes failed at transport level; the endpoint may be POST-only.
		st.Connected = true
		st.Note = "endpoint appears to be POST-only (connection assumed)"
		st.Error = err.Error()
	}
	return st
}
