package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// terminalSuccess / terminalFailure are the run statuses after which no
// further state change occurs. Anything else keeps the poller waiting.
func terminalSuccess(status string) bool {
	return status == "completed" || status == "succeeded"
}

func terminalFailure(status string) bool {
	return status == "failed" || status == "error"
}

// Poll drives a submitted run to completion. Each attempt walks the candidate
// status endpoints in order: a 404 moves to the next endpoint within the same
// attempt, a network error likewise (possibly transient), and any other HTTP
// error abandons the rest of the endpoints for this attempt. Between attempts
// the poller sleeps a fixed interval; the wall-clock bound is
// MaxPollAttempts * PollInterval. Exhausting the budget always terminates
// with a PollTimeoutError, never a hang.
func (c *Client) Poll(ctx context.Context, runID, workflowID string) (map[string]any, error) {
	start := time.Now()
	candidates := StatusCandidates(c.cfg.BaseURL, runID, workflowID)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("poll: no status endpoints for run %q", runID)
	}

	for attempt := 1; attempt <= c.cfg.MaxPollAttempts; attempt++ {
	endpoints:
		for _, endpoint := range candidates {
			c.log.Info("agent.poll.attempt",
				"run_id", runID,
				"attempt", attempt,
				"max_attempts", c.cfg.MaxPollAttempts,
				"endpoint", endpoint,
			)

			raw, status, err := c.getJSON(ctx, endpoint, c.cfg.PollTimeout)
			switch {
			case err != nil:
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				// Timeouts and refused connections may be endpoint-specific.
				c.log.Warn("agent.poll.network_error", "endpoint", endpoint, "error", err)
				continue endpoints
			case status == http.StatusNotFound:
				c.log.Info("agent.poll.endpoint_not_found", "endpoint", endpoint)
				continue endpoints
			case status >= 400:
				// Probably the right endpoint with the job not ready; wait and
				// retry on the next attempt.
				c.log.Warn("agent.poll.http_error", "endpoint", endpoint, "status", status)
				break endpoints
			}

			var body map[string]any
			if err := json.Unmarshal(raw, &body); err != nil {
				c.log.Warn("agent.poll.decode_error", "endpoint", endpoint, "error", err)
				continue endpoints
			}

			runStatus, _ := body["status"].(string)
			switch {
			case terminalSuccess(runStatus):
				c.log.Info("agent.poll.completed",
					"run_id", runID,
					"attempts", attempt,
					"status", runStatus,
					"elapsed_ms", time.Since(start).Milliseconds(),
				)
				return body, nil
			case terminalFailure(runStatus):
				reason := upstreamMessage(raw, "unknown error")
				c.log.Error("agent.poll.run_failed", "run_id", runID, "status", runStatus, "reason", reason)
				return nil, &WorkflowError{Reason: reason}
			default:
				// running/pending/processing or anything unrecognized: this is
				// a live endpoint, stop probing fallbacks and wait.
				c.log.Info("agent.poll.in_progress", "run_id", runID, "status", runStatus)
				break endpoints
			}
		}

		if attempt < c.cfg.MaxPollAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.cfg.PollInterval):
			}
		}
	}

	return nil, &PollTimeoutError{
		Attempts:     c.cfg.MaxPollAttempts,
		Elapsed:      time.Since(start),
		DashboardURL: c.cfg.DashboardURL,
	}
}
