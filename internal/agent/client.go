package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/clearlane/invoice-extractor/internal/config"
)

// Client talks to the external extraction agent. It is safe for concurrent
// use; all state is read-only after construction.
type Client struct {
	cfg  config.AgentConfig
	http *http.Client
	log  *slog.Logger
}

func NewClient(cfg config.AgentConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SubmitTimeout <= 0 {
		cfg.SubmitTimeout = 60 * time.Second
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 60 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.MaxPollAttempts <= 0 {
		cfg.MaxPollAttempts = 120
	}
	return &Client{
		cfg: cfg,
		// No per-client timeout; each call is bounded by its request context.
		http: &http.Client{},
		log:  logger,
	}
}

// postJSON sends a JSON body and returns the raw response plus status code.
// Transport errors are returned as-is so callers can classify them.
func (c *Client) postJSON(ctx context.Context, url string, body any, timeout time.Duration) ([]byte, int, error) {
	bs, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bs))
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("agent.http.send_error", "url", url, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, 0, err
	}
	defer closeBody(resp.Body, c.log)

	raw, _ := io.ReadAll(resp.Body)
	c.log.Info("agent.http.response",
		"url", url,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return raw, resp.StatusCode, nil
}

func (c *Client) getJSON(ctx context.Context, url string, timeout time.Duration) ([]byte, int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer closeBody(resp.Body, c.log)

	raw, _ := io.ReadAll(resp.Body)
	return raw, resp.StatusCode, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "*/*")
}

func closeBody(body io.ReadCloser, log *slog.Logger) {
	if err := body.Close(); err != nil {
		log.Warn("agent.http.body_close_error", "error", err)
	}
}

// upstreamMessage digs the human-readable message out of an error body. The
// agent is not consistent about which key it uses.
func upstreamMessage(raw []byte, fallback string) string {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err == nil {
		for _, k := range []string{"message", "error", "error_msg"} {
			if s, ok := m[k].(string); ok && s != "" {
				return s
			}
		}
	}
	return fallback
}
