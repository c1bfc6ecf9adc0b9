package config

import (
	"errors"
	"testing"
	"time"

	"github.com/clearlane/invoice-extractor/internal/common"
)

func validConfig() *Config {
	return &Config{
		Agent: AgentConfig{
			BaseURL:         "https://agent.example.com/api/v1/public/workflow",
			AgentName:       "Unified PDF Parser",
			APIKey:          "k",
			MaxPollAttempts: 120,
		},
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	breakages := []struct {
		name  string
		mutor func(*Config)
	}{
		{"missing base url", func(c *Config) { c.Agent.BaseURL = "" }},
		{"missing api key", func(c *Config) { c.Agent.APIKey = "" }},
		{"no workflow or agent name", func(c *Config) { c.Agent.WorkflowID, c.Agent.AgentName = "", "" }},
		{"non-positive attempts", func(c *Config) { c.Agent.MaxPollAttempts = 0 }},
	}
	for _, tc := range breakages {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutor(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !errors.Is(err, common.ErrConfiguration) {
				t.Errorf("expected configuration error, got %v", err)
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.Agent.AgentName != "Unified PDF Parser" {
		t.Errorf("agent name default: got %q", cfg.Agent.AgentName)
	}
	if cfg.Agent.PollInterval != 5*time.Second {
		t.Errorf("poll interval default: got %s", cfg.Agent.PollInterval)
	}
	if cfg.Agent.MaxPollAttempts != 120 {
		t.Errorf("max poll attempts default: got %d", cfg.Agent.MaxPollAttempts)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr default: got %q", cfg.Server.Addr)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("AGENT_MAX_POLL_ATTEMPTS", "7")
	t.Setenv("AGENT_POLL_INTERVAL", "250ms")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg := LoadConfig()
	if cfg.Agent.MaxPollAttempts != 7 {
		t.Errorf("max poll attempts: got %d", cfg.Agent.MaxPollAttempts)
	}
	if cfg.Agent.PollInterval != 250*time.Millisecond {
		t.Errorf("poll interval: got %s", cfg.Agent.PollInterval)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("cors origins: got %v", cfg.Server.AllowedOrigins)
	}
}
