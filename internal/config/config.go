package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/clearlane/invoice-extractor/internal/common"
)

// Config holds all application configuration
type Config struct {
	Agent     AgentConfig
	Server    ServerConfig
	Customers CustomersConfig
}

// AgentConfig holds the external extraction agent configuration
type AgentConfig struct {
	BaseURL         string
	SubmitEndpoint  string // optional override; derived from BaseURL when empty
	WorkflowID      string // when set, the submit payload omits agent_name
	AgentName       string
	APIKey          string
	DashboardURL    string
	SubmitTimeout   time.Duration
	PollTimeout     time.Duration // per status call
	PollInterval    time.Duration
	MaxPollAttempts int
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
	MaxUploadBytes int64
}

// CustomersConfig holds the customer-config store configuration
type CustomersConfig struct {
	Dir string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Agent: AgentConfig{
			BaseURL:         getEnv("AGENT_BASE_URL", ""),
			SubmitEndpoint:  getEnv("AGENT_SUBMIT_ENDPOINT", ""),
			WorkflowID:      getEnv("AGENT_WORKFLOW_ID", ""),
			AgentName:       getEnv("AGENT_NAME", "Unified PDF Parser"),
			APIKey:          getEnv("AGENT_API_KEY", ""),
			DashboardURL:    getEnv("AGENT_DASHBOARD_URL", ""),
			SubmitTimeout:   getEnvAsDuration("AGENT_SUBMIT_TIMEOUT", 60*time.Second),
			PollTimeout:     getEnvAsDuration("AGENT_POLL_TIMEOUT", 60*time.Second),
			PollInterval:    getEnvAsDuration("AGENT_POLL_INTERVAL", 5*time.Second),
			MaxPollAttempts: getEnvAsInt("AGENT_MAX_POLL_ATTEMPTS", 120),
		},
		Server: ServerConfig{
			Addr:           getEnv("HTTP_ADDR", ":8080"),
			AllowedOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
			MaxUploadBytes: int64(getEnvAsInt("MAX_UPLOAD_BYTES", 10*1024*1024)),
		},
		Customers: CustomersConfig{
			Dir: getEnv("CUSTOMER_CONFIG_DIR", "./configs/customers"),
		},
	}
}

// Validate validates the loaded configuration. It fails fast before any
// network call is attempted.
func (c *Config) Validate() error {
	if c.Agent.BaseURL == "" {
		return common.NewAppError("CONFIG_ERROR", "AGENT_BASE_URL is required", common.ErrConfiguration)
	}
	if c.Agent.APIKey == "" {
		return common.NewAppError("CONFIG_ERROR", "AGENT_API_KEY is required", common.ErrConfiguration)
	}
	if c.Agent.WorkflowID == "" && c.Agent.AgentName == "" {
		return common.NewAppError("CONFIG_ERROR", "either AGENT_WORKFLOW_ID or AGENT_NAME is required", common.ErrConfiguration)
	}
	if c.Agent.MaxPollAttempts <= 0 {
		return common.NewAppError("CONFIG_ERROR", "AGENT_MAX_POLL_ATTEMPTS must be positive", common.ErrConfiguration)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
