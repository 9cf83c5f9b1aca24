// Package config provides server configuration loaded from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const logPrefix = "config:LoadConfig"

// Config holds agent-orchestrator configuration.
type Config struct {
	// COMMS: connect to standalone NATS at COMMSURL.
	COMMSURL  string `envconfig:"COMMS_URL" default:"nats://127.0.0.1:4222"`
	COMMSName string `envconfig:"SERVICE_NAME" default:"agent-orchestrator"`

	// Subject overrides (empty = package defaults)
	OrchestratorSubject  string `envconfig:"ORCHESTRATOR_SUBJECT"`
	DispatchEventSubject string `envconfig:"DISPATCH_EVENT_SUBJECT"`

	// Model access
	LLMAPIKey  string `envconfig:"LLM_API_KEY"`
	LLMBaseURL string `envconfig:"LLM_BASE_URL"`
	LLMModel   string `envconfig:"LLM_MODEL"`

	// Routing rules file (empty = built-in defaults)
	RulesFile string `envconfig:"ORCHESTRATOR_RULES_FILE"`

	// Artifact and game asset directory
	DataDir string `envconfig:"DATA_DIR" default:"data"`

	// Knowledge base persistence (empty = in-memory)
	KnowledgePath string `envconfig:"KNOWLEDGE_PATH"`

	// Timeouts
	RequestTimeout time.Duration `envconfig:"ORCHESTRATOR_REQUEST_TIMEOUT" default:"60s"`

	// Database (optional; empty disables the dispatch history archive)
	DatabaseURL   string `envconfig:"DATABASE_URL"`
	RunMigrations bool   `envconfig:"RUN_MIGRATIONS" default:"false"`

	// HTTP status endpoint (ORCHESTRATOR_HTTP_ADDR preferred, e.g. "0.0.0.0:8080")
	HTTPAddr           string        `envconfig:"ORCHESTRATOR_HTTP_ADDR"`
	HTTPPort           int           `envconfig:"HTTP_PORT" default:"8080"`
	HealthCheckTimeout time.Duration `envconfig:"HEALTH_CHECK_TIMEOUT" default:"5s"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ValidateForServe checks required config when running the orchestrator server.
func (c *Config) ValidateForServe() error {
	if c.COMMSURL == "" {
		return fmt.Errorf("%s - COMMS_URL is required for serve", logPrefix)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%s - ORCHESTRATOR_REQUEST_TIMEOUT must be positive", logPrefix)
	}
	if c.HealthCheckTimeout <= 0 {
		return fmt.Errorf("%s - HEALTH_CHECK_TIMEOUT must be positive", logPrefix)
	}
	return nil
}

// ValidateForDB checks required config when running DB-dependent commands (migrate, clear, ensure-db).
func (c *Config) ValidateForDB() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("%s - DATABASE_URL is required", logPrefix)
	}
	return nil
}
