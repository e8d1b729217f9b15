// Package config loads service configuration from the process environment.
// A .env file in the working directory is honored for local development.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Snapshot backend names accepted in PLANNER_SNAPSHOT_BACKEND.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config captures environment driven configuration values for the planner
// service.
type Config struct {
	HTTPAddr           string `env:"PLANNER_HTTP_ADDR" envDefault:":8080"`
	ShareBaseURL       string `env:"PLANNER_SHARE_BASE_URL" envDefault:"http://localhost:8080"`
	SnapshotBackend    string `env:"PLANNER_SNAPSHOT_BACKEND" envDefault:"sqlite"`
	SQLitePath         string `env:"PLANNER_SQLITE_PATH" envDefault:"planner.db"`
	PostgresDSN        string `env:"PLANNER_POSTGRES_DSN"`
	OperatorKeyHash    string `env:"PLANNER_OPERATOR_KEY_HASH"`
	DevMode            bool   `env:"PLANNER_DEV_MODE" envDefault:"false"`
	ChatWebhookURL     string `env:"PLANNER_CHAT_WEBHOOK_URL"`
	CalendarWebhookURL string `env:"PLANNER_CALENDAR_WEBHOOK_URL"`
	AMQPURL            string `env:"PLANNER_AMQP_URL"`
	AMQPExchange       string `env:"PLANNER_AMQP_EXCHANGE" envDefault:"planner.lifecycle"`
	LogLevel           string `env:"PLANNER_LOG_LEVEL" envDefault:"info"`
}

// Load parses configuration values from the current process environment,
// after reading a .env file when one exists. Defaults apply for optional
// fields; required values for the selected snapshot backend are validated.
func Load() (Config, error) {
	// Missing .env files are expected outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.HTTPAddr = strings.TrimSpace(c.HTTPAddr)
	c.ShareBaseURL = strings.TrimSpace(c.ShareBaseURL)
	c.SnapshotBackend = strings.ToLower(strings.TrimSpace(c.SnapshotBackend))
	c.SQLitePath = strings.TrimSpace(c.SQLitePath)
	c.PostgresDSN = strings.TrimSpace(c.PostgresDSN)
	c.OperatorKeyHash = strings.TrimSpace(c.OperatorKeyHash)
	c.LogLevel = strings.TrimSpace(c.LogLevel)

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if c.HTTPAddr == "" {
		invalid = append(invalid, "PLANNER_HTTP_ADDR")
	}
	if c.ShareBaseURL == "" {
		invalid = append(invalid, "PLANNER_SHARE_BASE_URL")
	}

	switch c.SnapshotBackend {
	case BackendSQLite:
		if c.SQLitePath == "" {
			missing = append(missing, "PLANNER_SQLITE_PATH")
		}
	case BackendPostgres:
		if c.PostgresDSN == "" {
			missing = append(missing, "PLANNER_POSTGRES_DSN")
		}
	default:
		invalid = append(invalid, "PLANNER_SNAPSHOT_BACKEND")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return nil
}
