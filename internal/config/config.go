// Package config handles application configuration from environment variables
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"postgres://localhost:5432/flexflow?sslmode=disable"`
	RedisAddr   string `env:"REDIS_ADDR" envDefault:"localhost:6379"`

	Anthropic AnthropicConfig
	Email     EmailConfig
}

// AnthropicConfig holds the LLM provider settings. An empty APIKey is
// valid: the AI client then serves deterministic mock responses so the
// pipeline stays exercisable without live credentials.
type AnthropicConfig struct {
	APIKey    string `env:"ANTHROPIC_API_KEY"`
	Model     string `env:"ANTHROPIC_MODEL" envDefault:"claude-3-5-sonnet-20241022"`
	BaseURL   string `env:"ANTHROPIC_BASE_URL" envDefault:"https://api.anthropic.com"`
	TimeoutMS int    `env:"ANTHROPIC_TIMEOUT_MS" envDefault:"60000"`
}

// EmailConfig holds SMTP settings for plan-ready notifications and
// daily reminders.
type EmailConfig struct {
	SMTPAddr string `env:"SMTP_ADDR" envDefault:"localhost:1025"`
	From     string `env:"EMAIL_FROM" envDefault:"no-reply@flexflow.local"`
}

// Load reads configuration from environment variables
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env config: %w", err)
	}
	return cfg, nil
}

// HasAnthropicKey returns true if live LLM credentials are configured.
func (c Config) HasAnthropicKey() bool {
	return c.Anthropic.APIKey != ""
}
