package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "localhost:6379", cfg.RedisAddr)
	require.Equal(t, "claude-3-5-sonnet-20241022", cfg.Anthropic.Model)
	require.Equal(t, "https://api.anthropic.com", cfg.Anthropic.BaseURL)
	require.Equal(t, 60000, cfg.Anthropic.TimeoutMS)
	require.Equal(t, "localhost:1025", cfg.Email.SMTPAddr)
	require.False(t, cfg.HasAnthropicKey())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("ANTHROPIC_MODEL", "claude-3-haiku-20240307")
	t.Setenv("EMAIL_FROM", "coach@flexflow.example")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "9999", cfg.Port)
	require.Equal(t, "redis:6380", cfg.RedisAddr)
	require.Equal(t, "claude-3-haiku-20240307", cfg.Anthropic.Model)
	require.Equal(t, "coach@flexflow.example", cfg.Email.From)
	require.True(t, cfg.HasAnthropicKey())
}
