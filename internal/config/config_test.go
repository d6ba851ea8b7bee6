package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.Agent.BaseURL)
	assert.Equal(t, DefaultWatchlist, cfg.Watchlist.Symbols)
	assert.Equal(t, 30, cfg.Market.PollSeconds)
	assert.Equal(t, 1, cfg.Status.PollSeconds)
	assert.Equal(t, 10, cfg.Health.PollSeconds)
	assert.Equal(t, "1m", cfg.AutoTrade.Interval)
	assert.Equal(t, "sequential", cfg.Pass.Mode)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
agent:
  base_url: http://agent:9000
market:
  interval: 5m
  poll_seconds: 15
pass:
  mode: bounded
  limit: 2
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))
	t.Setenv("WATCHLIST", "TSLA,NVDA")
	t.Setenv("AGENT_API_KEY", "secret")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://agent:9000", cfg.Agent.BaseURL)
	assert.Equal(t, "secret", cfg.Agent.APIKey)
	assert.Equal(t, []string{"TSLA", "NVDA"}, cfg.Watchlist.Symbols)
	assert.Equal(t, 15, cfg.Market.PollSeconds)
	assert.Equal(t, "5m", cfg.AutoTrade.Interval, "autotrade interval follows the market interval")
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	cfg.Pass.Mode = "parallel"
	assert.Error(t, cfg.Validate())

	cfg.Pass.Mode = "sequential"
	cfg.Telegram.BotToken = "token"
	assert.Error(t, cfg.Validate(), "chat id is required with a token")

	cfg.Telegram.ChatID = "42"
	assert.NoError(t, cfg.Validate())
}
