package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultWatchlist seeds a fresh session.
var DefaultWatchlist = []string{"AAPL", "GOOGL", "MSFT", "AMZN", "TSLA", "NVDA", "META"}

// Config holds all application configuration.
type Config struct {
	Agent struct {
		BaseURL        string  `yaml:"base_url"`
		APIKey         string  `yaml:"api_key"`
		Name           string  `yaml:"name"`
		InitialBalance float64 `yaml:"initial_balance"`
		TimeoutSeconds int     `yaml:"timeout_seconds"`
		RatePerSecond  float64 `yaml:"rate_per_second"`
		RateBurst      int     `yaml:"rate_burst"`
	} `yaml:"agent"`
	Watchlist struct {
		Symbols []string `yaml:"symbols"`
	} `yaml:"watchlist"`
	Market struct {
		Period      string `yaml:"period"`
		Interval    string `yaml:"interval"`
		PollSeconds int    `yaml:"poll_seconds"`
	} `yaml:"market"`
	Status struct {
		PollSeconds        int `yaml:"poll_seconds"`
		RecordEverySeconds int `yaml:"record_every_seconds"`
	} `yaml:"status"`
	Health struct {
		PollSeconds int `yaml:"poll_seconds"`
	} `yaml:"health"`
	AutoTrade struct {
		Interval string `yaml:"interval"`
	} `yaml:"autotrade"`
	Pass struct {
		Mode  string `yaml:"mode"`
		Limit int    `yaml:"limit"`
	} `yaml:"pass"`
	Server struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"server"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("AGENT_BASE_URL"); v != "" {
		cfg.Agent.BaseURL = v
	}
	if v := os.Getenv("AGENT_API_KEY"); v != "" {
		cfg.Agent.APIKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Server.ListenAddr = v
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		cfg.Watchlist.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("AUTOTRADE_INTERVAL"); v != "" {
		cfg.AutoTrade.Interval = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	// Defaults
	if cfg.Agent.BaseURL == "" {
		cfg.Agent.BaseURL = "http://localhost:8000"
	}
	if cfg.Agent.Name == "" {
		cfg.Agent.Name = "ScalpDeck"
	}
	if cfg.Agent.InitialBalance == 0 {
		cfg.Agent.InitialBalance = 10000
	}
	if cfg.Agent.TimeoutSeconds == 0 {
		cfg.Agent.TimeoutSeconds = 30
	}
	if cfg.Agent.RatePerSecond == 0 {
		cfg.Agent.RatePerSecond = 10
	}
	if cfg.Agent.RateBurst == 0 {
		cfg.Agent.RateBurst = 5
	}
	if len(cfg.Watchlist.Symbols) == 0 {
		cfg.Watchlist.Symbols = append([]string(nil), DefaultWatchlist...)
	}
	if cfg.Market.Period == "" {
		cfg.Market.Period = "1d"
	}
	if cfg.Market.Interval == "" {
		cfg.Market.Interval = "1m"
	}
	if cfg.Market.PollSeconds == 0 {
		cfg.Market.PollSeconds = 30
	}
	if cfg.Status.PollSeconds == 0 {
		cfg.Status.PollSeconds = 1
	}
	if cfg.Status.RecordEverySeconds == 0 {
		cfg.Status.RecordEverySeconds = 60
	}
	if cfg.Health.PollSeconds == 0 {
		cfg.Health.PollSeconds = 10
	}
	if cfg.AutoTrade.Interval == "" {
		cfg.AutoTrade.Interval = cfg.Market.Interval
	}
	if cfg.Pass.Mode == "" {
		cfg.Pass.Mode = "sequential"
	}
	if cfg.Pass.Limit == 0 {
		cfg.Pass.Limit = 4
	}
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8080"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/scalpdeck.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Agent.BaseURL == "" {
		return fmt.Errorf("agent.base_url is required")
	}
	if c.Agent.RatePerSecond < 0 {
		return fmt.Errorf("agent.rate_per_second must not be negative")
	}
	if c.Market.PollSeconds <= 0 || c.Status.PollSeconds <= 0 || c.Health.PollSeconds <= 0 {
		return fmt.Errorf("poll_seconds must be positive")
	}
	switch c.Pass.Mode {
	case "sequential":
	case "bounded":
		if c.Pass.Limit <= 0 {
			return fmt.Errorf("pass.limit must be positive in bounded mode")
		}
	default:
		return fmt.Errorf("pass.mode must be sequential or bounded, got %q", c.Pass.Mode)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}
