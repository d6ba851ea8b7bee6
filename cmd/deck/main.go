package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"ScalpDeck/internal/agent"
	"ScalpDeck/internal/config"
	"ScalpDeck/internal/deck"
	"ScalpDeck/internal/logging"
	"ScalpDeck/internal/notifier"
	"ScalpDeck/internal/pass"
	"ScalpDeck/internal/recorder"
	"ScalpDeck/internal/server"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "path to the YAML config (CONFIG_PATH overrides)")
	useMock := flag.Bool("mock", false, "use an in-memory agent instead of the remote service")
	flag.Parse()

	if v := os.Getenv("CONFIG_PATH"); v != "" {
		*cfgPath = v
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		zap.NewExample().Fatal("load config", zap.Error(err))
	}

	logger := logging.New(cfg.Log.Level)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("config validation", zap.Error(err))
	}
	logger.Info("ScalpDeck starting", zap.String("config", *cfgPath))

	// Init agent client
	var api agent.API
	if *useMock {
		api = agent.NewMock(150)
	} else {
		api = agent.NewHTTPClient(cfg.Agent.BaseURL, agent.Options{
			Timeout:       time.Duration(cfg.Agent.TimeoutSeconds) * time.Second,
			ProxyURL:      cfg.Proxy,
			RatePerSecond: cfg.Agent.RatePerSecond,
			RateBurst:     cfg.Agent.RateBurst,
		}, logger)
	}
	logger.Info("agent client ready", zap.String("client", api.Name()), zap.String("base_url", cfg.Agent.BaseURL))

	// Init recorder
	var (
		rec     recorder.Recorder = recorder.NewNoopRecorder()
		journal server.Journal
	)
	if cfg.Database.SQLitePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.SQLitePath), 0o755); err != nil {
			logger.Warn("create database directory", zap.Error(err))
		}
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger)
		if err != nil {
			logger.Warn("init sqlite recorder failed, using noop", zap.Error(err))
		} else {
			rec, journal = sr, sr
			defer sr.Close()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Init Telegram notifier
	var tn *notifier.TelegramNotifier
	var alerts deck.Notifier
	if cfg.Telegram.BotToken != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, logger)
		alerts = tn
	}

	d := deck.New(ctx, api, rec, alerts, deck.Options{
		Symbols:     cfg.Watchlist.Symbols,
		Period:      cfg.Market.Period,
		Interval:    cfg.Market.Interval,
		MarketEvery: time.Duration(cfg.Market.PollSeconds) * time.Second,
		StatusEvery: time.Duration(cfg.Status.PollSeconds) * time.Second,
		HealthEvery: time.Duration(cfg.Health.PollSeconds) * time.Second,
		RecordEvery: time.Duration(cfg.Status.RecordEverySeconds) * time.Second,

		AutoTradeInterval: cfg.AutoTrade.Interval,
		Strategy:          pass.New(cfg.Pass.Mode, cfg.Pass.Limit),
	}, logger)

	if *useMock {
		if _, err := d.Initialize(ctx, agent.InitRequest{Name: cfg.Agent.Name, InitialBalance: cfg.Agent.InitialBalance}); err != nil {
			logger.Warn("initialize mock agent", zap.Error(err))
		}
	}

	if err := d.Start(); err != nil {
		logger.Fatal("start deck", zap.Error(err))
	}

	if tn != nil {
		go tn.Run(ctx)
		go tn.StartPolling(ctx, d.HandleCommand)
		logger.Info("telegram polling started")
	}

	srv := server.New(d, journal, logger)
	if err := srv.ListenAndServe(ctx, cfg.Server.ListenAddr); err != nil {
		logger.Error("http server", zap.Error(err))
	}

	logger.Info("shutdown signal received, stopping...")
	d.Stop()
	logger.Info("ScalpDeck stopped")
}
