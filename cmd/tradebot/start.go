package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/tradebot/internal/adapters/binance"
	"github.com/alejandrodnm/tradebot/internal/adapters/notify"
	"github.com/alejandrodnm/tradebot/internal/adapters/storage"
	"github.com/alejandrodnm/tradebot/internal/adapters/synthetic"
	"github.com/alejandrodnm/tradebot/internal/bot"
	"github.com/alejandrodnm/tradebot/internal/ports"
	"github.com/alejandrodnm/tradebot/internal/recorder"
	"github.com/alejandrodnm/tradebot/internal/strategy"
)

func cmdStart(args []string) int {
	fs := flag.NewFlagSet("start", flag.ExitOnError)
	configPath := fs.String("config", "config/config.yaml", "path to config file")
	once := fs.Bool("once", false, "run one trading cycle and exit")
	syntheticData := fs.Bool("synthetic", false, "use synthetic price data instead of the exchange")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		return 1
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		return 1
	}
	defer store.Close()

	registry := strategy.NewRegistry()
	strat, ok := registry.Get(cfg.Trading.Strategy)
	if !ok {
		slog.Error("unknown strategy", "strategy", cfg.Trading.Strategy, "available", registry.Names())
		return 1
	}

	var data ports.HistoricalDataSource
	if *syntheticData {
		data = synthetic.NewSource(store)
	} else {
		data = binance.NewClient(cfg.API.BinanceBase, cfg.Backtest.Interval)
	}

	botCfg := bot.Config{
		Symbols:        cfg.Trading.Symbols,
		Interval:       cfg.TradingInterval(),
		InitialCapital: cfg.Trading.InitialCapital,
		InvestmentPct:  cfg.Trading.InvestmentPct,
		LookbackDays:   cfg.Trading.LookbackDays,
		DryRun:         *once,
	}
	b := bot.New(botCfg, data, recorder.New(store), notify.NewConsole(), strat)

	if err := writePidFile(cfg.Trading.PidFile); err != nil {
		slog.Error("failed to write pidfile", "err", err, "path", cfg.Trading.PidFile)
		return 1
	}
	defer os.Remove(cfg.Trading.PidFile)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := b.Run(ctx); err != nil {
		slog.Error("bot exited with error", "err", err)
		return 1
	}

	slog.Info("tradebot stopped cleanly")
	return 0
}
