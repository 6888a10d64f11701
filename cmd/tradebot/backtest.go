package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alejandrodnm/tradebot/internal/adapters/binance"
	"github.com/alejandrodnm/tradebot/internal/adapters/notify"
	"github.com/alejandrodnm/tradebot/internal/adapters/storage"
	"github.com/alejandrodnm/tradebot/internal/adapters/synthetic"
	"github.com/alejandrodnm/tradebot/internal/backtest"
	"github.com/alejandrodnm/tradebot/internal/domain"
	"github.com/alejandrodnm/tradebot/internal/ports"
	"github.com/alejandrodnm/tradebot/internal/strategy"
)

func cmdBacktest(args []string) int {
	fs := flag.NewFlagSet("backtest", flag.ExitOnError)
	configPath := fs.String("config", "config/config.yaml", "path to config file")
	symbol := fs.String("symbol", "BTCUSDT", "trading pair to backtest")
	stratName := fs.String("strategy", "", "strategy name (defaults to the configured one)")
	fromStr := fs.String("from", "", "start date YYYY-MM-DD (required)")
	toStr := fs.String("to", "", "end date YYYY-MM-DD (defaults to today)")
	capital := fs.Float64("capital", 0, "initial capital (defaults to the configured one)")
	syntheticData := fs.Bool("synthetic", false, "use synthetic price data instead of the exchange")
	forceClose := fs.Bool("force-close", false, "close any open position at the final bar's price")
	asJSON := fs.Bool("json", false, "print the result as JSON")
	outPath := fs.String("out", "", "also write the result as JSON to this file")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		return 1
	}

	if *fromStr == "" {
		slog.Error("--from is required")
		return 1
	}
	from, to, err := parseDateRange(*fromStr, *toStr)
	if err != nil {
		slog.Error("invalid date range", "err", err)
		return 1
	}
	if to.IsZero() {
		to = time.Now().UTC()
	}

	name := *stratName
	if name == "" {
		name = cfg.Trading.Strategy
	}
	registry := strategy.NewRegistry()
	strat, ok := registry.Get(name)
	if !ok {
		slog.Error("unknown strategy", "strategy", name, "available", registry.Names())
		return 1
	}

	initialCapital := *capital
	if initialCapital <= 0 {
		initialCapital = cfg.Backtest.InitialCapital
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		return 1
	}
	defer store.Close()

	var data ports.HistoricalDataSource
	if *syntheticData || cfg.Backtest.SyntheticData {
		data = synthetic.NewSource(store)
	} else {
		data = binance.NewClient(cfg.API.BinanceBase, cfg.Backtest.Interval)
	}

	var opts []backtest.Option
	if *forceClose || cfg.Backtest.ForceCloseFinal {
		opts = append(opts, backtest.WithForceCloseFinal())
	}
	engine := backtest.New(data, opts...)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	res, err := engine.Run(ctx, strat, *symbol, from, to, initialCapital)
	if err != nil {
		var dataErr *domain.DataUnavailableError
		if errors.As(err, &dataErr) {
			slog.Error("no historical data for range", "symbol", dataErr.Symbol,
				"from", dataErr.From.Format("2006-01-02"), "to", dataErr.To.Format("2006-01-02"))
		} else {
			slog.Error("backtest failed", "err", err)
		}
		return 1
	}

	if *outPath != "" {
		if err := writeResultJSON(*outPath, res); err != nil {
			slog.Error("failed to write result file", "err", err, "path", *outPath)
			return 1
		}
		slog.Info("result saved", "path", *outPath)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			slog.Error("failed to encode result", "err", err)
			return 1
		}
		return 0
	}

	notify.NewConsole().PrintBacktest(res)
	return 0
}

func writeResultJSON(path string, res *backtest.Result) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
