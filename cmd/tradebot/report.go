package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/alejandrodnm/tradebot/internal/adapters/notify"
	"github.com/alejandrodnm/tradebot/internal/adapters/storage"
	"github.com/alejandrodnm/tradebot/internal/recorder"
)

func cmdReport(args []string) int {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	configPath := fs.String("config", "config/config.yaml", "path to config file")
	fromStr := fs.String("from", "", "start date YYYY-MM-DD (inclusive)")
	toStr := fs.String("to", "", "end date YYYY-MM-DD (inclusive)")
	asJSON := fs.Bool("json", false, "print the report as JSON")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		return 1
	}

	from, to, err := parseDateRange(*fromStr, *toStr)
	if err != nil {
		slog.Error("invalid date range", "err", err)
		return 1
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		return 1
	}
	defer store.Close()

	rep, err := recorder.New(store).Report(context.Background(), from, to)
	if err != nil {
		slog.Error("failed to build report", "err", err)
		return 1
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			slog.Error("failed to encode report", "err", err)
			return 1
		}
		return 0
	}

	notify.NewConsole().PrintReport(rep)
	return 0
}

// parseDateRange parses optional YYYY-MM-DD bounds. The end date is
// extended to the end of that day so it stays inclusive.
func parseDateRange(fromStr, toStr string) (from, to time.Time, err error) {
	if fromStr != "" {
		from, err = time.Parse("2006-01-02", fromStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse --from: %w", err)
		}
	}
	if toStr != "" {
		to, err = time.Parse("2006-01-02", toStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse --to: %w", err)
		}
		to = to.AddDate(0, 0, 1).Add(-time.Millisecond)
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("--to %s is before --from %s", toStr, fromStr)
	}
	return from, to, nil
}
