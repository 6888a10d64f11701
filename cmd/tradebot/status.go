package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/alejandrodnm/tradebot/internal/adapters/notify"
	"github.com/alejandrodnm/tradebot/internal/adapters/storage"
)

func cmdStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", "config/config.yaml", "path to config file")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		return 1
	}

	running := false
	pid := 0
	if p, err := readPidFile(cfg.Trading.PidFile); err == nil && processAlive(p) {
		running = true
		pid = p
	} else if err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to read pidfile", "err", err, "path", cfg.Trading.PidFile)
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		return 1
	}
	defer store.Close()

	sum, err := store.Summary(context.Background())
	if err != nil {
		slog.Error("failed to read summary", "err", err)
		return 1
	}

	notify.NewConsole().PrintStatus(running, pid, sum)
	return 0
}
