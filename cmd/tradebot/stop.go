package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"syscall"
)

func cmdStop(args []string) int {
	fs := flag.NewFlagSet("stop", flag.ExitOnError)
	configPath := fs.String("config", "config/config.yaml", "path to config file")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		return 1
	}

	pid, err := readPidFile(cfg.Trading.PidFile)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("tradebot is not running")
			return 0
		}
		slog.Error("failed to read pidfile", "err", err, "path", cfg.Trading.PidFile)
		return 1
	}

	if !processAlive(pid) {
		fmt.Println("tradebot is not running (stale pidfile)")
		os.Remove(cfg.Trading.PidFile)
		return 0
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		slog.Error("failed to find process", "err", err, "pid", pid)
		return 1
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		slog.Error("failed to signal process", "err", err, "pid", pid)
		return 1
	}

	fmt.Printf("sent SIGTERM to tradebot (pid %d)\n", pid)
	return 0
}
