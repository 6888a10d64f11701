package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alejandrodnm/tradebot/config"
)

const usage = `tradebot — cryptocurrency paper trading bot

Usage:
  tradebot <command> [flags]

Commands:
  start     run the paper trading loop until stopped
  stop      signal a running bot to shut down
  status    show whether the bot is running and its performance
  config    show the effective configuration
  report    print the performance report from recorded trades
  backtest  replay a strategy over historical bars

Run 'tradebot <command> -h' for command flags.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	var code int
	switch os.Args[1] {
	case "start":
		code = cmdStart(os.Args[2:])
	case "stop":
		code = cmdStop(os.Args[2:])
	case "status":
		code = cmdStatus(os.Args[2:])
	case "config":
		code = cmdConfig(os.Args[2:])
	case "report":
		code = cmdReport(os.Args[2:])
	case "backtest":
		code = cmdBacktest(os.Args[2:])
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		code = 1
	}
	os.Exit(code)
}

// loadConfig loads the config file and installs the global logger.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	setupLogger(cfg.Log)
	return cfg, nil
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
