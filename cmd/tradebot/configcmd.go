package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

func cmdConfig(args []string) int {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	configPath := fs.String("config", "config/config.yaml", "path to config file")
	show := fs.Bool("show", true, "print the effective configuration")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		return 1
	}

	if !*show {
		fmt.Println("configuration OK")
		return 0
	}

	// Effective configuration: file values merged with env overrides
	// and defaults. Credentials are never printed.
	out, err := yaml.Marshal(cfg)
	if err != nil {
		slog.Error("failed to marshal config", "err", err)
		return 1
	}

	fmt.Fprintf(os.Stdout, "# effective configuration (%s)\n%s", *configPath, out)
	return 0
}
