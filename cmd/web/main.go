package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"pollscope/internal/app"
	"pollscope/internal/config"
	"pollscope/internal/infrastructure"
)

func main() {
	envFile := flag.String("env", ".env", "dotenv file loaded before the environment is read")
	configFile := flag.String("config", "", "YAML config file (default: "+config.EnvPrefix+"_CONFIG_FILE or ./config.yaml)")
	flag.Parse()

	if err := config.LoadEnvFiles(*envFile); err != nil {
		slog.Error("Failed to load env file", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var (
		cfg *config.Config
		err error
	)
	if *configFile != "" {
		cfg, err = config.LoadFrom(*configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	application, err := app.NewApplication(cfg)
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := infrastructure.EnsureTraceID(context.Background())
	if err := application.Run(ctx); err != nil {
		infrastructure.LoggerWithContext(ctx).Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
