package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"mindreel/relevance/internal/config"
	"mindreel/relevance/internal/logging"
	"mindreel/relevance/internal/pkg/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load configuration")
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Format = cfg.Logging.Format
	logCfg.Caller = cfg.Logging.Caller
	logging.Init(logCfg)

	if err := app.New(cfg).Run(ctx); err != nil {
		logging.Error().Err(err).Msg("relevance service stopped")
		stop()
		os.Exit(1)
	}
}
