package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Cadence-Arcade/rankcore/app"
	"github.com/Cadence-Arcade/rankcore/config"
	"github.com/Cadence-Arcade/rankcore/internal/attr"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		logger.Error("Failed to load config", attr.Error(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize application", attr.Error(err))
		os.Exit(1)
	}

	runErr := application.Run(ctx)

	if err := application.Close(); err != nil {
		logger.Error("Failed to shut down cleanly", attr.Error(err))
	}
	if runErr != nil && ctx.Err() == nil {
		logger.Error("Application stopped with error", attr.Error(runErr))
		os.Exit(1)
	}

	logger.Info("Application shut down gracefully")
}
