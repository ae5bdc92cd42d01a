package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/rajcricket/prepbot/bot/app"
	"github.com/rajcricket/prepbot/core/buildinfo"
	coreconfig "github.com/rajcricket/prepbot/core/config"
	"github.com/rajcricket/prepbot/core/logger"
	"github.com/rajcricket/prepbot/core/telegram"
	"log/slog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	// Missing .env is fine; real deployments configure via environment.
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := coreconfig.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if err := logger.InitLogger(cfg); err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() {
		_ = logger.Shutdown()
	}()

	logger.Info(logger.Background(), "main", "boot",
		slog.String("version", buildinfo.Version),
		slog.String("commit", buildinfo.Commit),
	)

	application, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := application.Close(); closeErr != nil {
			logger.Warn(logger.Background(), "main", "close.fail",
				slog.String("err", closeErr.Error()),
			)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := telegram.RunTelegram(ctx, application.TelegramRunOptions()); err != nil {
		return fmt.Errorf("telegram: %w", err)
	}

	logger.Info(logger.Background(), "main", "shutdown")
	return nil
}
