package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sglre6355/tunebox/internal/bot"
	_ "github.com/sglre6355/tunebox/internal/modules/general"
	_ "github.com/sglre6355/tunebox/internal/modules/music_player"
)

// Overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("tunebox exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := bot.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// LoadConfig has already rejected unknown levels.
	level, _ := bot.ParseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting tunebox", "version", version, "log_level", level.String())

	b := bot.NewBot(cfg)
	b.LoadModules()
	if err := b.Start(); err != nil {
		return fmt.Errorf("failed to start bot: %w", err)
	}

	<-ctx.Done()
	slog.Info("received termination signal, shutting down")

	if err := b.Stop(); err != nil {
		return fmt.Errorf("failed to shutdown: %w", err)
	}
	slog.Info("completed bot shutdown")
	return nil
}
