package bot

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the bot configuration loaded from environment variables.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,notEmpty"`

	// CommandRateLimit is how many commands per second a single user may run.
	CommandRateLimit float64 `env:"COMMAND_RATE_LIMIT" envDefault:"2"`
	CommandBurst     int     `env:"COMMAND_BURST"      envDefault:"5"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// LoadConfig loads configuration from a .env file, if present, and the environment.
// Returns an error if required fields are missing.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if cfg.CommandRateLimit <= 0 {
		return nil, fmt.Errorf("COMMAND_RATE_LIMIT must be positive, got %v", cfg.CommandRateLimit)
	}
	if cfg.CommandBurst < 1 {
		return nil, fmt.Errorf("COMMAND_BURST must be at least 1, got %d", cfg.CommandBurst)
	}
	if _, err := ParseLogLevel(cfg.LogLevel); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ParseLogLevel converts a LOG_LEVEL value into a slog.Level.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}
