package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Tally"`
	}

	Storage struct {
		// Backend is one of memory, file or sqlite.
		Backend string `envconfig:"STORAGE_BACKEND" default:"sqlite"`
		Path    string `envconfig:"STORAGE_PATH" default:"tally.db"`
		Key     string `envconfig:"STORAGE_KEY" default:"expenses"`
	}

	Expense struct {
		RequireNote bool `envconfig:"REQUIRE_NOTE" default:"false"`
	}

	Server struct {
		Host    string        `envconfig:"SERVER_HOST" default:"127.0.0.1"`
		Port    int           `envconfig:"PORT" default:"8080"`
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
	}

	Log struct {
		Level string `envconfig:"LOG_LEVEL" default:"info"`
	}

	TUI struct {
		LogFile  string `envconfig:"TUI_LOG_FILE"`
		Currency string `envconfig:"CURRENCY" default:"€"`
		Language string `envconfig:"LANGUAGE" default:"en"`
	}
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// SlogLevel maps Log.Level to a slog level. Validate rejects unknown names.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}

	return level
}

func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "memory", "file", "sqlite":
	default:
		return fmt.Errorf("invalid STORAGE_BACKEND %q: want memory, file or sqlite", c.Storage.Backend)
	}

	if c.Storage.Backend != "memory" && strings.TrimSpace(c.Storage.Path) == "" {
		return fmt.Errorf("STORAGE_PATH is required for the %s backend", c.Storage.Backend)
	}

	if strings.TrimSpace(c.Storage.Key) == "" {
		return fmt.Errorf("STORAGE_KEY must not be empty")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Server.Port)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", c.Log.Level, err)
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
