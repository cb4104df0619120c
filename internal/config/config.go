package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage drivers accepted by STORAGE_DRIVER
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// MinDraftTTL is the shortest accepted DRAFT_TTL
const MinDraftTTL = time.Second

// Config holds all configuration for the application
type Config struct {
	Discord DiscordConfig
	Storage StorageConfig
	Redis   RedisConfig
	DND5E   DND5EConfig
	Log     LogConfig

	CatalogPath string        `env:"CATALOG_PATH"`
	DraftTTL    time.Duration `env:"DRAFT_TTL" envDefault:"30m"`
}

// DiscordConfig holds Discord-specific configuration
type DiscordConfig struct {
	Token   string `env:"DISCORD_TOKEN"`
	AppID   string `env:"DISCORD_APP_ID"`
	GuildID string `env:"DISCORD_GUILD_ID"` // Optional: for guild-specific commands
}

// StorageConfig selects and locates the creature repository
type StorageConfig struct {
	Driver      string `env:"STORAGE_DRIVER" envDefault:"memory"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"creatures.db"`
	DatabaseURL string `env:"DATABASE_URL"`
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	URL string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
}

// DND5EConfig holds D&D 5e API configuration
type DND5EConfig struct {
	Enabled bool `env:"DND5E_ENABLED" envDefault:"true"`
}

// LogConfig controls the default slog handler
type LogConfig struct {
	Format string `env:"LOG_FORMAT" envDefault:"text"`
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	if err := cfg.Storage.Validate(); err != nil {
		return nil, err
	}
	if cfg.DraftTTL < MinDraftTTL {
		return nil, fmt.Errorf("DRAFT_TTL must be at least %s, got %s", MinDraftTTL, cfg.DraftTTL)
	}

	return cfg, nil
}

// Validate checks the Discord credentials required by the bot
func (c DiscordConfig) Validate() error {
	if c.Token == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	if c.AppID == "" {
		return fmt.Errorf("DISCORD_APP_ID is required")
	}
	return nil
}

// Validate checks that the selected driver has what it needs
func (c StorageConfig) Validate() error {
	switch c.Driver {
	case DriverMemory, DriverRedis:
		return nil
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite driver")
		}
		return nil
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
		return nil
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Driver)
	}
}

// SlogLevel parses LOG_LEVEL, falling back to info
func (c LogConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}
