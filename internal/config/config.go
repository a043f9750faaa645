package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all configuration for the application
type Config struct {
	Discord  DiscordConfig
	Redis    RedisConfig
	Storage  StorageConfig
	Rules    RulesConfig
	Logging  LoggingConfig
	Sessions SessionConfig
}

// DiscordConfig holds Discord-specific configuration
type DiscordConfig struct {
	Token   string `env:"DISCORD_TOKEN,required,notEmpty"`
	AppID   string `env:"DISCORD_APP_ID,required,notEmpty"`
	GuildID string `env:"DISCORD_GUILD_ID"` // Optional: for guild-specific commands
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	// URL is empty when the bot should run without Redis
	URL string `env:"REDIS_URL"`
}

// StorageConfig selects the SQL character store
type StorageConfig struct {
	SQLitePath string `env:"SQLITE_PATH"`
}

// RulesConfig points at a ruleset file replacing the embedded default
type RulesConfig struct {
	Path string `env:"RULESET_PATH"`
}

// LoggingConfig holds zap settings
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"console"`
}

// SessionConfig controls creation session expiry
type SessionConfig struct {
	TTL             time.Duration `env:"SESSION_TTL"      envDefault:"24h"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"1h"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.Sessions.TTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.Sessions.TTL)
	}
	if cfg.Sessions.CleanupInterval <= 0 {
		return nil, fmt.Errorf("CLEANUP_INTERVAL must be positive, got %s", cfg.Sessions.CleanupInterval)
	}
	switch cfg.Logging.Format {
	case "json", "console":
	default:
		return nil, fmt.Errorf("LOG_FORMAT must be json or console, got %q", cfg.Logging.Format)
	}

	return cfg, nil
}
