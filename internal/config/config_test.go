package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/dune-bot-discord/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("DISCORD_APP_ID", "app")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "token", cfg.Discord.Token)
	assert.Equal(t, "app", cfg.Discord.AppID)
	assert.Empty(t, cfg.Redis.URL)
	assert.Empty(t, cfg.Storage.SQLitePath)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, 24*time.Hour, cfg.Sessions.TTL)
	assert.Equal(t, time.Hour, cfg.Sessions.CleanupInterval)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("DISCORD_APP_ID", "app")
	t.Setenv("DISCORD_GUILD_ID", "guild")
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("SQLITE_PATH", "/tmp/dune.db")
	t.Setenv("RULESET_PATH", "/etc/dune/rules.yaml")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("CLEANUP_INTERVAL", "5m")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "guild", cfg.Discord.GuildID)
	assert.Equal(t, "redis://localhost:6379/1", cfg.Redis.URL)
	assert.Equal(t, "/tmp/dune.db", cfg.Storage.SQLitePath)
	assert.Equal(t, "/etc/dune/rules.yaml", cfg.Rules.Path)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 2*time.Hour, cfg.Sessions.TTL)
	assert.Equal(t, 5*time.Minute, cfg.Sessions.CleanupInterval)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		t.Setenv("DISCORD_TOKEN", "")
		t.Setenv("DISCORD_APP_ID", "app")

		_, err := config.Load()
		assert.Error(t, err)
	})

	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("DISCORD_TOKEN", "token")
		t.Setenv("DISCORD_APP_ID", "app")
		t.Setenv("SESSION_TTL", "soon")

		_, err := config.Load()
		assert.Error(t, err)
	})

	t.Run("bad format", func(t *testing.T) {
		t.Setenv("DISCORD_TOKEN", "token")
		t.Setenv("DISCORD_APP_ID", "app")
		t.Setenv("LOG_FORMAT", "xml")

		_, err := config.Load()
		assert.Error(t, err)
	})
}
