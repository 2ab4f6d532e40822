package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DISCORD_TOKEN", "test-token")
	t.Setenv("DATABASE_URL", "postgres://localhost/reminders_test")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-token", cfg.DiscordToken)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 60*time.Second, cfg.TickInterval)
	assert.Equal(t, 5*time.Second, cfg.DeleteGrace)
	assert.Empty(t, cfg.AuthorizedRoleIDs)
	assert.Empty(t, cfg.DefaultChannelIDs)
}

func TestLoadMissingToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/reminders_test")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DISCORD_TOKEN")
}

func TestLoadMissingDatabaseURL(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "test-token")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadIDLists(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AUTHORIZED_ROLE_IDS", "r1, r2,,r3")
	t.Setenv("DEFAULT_CHANNEL_IDS", "c1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2", "r3"}, cfg.AuthorizedRoleIDs)
	assert.Equal(t, []string{"c1"}, cfg.DefaultChannelIDs)
}

func TestLoadDurations(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TICK_INTERVAL", "30")
	t.Setenv("DELETE_GRACE", "10")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.TickInterval)
	assert.Equal(t, 10*time.Second, cfg.DeleteGrace)
}

func TestLoadBadDuration(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TICK_INTERVAL", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TICK_INTERVAL")
}
