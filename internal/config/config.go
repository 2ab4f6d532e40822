package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	DiscordToken string
	DatabaseURL  string
	GiphyAPIKey  string
	LogLevel     string
	Port         string

	// DefaultGIFURL is the image used for reminders that were saved
	// without one.
	DefaultGIFURL string

	// AuthorizedRoleIDs are role IDs that may manage reminders in
	// addition to guild administrators.
	AuthorizedRoleIDs []string

	// DefaultChannelIDs restricts which channels the setup wizard offers
	// as delivery destinations. Empty means every channel the bot can
	// post to.
	DefaultChannelIDs []string

	// TickInterval is how often the scheduler evaluates stored reminders.
	TickInterval time.Duration

	// DeleteGrace is how long the scheduler waits after a one-time
	// reminder fires before deleting it, so delivery can complete first.
	DeleteGrace time.Duration
}

// Load loads configuration from the environment. A .env file is read first
// when present, matching local development setups.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:          getEnvOrDefault("LOG_LEVEL", "info"),
		Port:              getEnvOrDefault("PORT", "8080"),
		DefaultGIFURL:     os.Getenv("REMINDER_GIF_URL"),
		GiphyAPIKey:       os.Getenv("GIPHY_API_KEY"),
		AuthorizedRoleIDs: splitIDs(os.Getenv("AUTHORIZED_ROLE_IDS")),
		DefaultChannelIDs: splitIDs(os.Getenv("DEFAULT_CHANNEL_IDS")),
	}

	if cfg.DiscordToken = os.Getenv("DISCORD_TOKEN"); cfg.DiscordToken == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN environment variable is required")
	}

	if cfg.DatabaseURL = os.Getenv("DATABASE_URL"); cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	var err error
	if cfg.TickInterval, err = getDurationOrDefault("TICK_INTERVAL", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.DeleteGrace, err = getDurationOrDefault("DELETE_GRACE", 5*time.Second); err != nil {
		return nil, err
	}

	return cfg, nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationOrDefault parses an environment variable given in whole
// seconds, returning the default when unset.
func getDurationOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return 0, fmt.Errorf("%s must be a positive number of seconds, got %q", key, raw)
	}
	return time.Duration(seconds) * time.Second, nil
}

// splitIDs parses a comma-separated ID list, skipping empty entries.
func splitIDs(raw string) []string {
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
