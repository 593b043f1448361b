package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	// Discord
	BotToken       string
	GuildID        string
	VerifiedRoleID string
	LogChannelID   string
	WebhookURL     string

	// Base URL of the external verification page. Empty disables the
	// link/button in join messages; the token is then presented for
	// manual entry.
	VerificationURL string

	AllowedOrigins []string // CORS allowed origins
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "5000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		BotToken:       strings.TrimSpace(getEnv("BOT_TOKEN", "")),
		GuildID:        extractID(getEnv("GUILD_ID", "")),
		VerifiedRoleID: extractID(getEnv("VERIFIED_ROLE_ID", "")),
		LogChannelID:   extractID(getEnv("LOG_CHANNEL_ID", "")),
		WebhookURL:     getEnv("DISCORD_WEBHOOK", ""),

		VerificationURL: strings.TrimSpace(getEnv("VERIFICATION_URL", "")),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

// extractID accepts either a raw Discord snowflake or a URL ending in one
// (IDs are often pasted as channel/role links) and returns the snowflake,
// or "" when unset or unparsable.
func extractID(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || value == "0" {
		return ""
	}
	if i := strings.LastIndex(value, "/"); i >= 0 {
		value = value[i+1:]
	}
	if _, err := strconv.ParseUint(value, 10, 64); err != nil {
		return ""
	}
	return value
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
