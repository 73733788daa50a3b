package config

import (
	"os"
	"strconv"
)

// Config holds application configuration from environment variables.
type Config struct {
	Port          int
	DBPath        string
	TranslocURL   string
	AlertsURL     string // GTFS-RT alerts feed; empty disables the alert fetcher
	ChatbaseKey   string // analytics API key; empty disables reporting
	WebhookSecret string // shared secret required on webhook requests; empty disables the check
	LogLevel      string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:          envInt("NEXTSTOP_PORT", 8080),
		DBPath:        envStr("NEXTSTOP_DB_PATH", "./nextstop.db"),
		TranslocURL:   envStr("NEXTSTOP_TRANSLOC_URL", "https://transloc-api-1-2.p.mashape.com"),
		AlertsURL:     envStr("NEXTSTOP_ALERTS_URL", ""),
		ChatbaseKey:   envStr("NEXTSTOP_CHATBASE_KEY", ""),
		WebhookSecret: envStr("NEXTSTOP_WEBHOOK_SECRET", ""),
		LogLevel:      envStr("NEXTSTOP_LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
