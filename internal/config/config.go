package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds the environment configuration. The Notion integration token
// and the transactions database ID are required; the categories database
// defaults to the transactions database when unset, matching templates
// that keep both in one Notion database.
type Config struct {
	Port string
	Env  string

	NotionAPIKey     string
	TransactionsDBID string
	CategoriesDBID   string
	AccountsDBID     string

	AppUsername     string
	AppPasswordHash string
	SessionTTL      time.Duration
}

// Load reads configuration from the environment.
func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "3000"),
		Env:  getEnv("ENV", "development"),

		NotionAPIKey:     os.Getenv("NOTION_API_KEY"),
		TransactionsDBID: os.Getenv("NOTION_TRANSACTIONS_DB_ID"),
		AccountsDBID:     os.Getenv("NOTION_ACCOUNTS_DB_ID"),

		AppUsername:     os.Getenv("APP_USERNAME"),
		AppPasswordHash: os.Getenv("APP_PASSWORD_HASH"),
		SessionTTL:      getEnvDuration("SESSION_TTL", time.Hour),
	}
	cfg.CategoriesDBID = getEnv("NOTION_CATEGORIES_DB_ID", cfg.TransactionsDBID)

	return cfg
}

// Production reports whether the service runs with production hardening
// (secure cookies, generic error details).
func (c *Config) Production() bool {
	return c.Env == "production"
}

// Validate returns an error listing every missing required setting.
func (c *Config) Validate() error {
	var missing []string

	if c.NotionAPIKey == "" {
		missing = append(missing, "NOTION_API_KEY")
	}
	if c.TransactionsDBID == "" {
		missing = append(missing, "NOTION_TRANSACTIONS_DB_ID")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
