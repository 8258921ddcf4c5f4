package config

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Setenv("NOTION_API_KEY", "secret_test")
	t.Setenv("NOTION_TRANSACTIONS_DB_ID", "tx-db")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("NOTION_CATEGORIES_DB_ID", "")

	cfg := Load()

	if cfg.Port != "3000" {
		t.Errorf("Port = %q, want %q", cfg.Port, "3000")
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q, want %q", cfg.Env, "development")
	}
	if cfg.SessionTTL != time.Hour {
		t.Errorf("SessionTTL = %v, want 1h", cfg.SessionTTL)
	}
	if cfg.Production() {
		t.Error("Production() = true in development")
	}
}

func TestLoad_CategoriesFallBackToTransactions(t *testing.T) {
	setRequired(t)
	t.Setenv("NOTION_CATEGORIES_DB_ID", "")

	cfg := Load()

	if cfg.CategoriesDBID != "tx-db" {
		t.Errorf("CategoriesDBID = %q, want the transactions database ID", cfg.CategoriesDBID)
	}
}

func TestLoad_SessionTTL(t *testing.T) {
	setRequired(t)

	t.Setenv("SESSION_TTL", "30m")
	if cfg := Load(); cfg.SessionTTL != 30*time.Minute {
		t.Errorf("SessionTTL = %v, want 30m", cfg.SessionTTL)
	}

	t.Setenv("SESSION_TTL", "not-a-duration")
	if cfg := Load(); cfg.SessionTTL != time.Hour {
		t.Errorf("SessionTTL = %v, want the 1h fallback on a bad value", cfg.SessionTTL)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want error for missing settings")
	}
	for _, key := range []string{"NOTION_API_KEY", "NOTION_TRANSACTIONS_DB_ID"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("Validate() error %q does not name %s", err, key)
		}
	}

	cfg.NotionAPIKey = "secret_test"
	cfg.TransactionsDBID = "tx-db"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestProduction(t *testing.T) {
	setRequired(t)
	t.Setenv("ENV", "production")

	if !Load().Production() {
		t.Error("Production() = false with ENV=production")
	}
}
