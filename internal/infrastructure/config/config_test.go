package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iho/splitledger/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.StorageDriver != config.DriverPostgres {
		t.Fatalf("expected postgres driver by default, got %s", cfg.StorageDriver)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.LedgerMaxRetries != 3 {
		t.Fatalf("expected 3 ledger retries, got %d", cfg.LedgerMaxRetries)
	}

	if cfg.BalanceCacheTTL != 30*time.Second {
		t.Fatalf("expected 30s balance cache TTL, got %s", cfg.BalanceCacheTTL)
	}

	if cfg.DatabaseLockTimeout != 2*time.Second {
		t.Fatalf("expected 2s lock timeout, got %s", cfg.DatabaseLockTimeout)
	}

	if cfg.OutboxRetention != 7*24*time.Hour {
		t.Fatalf("expected one week outbox retention, got %s", cfg.OutboxRetention)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/ledger.db")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("JWT_SECRET", "top-secret")
	t.Setenv("REDIS_ENABLED", "false")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.StorageDriver != config.DriverSQLite || cfg.SQLitePath != "/tmp/ledger.db" {
		t.Fatalf("expected sqlite override, got %s %s", cfg.StorageDriver, cfg.SQLitePath)
	}

	if cfg.RedisURL != "redis://example" || cfg.RedisEnabled {
		t.Fatalf("expected redis overrides, got %s enabled=%v", cfg.RedisURL, cfg.RedisEnabled)
	}

	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.DatabaseTimeout != 45*time.Second {
		t.Fatalf("expected database timeout override, got %s", cfg.DatabaseTimeout)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HTTP_PORT", "7070")

	content := "JWT_SECRET=from-file\nHTTP_PORT=6060\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}

	// godotenv sets JWT_SECRET for the process; restore it afterwards.
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.JWTSecret != "from-file" {
		t.Fatalf("expected secret from .env, got %q", cfg.JWTSecret)
	}

	if cfg.HTTPPort != "7070" {
		t.Fatalf("expected environment to win over .env, got %s", cfg.HTTPPort)
	}
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORAGE_DRIVER", "mongo")
	if _, err := config.Load(); err == nil {
		t.Fatal("expected unknown driver to be rejected")
	}

	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("JWT_SECRET", "")
	if _, err := config.Load(); err == nil {
		t.Fatal("expected missing JWT secret to be rejected")
	}
}
