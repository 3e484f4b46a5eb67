package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iho/gospend/internal/infrastructure/config"
)

// chdirTemp runs the test from an empty directory so a developer's .env
// does not leak into assertions.
func chdirTemp(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("TIMEZONE", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.StorageBackend != config.BackendFile {
		t.Fatalf("expected default backend %q, got %q", config.BackendFile, cfg.StorageBackend)
	}

	if cfg.DataDir == "" {
		t.Fatalf("expected default data dir to be set")
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.RecurrenceInterval != time.Hour {
		t.Fatalf("expected default recurrence interval 1h, got %s", cfg.RecurrenceInterval)
	}
}

func TestLoadOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("STORAGE_BACKEND", "redis")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("STORE_KEY_PREFIX", "alice:")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("TIMEZONE", "Europe/Rome")
	t.Setenv("RECURRENCE_INTERVAL", "15m")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.StorageBackend != config.BackendRedis {
		t.Fatalf("expected redis backend, got %s", cfg.StorageBackend)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.StoreKeyPrefix != "alice:" {
		t.Fatalf("expected key prefix override, got %q", cfg.StoreKeyPrefix)
	}

	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.DatabaseTimeout != 45*time.Second {
		t.Fatalf("expected database timeout override, got %s", cfg.DatabaseTimeout)
	}

	if cfg.RecurrenceInterval != 15*time.Minute {
		t.Fatalf("expected recurrence interval override, got %s", cfg.RecurrenceInterval)
	}

	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("unexpected location error: %v", err)
	}
	if loc.String() != "Europe/Rome" {
		t.Fatalf("expected Europe/Rome, got %s", loc)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	t.Setenv("HTTP_PORT", "7070")
	t.Setenv("DATA_DIR", "")
	os.Unsetenv("DATA_DIR")

	content := "DATA_DIR=/var/lib/gospend\nHTTP_PORT=6060\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("DATA_DIR") })

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DataDir != "/var/lib/gospend" {
		t.Fatalf("expected DATA_DIR from .env, got %s", cfg.DataDir)
	}

	if cfg.HTTPPort != "7070" {
		t.Fatalf("expected environment to win over .env, got %s", cfg.HTTPPort)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	chdirTemp(t)
	t.Setenv("HTTP_READ_TIMEOUT", "not-a-duration")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	chdirTemp(t)
	t.Setenv("STORAGE_BACKEND", "tape")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestLoadRejectsInvalidTimezone(t *testing.T) {
	chdirTemp(t)
	t.Setenv("TIMEZONE", "Mars/Olympus")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for invalid timezone")
	}
}

func TestLoadRejectsNonPositiveInterval(t *testing.T) {
	chdirTemp(t)
	t.Setenv("RECURRENCE_INTERVAL", "0s")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for zero interval")
	}
}

func TestLoadRateLimit(t *testing.T) {
	chdirTemp(t)
	t.Setenv("RATE_LIMIT_RPS", "0")
	t.Setenv("RATE_LIMIT_BURST", "5")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}
	if cfg.RateLimitRPS != 0 || cfg.RateLimitBurst != 5 {
		t.Fatalf("unexpected rate limit %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	t.Setenv("RATE_LIMIT_RPS", "-1")
	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for negative rate")
	}
}
