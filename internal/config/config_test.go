package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tgurley/smartline/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ODDS_API_KEY", "test_key")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ListenAddr != ":8080" {
		t.Errorf("expected default listen addr :8080, got %s", cfg.ListenAddr)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("expected default redis addr, got %s", cfg.Redis.Addr)
	}
	if cfg.Odds.CacheTTL.Std() != time.Hour {
		t.Errorf("expected default cache TTL 1h, got %v", cfg.Odds.CacheTTL)
	}
	if !cfg.Weather.Enabled {
		t.Error("weather enrichment should default on")
	}
	if cfg.Alerts.MovementThresholdPct != 5.0 {
		t.Errorf("expected default movement threshold 5, got %f", cfg.Alerts.MovementThresholdPct)
	}
}

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("ODDS_API_KEY", "")

	if _, err := config.Load(""); err == nil {
		t.Error("expected error without an odds API key")
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	t.Setenv("ODDS_API_KEY", "test_key")

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
listen_addr: ":9090"
redis:
  addr: "redis.internal:6379"
  db: 2
odds:
  cache_ttl: 30m
  allowed_books: [draftkings, fanduel]
alerts:
  movement_threshold_pct: 8.5
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ListenAddr != ":9090" {
		t.Errorf("listen addr = %s, want :9090", cfg.ListenAddr)
	}
	if cfg.Redis.Addr != "redis.internal:6379" || cfg.Redis.DB != 2 {
		t.Errorf("redis config = %+v", cfg.Redis)
	}
	if cfg.Odds.CacheTTL.Std() != 30*time.Minute {
		t.Errorf("cache TTL = %v, want 30m", cfg.Odds.CacheTTL)
	}
	if len(cfg.Odds.AllowedBooks) != 2 {
		t.Errorf("allowed books = %v", cfg.Odds.AllowedBooks)
	}
	if cfg.Alerts.MovementThresholdPct != 8.5 {
		t.Errorf("movement threshold = %f, want 8.5", cfg.Alerts.MovementThresholdPct)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("listen_addr: \":9090\"\n"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	t.Setenv("ODDS_API_KEY", "env_key")
	t.Setenv("LISTEN_ADDR", ":7070")
	t.Setenv("ALLOWED_BOOKS", "draftkings, betmgm")
	t.Setenv("ODDS_CACHE_TTL", "45m")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ListenAddr != ":7070" {
		t.Errorf("env should override file: got %s", cfg.ListenAddr)
	}
	if cfg.Odds.APIKey != "env_key" {
		t.Errorf("api key = %s", cfg.Odds.APIKey)
	}
	if cfg.Odds.CacheTTL.Std() != 45*time.Minute {
		t.Errorf("cache TTL = %v, want 45m", cfg.Odds.CacheTTL)
	}
	if len(cfg.Odds.AllowedBooks) != 2 || cfg.Odds.AllowedBooks[1] != "betmgm" {
		t.Errorf("allowed books = %v", cfg.Odds.AllowedBooks)
	}
}

func TestLoad_MissingFileIsFine(t *testing.T) {
	t.Setenv("ODDS_API_KEY", "test_key")

	if _, err := config.Load("/nonexistent/config.yaml"); err != nil {
		t.Errorf("missing config file should fall back to defaults, got %v", err)
	}
}
