package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "30m" parse
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the full application configuration. Values come from the
// YAML file first, then environment variables override field by field so
// secrets stay out of the file.
type Config struct {
	ListenAddr  string `yaml:"listen_addr"`
	DatabaseURL string `yaml:"database_url"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Odds struct {
		APIKey       string   `yaml:"api_key"`
		CacheTTL     Duration `yaml:"cache_ttl"`
		AllowedBooks []string `yaml:"allowed_books"`
	} `yaml:"odds"`

	Weather struct {
		Enabled bool   `yaml:"enabled"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"weather"`

	Alerts struct {
		MovementThresholdPct float64 `yaml:"movement_threshold_pct"`
		TelegramToken        string  `yaml:"telegram_token"`
		TelegramChatID       int64   `yaml:"telegram_chat_id"`
	} `yaml:"alerts"`
}

func defaults() *Config {
	cfg := &Config{
		ListenAddr:  ":8080",
		DatabaseURL: "postgres://localhost:5432/smartline?sslmode=disable",
	}
	cfg.Redis.Addr = "localhost:6379"
	cfg.Odds.CacheTTL = Duration(time.Hour)
	cfg.Weather.Enabled = true
	cfg.Alerts.MovementThresholdPct = 5.0
	return cfg
}

// Load reads the YAML file at path (skipped when path is empty or the
// file does not exist) and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.applyEnv()

	if cfg.Odds.APIKey == "" {
		return nil, fmt.Errorf("odds api key is required (set ODDS_API_KEY)")
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.ListenAddr, "LISTEN_ADDR")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setInt(&c.Redis.DB, "REDIS_DB")
	setString(&c.Odds.APIKey, "ODDS_API_KEY")
	setDuration(&c.Odds.CacheTTL, "ODDS_CACHE_TTL")
	setBool(&c.Weather.Enabled, "WEATHER_ENABLED")
	setString(&c.Weather.BaseURL, "WEATHER_BASE_URL")
	setFloat(&c.Alerts.MovementThresholdPct, "MOVEMENT_THRESHOLD_PCT")
	setString(&c.Alerts.TelegramToken, "TELEGRAM_TOKEN")
	setInt64(&c.Alerts.TelegramChatID, "TELEGRAM_CHAT_ID")

	if v := os.Getenv("ALLOWED_BOOKS"); v != "" {
		books := make([]string, 0)
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				books = append(books, b)
			}
		}
		c.Odds.AllowedBooks = books
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = Duration(d)
		}
	}
}
