package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Backend struct {
		BaseURL        string `yaml:"base_url"`
		APIKey         string `yaml:"api_key"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		Demo           bool   `yaml:"demo"`
	} `yaml:"backend"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Server struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"server"`
	Schedule struct {
		RefreshCron    string `yaml:"refresh_cron"`
		DigestOnReload bool   `yaml:"digest_on_reload"`
	} `yaml:"schedule"`
	Impact struct {
		PriceThresholdPct      float64 `yaml:"price_threshold_pct"`
		VolatilityThresholdPct float64 `yaml:"volatility_threshold_pct"`
		Limit                  int     `yaml:"limit"`
	} `yaml:"impact"`
	Chart struct {
		Title  string `yaml:"title"`
		Width  int    `yaml:"width"`
		Height int    `yaml:"height"`
	} `yaml:"chart"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("BACKEND_BASE_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("BACKEND_API_KEY"); v != "" {
		cfg.Backend.APIKey = v
	}
	if v := os.Getenv("DEMO_MODE"); v != "" {
		cfg.Backend.Demo, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Server.ListenAddr = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("CRON_REFRESH"); v != "" {
		cfg.Schedule.RefreshCron = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = "http://127.0.0.1:5000"
	}
	if c.Backend.TimeoutSeconds == 0 {
		c.Backend.TimeoutSeconds = 30
	}
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = ":8080"
	}
	if c.Schedule.RefreshCron == "" {
		c.Schedule.RefreshCron = "0 0 6 * * *"
	}
	if c.Impact.PriceThresholdPct == 0 {
		c.Impact.PriceThresholdPct = 5
	}
	if c.Impact.VolatilityThresholdPct == 0 {
		c.Impact.VolatilityThresholdPct = 20
	}
	if c.Impact.Limit == 0 {
		c.Impact.Limit = 5
	}
	if c.Chart.Title == "" {
		c.Chart.Title = "Brent Crude Oil Price Analysis"
	}
	if c.Chart.Width == 0 {
		c.Chart.Width = 1280
	}
	if c.Chart.Height == 0 {
		c.Chart.Height = 500
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/brentlens.db"
	}
}

// TelegramEnabled reports whether chat delivery is configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" && !c.Backend.Demo {
		return errors.New("backend.base_url is required")
	}
	if c.Backend.TimeoutSeconds <= 0 {
		return errors.New("backend.timeout_seconds must be positive")
	}
	if c.Impact.PriceThresholdPct <= 0 {
		return errors.New("impact.price_threshold_pct must be positive")
	}
	if c.Impact.VolatilityThresholdPct <= 0 {
		return errors.New("impact.volatility_threshold_pct must be positive")
	}
	if c.Impact.Limit <= 0 {
		return errors.New("impact.limit must be positive")
	}
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return errors.New("chart dimensions must be positive")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return errors.New("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}
