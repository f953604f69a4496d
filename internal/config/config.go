package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"MarketLedger/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Workbook struct {
		Path               string `yaml:"path"`
		DefaultTicker      string `yaml:"default_ticker"`
		DefaultDescription string `yaml:"default_description"`
	} `yaml:"workbook"`
	Capture struct {
		Timeframe    string `yaml:"timeframe"`
		CandleCount  int    `yaml:"candle_count"`
		OverviewDays int    `yaml:"overview_days"`
	} `yaml:"capture"`
	DataSource struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"data_source"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		File string `yaml:"file"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
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
	if v := os.Getenv("WORKBOOK_PATH"); v != "" {
		cfg.Workbook.Path = v
	}
	if v := os.Getenv("DEFAULT_TICKER"); v != "" {
		cfg.Workbook.DefaultTicker = v
	}
	if v := os.Getenv("MT_BRIDGE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("MT_BRIDGE_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_CAPTURE"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("CANDLE_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Capture.CandleCount = n
		}
	}
	if v := os.Getenv("OVERVIEW_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Capture.OverviewDays = n
		}
	}

	// Defaults
	if cfg.Workbook.Path == "" {
		cfg.Workbook.Path = "finance_data.xlsx"
	}
	if cfg.Workbook.DefaultTicker == "" {
		cfg.Workbook.DefaultTicker = "XAUUSDm"
	}
	if cfg.Workbook.DefaultDescription == "" {
		cfg.Workbook.DefaultDescription = "Gold vs USD"
	}
	if cfg.Capture.Timeframe == "" {
		cfg.Capture.Timeframe = string(model.TimeframeD1)
	}
	if cfg.Capture.CandleCount == 0 {
		cfg.Capture.CandleCount = 100
	}
	if cfg.Capture.OverviewDays == 0 {
		cfg.Capture.OverviewDays = 15
	}
	if cfg.Log.File == "" {
		cfg.Log.File = "market_data.log"
	}

	return cfg, nil
}

// Validate checks that all required fields are set and well-formed.
func (c *Config) Validate() error {
	if c.Workbook.Path == "" {
		return fmt.Errorf("workbook.path is required")
	}
	if _, err := model.ParseTimeframe(c.Capture.Timeframe); err != nil {
		return fmt.Errorf("capture.timeframe: %w", err)
	}
	if c.Capture.CandleCount <= 0 {
		return fmt.Errorf("capture.candle_count must be positive")
	}
	if c.Capture.OverviewDays <= 0 {
		return fmt.Errorf("capture.overview_days must be positive")
	}
	return nil
}

// Timeframe returns the parsed capture timeframe. Validate must have passed.
func (c *Config) Timeframe() model.Timeframe {
	tf, _ := model.ParseTimeframe(c.Capture.Timeframe)
	return tf
}
