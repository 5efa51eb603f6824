// Package common provides shared utilities for Simfolio
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Simfolio
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Portfolio   PortfolioConfig `toml:"portfolio"`
	Advice      AdviceConfig    `toml:"advice"`
	Report      ReportConfig    `toml:"report"`
	Risk        RiskConfig      `toml:"risk"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds file storage configuration
type StorageConfig struct {
	Path string `toml:"path"`
}

// PortfolioConfig holds the simulated portfolio toggle. When disabled,
// trade recording is rejected; existing holdings remain readable.
type PortfolioConfig struct {
	Enabled bool `toml:"enabled"`
}

// AdviceConfig holds AI advice generation configuration
type AdviceConfig struct {
	Enabled         bool   `toml:"enabled"`
	APIKey          string `toml:"api_key"`
	Model           string `toml:"model"`
	RateLimit       int    `toml:"rate_limit"` // requests per second
	RequireAnalysis bool   `toml:"require_analysis"`
}

// ReportConfig holds local report saving configuration
type ReportConfig struct {
	Enabled        bool   `toml:"enabled"`
	CurrencySymbol string `toml:"currency_symbol"`
	IncludeChart   bool   `toml:"include_chart"`
}

// RiskConfig holds default risk-policy parameters for new portfolios.
// The persisted portfolio carries its own policy; these apply only when a
// portfolio is created from scratch.
type RiskConfig struct {
	InitialCapital       float64 `toml:"initial_capital"`
	StopLossPct          float64 `toml:"stop_loss_pct"`
	TakeProfitPct        float64 `toml:"take_profit_pct"`
	MaxSinglePositionPct float64 `toml:"max_single_position_pct"`
	MaxTotalPositionPct  float64 `toml:"max_total_position_pct"`
	CommissionRate       float64 `toml:"commission_rate"`
	StampDutyRate        float64 `toml:"stamp_duty_rate"`
	MinCommission        float64 `toml:"min_commission"`
}

// SchedulerConfig holds the daily evaluation job configuration.
// An empty cron expression disables the job.
type SchedulerConfig struct {
	Cron string `toml:"cron"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string   `toml:"level"`
	Outputs  []string `toml:"outputs"`
	FilePath string   `toml:"file_path"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Path: "data",
		},
		Portfolio: PortfolioConfig{
			Enabled: true,
		},
		Advice: AdviceConfig{
			Enabled:   true,
			Model:     "gemini-2.0-flash",
			RateLimit: 1,
		},
		Report: ReportConfig{
			Enabled:        true,
			CurrencySymbol: "¥",
			IncludeChart:   true,
		},
		Risk: RiskConfig{
			InitialCapital:       100000,
			StopLossPct:          8,
			TakeProfitPct:        20,
			MaxSinglePositionPct: 30,
			MaxTotalPositionPct:  80,
			CommissionRate:       0.0003,
			StampDutyRate:        0.001,
			MinCommission:        5,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Outputs:  []string{"console"},
			FilePath: "./logs/simfolio.log",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("SIMFOLIO_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("SIMFOLIO_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("SIMFOLIO_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("SIMFOLIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("SIMFOLIO_DATA_PATH"); path != "" {
		config.Storage.Path = path
	}

	if v := os.Getenv("SIMFOLIO_PORTFOLIO_ENABLED"); v != "" {
		config.Portfolio.Enabled = parseBool(v, config.Portfolio.Enabled)
	}

	if v := os.Getenv("SIMFOLIO_ADVICE_ENABLED"); v != "" {
		config.Advice.Enabled = parseBool(v, config.Advice.Enabled)
	}

	if v := os.Getenv("SIMFOLIO_REPORT_ENABLED"); v != "" {
		config.Report.Enabled = parseBool(v, config.Report.Enabled)
	}

	if v := os.Getenv("SIMFOLIO_SCHEDULER_CRON"); v != "" {
		config.Scheduler.Cron = v
	}

	// The Gemini key is accepted under both the app-scoped and the
	// conventional variable names.
	for _, name := range []string{"SIMFOLIO_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			config.Advice.APIKey = v
			break
		}
	}
}

func parseBool(v string, fallback bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return b
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
