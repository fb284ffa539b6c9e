// Package config loads the bridge configuration from YAML with environment
// overrides for the values that should not live in a file.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/mt5-bridge/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the full bridge configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Terminal TerminalConfig `yaml:"terminal"`
	Session  SessionConfig  `yaml:"session"`
	Data     DataConfig     `yaml:"data"`
	Trading  TradingConfig  `yaml:"trading"`
	Export   ExportConfig   `yaml:"export"`
}

// ServerConfig configures the HTTP façade.
type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required"`
	// APIKey guards every non-health route. Empty disables authentication;
	// only do that on a loopback bind.
	APIKey string `yaml:"api_key"`
	// RateLimit is requests per second per caller; zero disables limiting.
	RateLimit float64 `yaml:"rate_limit" validate:"gte=0"`
	RateBurst int     `yaml:"rate_burst" validate:"gte=0"`
}

// TerminalConfig selects and configures the terminal backend.
type TerminalConfig struct {
	Backend   string `yaml:"backend" validate:"required,oneof=sim"`
	Path      string `yaml:"path"`
	Login     int64  `yaml:"login"`
	Password  string `yaml:"password"`
	Server    string `yaml:"server"`
	TimeoutMS int    `yaml:"timeout_ms" validate:"gte=0"`
	Portable  bool   `yaml:"portable"`
}

// SessionConfig tunes connection retries.
type SessionConfig struct {
	RetryCount      int `yaml:"retry_count" validate:"gte=0"`
	RetryIntervalMS int `yaml:"retry_interval_ms" validate:"gte=0"`
}

// DataConfig tunes read retries.
type DataConfig struct {
	ReadRetries     int `yaml:"read_retries" validate:"gte=0"`
	RetryIntervalMS int `yaml:"retry_interval_ms" validate:"gte=0"`
}

// TradingConfig tunes the trading helper.
type TradingConfig struct {
	BatchLimit int `yaml:"batch_limit" validate:"gte=1,lte=1000"`
}

// ExportConfig configures the export store and its jobs.
type ExportConfig struct {
	Database string      `yaml:"database"`
	Jobs     []ExportJob `yaml:"jobs" validate:"dive"`
}

// ExportJob is one fetch-and-store unit of the export command.
type ExportJob struct {
	Kind      string `yaml:"kind" validate:"required,oneof=rates ticks deals positions"`
	Symbol    string `yaml:"symbol"`
	Timeframe string `yaml:"timeframe"`
	Table     string `yaml:"table" validate:"required"`
	// LookbackMinutes bounds the fetch window ending now.
	LookbackMinutes int `yaml:"lookback_minutes" validate:"gte=0"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:      "127.0.0.1:8736",
			RateLimit: 20,
			RateBurst: 40,
		},
		Terminal: TerminalConfig{
			Backend:   "sim",
			TimeoutMS: 60000,
		},
		Session: SessionConfig{
			RetryCount:      2,
			RetryIntervalMS: 1000,
		},
		Data: DataConfig{
			ReadRetries:     2,
			RetryIntervalMS: 200,
		},
		Trading: TradingConfig{
			BatchLimit: 200,
		},
		Export: ExportConfig{
			Database: "mt5-bridge.duckdb",
		},
	}
}

// Load reads the configuration from path, applies environment overrides and
// validates the result. An empty path loads defaults plus overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config file %s", path)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse config file %s", path)
		}
	}

	applyEnv(&cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	return cfg, nil
}

// applyEnv overrides the secrets and bind address from the environment.
func applyEnv(cfg *Config) {
	if v := os.Getenv("MT5_BRIDGE_ADDR"); v != "" {
		cfg.Server.Addr = v
	}

	if v := os.Getenv("MT5_BRIDGE_API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}

	if v := os.Getenv("MT5_BRIDGE_LOGIN"); v != "" {
		if login, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Terminal.Login = login
		}
	}

	if v := os.Getenv("MT5_BRIDGE_PASSWORD"); v != "" {
		cfg.Terminal.Password = v
	}

	if v := os.Getenv("MT5_BRIDGE_SERVER"); v != "" {
		cfg.Terminal.Server = v
	}
}

// SessionRetryInterval returns the session backoff base as a duration.
func (c Config) SessionRetryInterval() time.Duration {
	return time.Duration(c.Session.RetryIntervalMS) * time.Millisecond
}

// DataRetryInterval returns the read retry backoff base as a duration.
func (c Config) DataRetryInterval() time.Duration {
	return time.Duration(c.Data.RetryIntervalMS) * time.Millisecond
}
