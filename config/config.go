package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/poscalc/fixer"
	"github.com/rustyeddy/poscalc/risk"
)

// Environment variables that override file values.
const (
	EnvAPIKey = "POSCALC_API_KEY"
	EnvAPIURL = "POSCALC_API_URL"
)

// Config is the application configuration. Form values live in the
// settings file, not here.
type Config struct {
	API     APIConfig     `json:"api" yaml:"api"`
	Log     LogConfig     `json:"log" yaml:"log"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Watch   WatchConfig   `json:"watch" yaml:"watch"`
	Policy  PolicyConfig  `json:"policy" yaml:"policy"`
}

// APIConfig points at the exchange rate service.
type APIConfig struct {
	URL     string `json:"url" yaml:"url"`
	Key     string `json:"key,omitempty" yaml:"key,omitempty"`
	Timeout string `json:"timeout" yaml:"timeout"` // e.g. "30s"
}

// TimeoutDuration parses Timeout; empty means fixer.DefaultTimeout.
func (a APIConfig) TimeoutDuration() (time.Duration, error) {
	if a.Timeout == "" {
		return fixer.DefaultTimeout, nil
	}
	return time.ParseDuration(a.Timeout)
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
	File  string `json:"file,omitempty" yaml:"file,omitempty"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type             string `json:"type" yaml:"type"` // "sqlite", "csv" or "none"
	DBPath           string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	CalculationsFile string `json:"calculations_file,omitempty" yaml:"calculations_file,omitempty"`
	RatesFile        string `json:"rates_file,omitempty" yaml:"rates_file,omitempty"`
}

type WatchConfig struct {
	Schedule string `json:"schedule" yaml:"schedule"` // cron spec, e.g. "@every 5m"
}

// PolicyConfig sets personal limits reported after each calculation.
// Zero disables a limit.
type PolicyConfig struct {
	MaxRiskPercent   float64 `json:"max_risk_percent" yaml:"max_risk_percent"`
	MinRR            float64 `json:"min_rr" yaml:"min_rr"`
	MaxMarginPercent float64 `json:"max_margin_percent" yaml:"max_margin_percent"`
}

// Risk converts the config into a risk.Policy.
func (p PolicyConfig) Risk() risk.Policy {
	return risk.Policy{
		MaxRiskPct:   p.MaxRiskPercent,
		MinRR:        p.MinRR,
		MaxMarginPct: p.MaxMarginPercent,
	}
}

// LoadFromFile loads configuration from a file (YAML or JSON).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Load reads path when it exists, otherwise starts from Default. The
// environment is applied last.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		loaded, err := LoadFromFile(path)
		switch {
		case err == nil:
			cfg = loaded
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(""); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv loads envFile (".env" when empty; a missing file is fine) and
// lets POSCALC_API_KEY and POSCALC_API_URL override the file values.
// Variables already set in the process win over the .env file.
func (c *Config) ApplyEnv(envFile string) error {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", envFile, err)
	}

	if v := strings.TrimSpace(os.Getenv(EnvAPIKey)); v != "" {
		c.API.Key = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		c.API.URL = v
	}
	return nil
}

// SaveToFile saves configuration as YAML (.yaml/.yml) or JSON.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.API.URL == "" {
		return fmt.Errorf("api.url is required")
	}
	if d, err := c.API.TimeoutDuration(); err != nil || d <= 0 {
		return fmt.Errorf("api.timeout must be a positive duration")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Journal.Type {
	case "none":
	case "csv":
		if c.Journal.CalculationsFile == "" || c.Journal.RatesFile == "" {
			return fmt.Errorf("journal calculations_file and rates_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'sqlite', 'csv' or 'none'")
	}
	if c.Policy.MaxRiskPercent < 0 || c.Policy.MaxRiskPercent > 100 {
		return fmt.Errorf("policy.max_risk_percent must be between 0 and 100")
	}
	if c.Policy.MinRR < 0 || c.Policy.MaxMarginPercent < 0 {
		return fmt.Errorf("policy limits must not be negative")
	}
	if c.Watch.Schedule != "" {
		if _, err := cron.ParseStandard(c.Watch.Schedule); err != nil {
			return fmt.Errorf("watch.schedule: %w", err)
		}
	}
	return nil
}

// DefaultPath is poscalc/config.yaml under the user config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return "poscalc.yaml"
	}
	return filepath.Join(dir, "poscalc", "config.yaml")
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		API: APIConfig{
			URL:     fixer.DefaultURL,
			Timeout: fixer.DefaultTimeout.String(),
		},
		Log: LogConfig{
			Level: "info",
		},
		Journal: JournalConfig{
			Type: "none",
		},
		Watch: WatchConfig{
			Schedule: "@every 5m",
		},
	}
}
