// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// APIKeyEnv injects or overrides paychangu.api_key.
const APIKeyEnv = "PAYCHANGU_API_KEY"

const (
	DefaultBaseURL  = "https://api.paychangu.com"
	DefaultCurrency = "MWK"
	DefaultTimeout  = 30 * time.Second
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type OperatorConfig struct {
	Prefix   string `yaml:"prefix"`
	Operator string `yaml:"operator"`
	RefID    string `yaml:"ref_id"`
}

type PayChanguConfig struct {
	APIKey         string           `yaml:"api_key"`
	BaseURL        string           `yaml:"base_url"`
	TimeoutSeconds int              `yaml:"timeout_seconds"` // per-request limit
	Currency       string           `yaml:"currency"`
	Operators      []OperatorConfig `yaml:"operators"` // replaces the built-in prefix table when set
}

// Timeout converts timeout_seconds, falling back to DefaultTimeout.
func (c PayChanguConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type HTTPConfig struct {
	Port           int           `yaml:"port"`
	AdminKey       string        `yaml:"admin_key"` // empty disables the /v1 guard
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type Config struct {
	PayChangu PayChanguConfig `yaml:"paychangu"`
	Log       LogConfig       `yaml:"log"`
	HTTP      HTTPConfig      `yaml:"http"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file at path, applies defaults and the
// PAYCHANGU_API_KEY override, and validates the result.
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, err
	}
	cfg.Runtime.Dev = dev
	return cfg, nil
}

// Parse decodes raw YAML; exposed for tests and callers that embed config.
func Parse(b []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if v := strings.TrimSpace(os.Getenv(APIKeyEnv)); v != "" {
		cfg.PayChangu.APIKey = v
	}

	// defaults
	if cfg.PayChangu.BaseURL == "" {
		cfg.PayChangu.BaseURL = DefaultBaseURL
	}
	cfg.PayChangu.BaseURL = strings.TrimRight(cfg.PayChangu.BaseURL, "/")
	if cfg.PayChangu.Currency == "" {
		cfg.PayChangu.Currency = DefaultCurrency
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.HTTP.Port <= 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.HTTP.RequestTimeout <= 0 {
		cfg.HTTP.RequestTimeout = cfg.PayChangu.Timeout() + 5*time.Second
	}

	// Minimal validation
	if cfg.PayChangu.APIKey == "" {
		return nil, fmt.Errorf("paychangu.api_key is required (or set %s)", APIKeyEnv)
	}
	for i, op := range cfg.PayChangu.Operators {
		if op.Prefix == "" || op.Operator == "" {
			return nil, fmt.Errorf("paychangu.operators[%d]: prefix and operator are required", i)
		}
	}
	if cfg.PayChangu.TimeoutSeconds < 0 {
		return nil, errors.New("paychangu.timeout_seconds must not be negative")
	}
	return &cfg, nil
}
