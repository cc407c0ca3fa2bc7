// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"inventory-valuation/core/types"
	"inventory-valuation/internal/errors"
	"inventory-valuation/internal/logging"
)

// FileName is the default configuration file name under the user's home directory
const FileName = ".inventory-valuation.json"

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Valuation contains calculation defaults
	Valuation ValuationConfig `json:"valuation"`

	// Output contains output configuration
	Output OutputConfig `json:"output"`

	// Server contains HTTP API configuration
	Server ServerConfig `json:"server"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// ValuationConfig contains calculation defaults
type ValuationConfig struct {
	// Currency is used when formatting money
	Currency types.Currency `json:"currency"`

	// Defaults seed every input the caller leaves unset
	Defaults types.Inputs `json:"defaults"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format
	DefaultFormat string `json:"default_format"`

	// ShowFormulas includes the workings section
	ShowFormulas bool `json:"show_formulas"`

	// ShowNotes includes the explanatory and audit notes
	ShowNotes bool `json:"show_notes"`
}

// ServerConfig contains HTTP API settings
type ServerConfig struct {
	Addr                string `json:"addr"`
	ReadTimeoutSeconds  int    `json:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `json:"write_timeout_seconds"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Valuation: ValuationConfig{
			Currency: types.CurrencyUSD,
			Defaults: types.DefaultInputs(),
		},
		Output: OutputConfig{
			DefaultFormat: "cli",
			ShowFormulas:  true,
			ShowNotes:     true,
		},
		Server: ServerConfig{
			Addr:                ":8080",
			ReadTimeoutSeconds:  15,
			WriteTimeoutSeconds: 30,
		},
		Logging: logging.DefaultConfig(),
	}
}

// DefaultPath returns the configuration path in the user's home directory
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return FileName
	}
	return filepath.Join(home, FileName)
}

// Load loads configuration from a file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, errors.Config("read config", err).WithContext("path", path)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, errors.Config("decode config", err).WithContext("path", path)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks values a JSON decode cannot
func (c *Config) Validate() error {
	if !c.Valuation.Currency.IsValid() {
		return errors.Newf(errors.TypeConfig, "unsupported currency %q", c.Valuation.Currency)
	}
	if !c.Valuation.Defaults.ActivityBasis.IsValid() {
		return errors.Newf(errors.TypeConfig, "unsupported default activity basis %q", c.Valuation.Defaults.ActivityBasis)
	}
	if err := c.Valuation.Defaults.Validate(); err != nil {
		return errors.Wrap(errors.TypeConfig, "invalid default inputs", err)
	}
	if c.Server.ReadTimeoutSeconds < 0 || c.Server.WriteTimeoutSeconds < 0 {
		return errors.New(errors.TypeConfig, "server timeouts must not be negative")
	}
	return nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Config("create config directory", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Config("encode config", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return errors.Config("write config", err).WithContext("path", path)
	}
	return nil
}

var (
	mu           sync.RWMutex
	globalConfig = Default()
)

// Get returns the global configuration
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	mu.Lock()
	defer mu.Unlock()
	globalConfig = config
}
