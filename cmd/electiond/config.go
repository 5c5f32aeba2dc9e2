// config.go - Configuration management for the election daemon
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the application configuration
type Config struct {
	// Election parameters
	KeyBits      int `json:"key_bits"`
	Threshold    int `json:"threshold"`
	TrusteeCount int `json:"trustee_count"`

	KioskIDs []string `json:"kiosk_ids"`

	// File paths
	LedgerPath    string `json:"ledger_path"`
	SealedKeyPath string `json:"sealed_key_path"`
	SharesDir     string `json:"shares_dir"`

	// Logging
	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`

	// Performance
	MaxConcurrency int `json:"max_concurrency"`
	TimeoutSeconds int `json:"timeout_seconds"`

	// Rate limiting
	RateLimitTokens int `json:"rate_limit_tokens"`
	RateLimitPeriod int `json:"rate_limit_period_seconds"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		KeyBits:         2048,
		Threshold:       3,
		TrusteeCount:    5,
		KioskIDs:        []string{"kiosk-1", "kiosk-2", "kiosk-3"},
		LedgerPath:      "ledger.json",
		SealedKeyPath:   "sealed_key.json",
		SharesDir:       "shares",
		LogLevel:        "info",
		LogFile:         "stderr",
		MaxConcurrency:  4,
		TimeoutSeconds:  30,
		RateLimitTokens: 10,
		RateLimitPeriod: 1,
	}
}

// LoadConfig loads configuration from file or creates default
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer file.Close()

		var config Config
		if err := json.NewDecoder(file).Decode(&config); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}

		return &config, nil
	}

	config := DefaultConfig()
	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save default config: %w", err)
	}

	return config, nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.KeyBits < 8 || c.KeyBits%2 != 0 {
		return fmt.Errorf("key_bits must be even and >= 8")
	}
	if c.Threshold <= 0 {
		return fmt.Errorf("threshold must be positive")
	}
	if c.TrusteeCount < c.Threshold {
		return fmt.Errorf("trustee_count must be >= threshold")
	}
	if len(c.KioskIDs) == 0 {
		return fmt.Errorf("kiosk_ids must not be empty")
	}
	if c.MaxConcurrency <= 0 {
		return fmt.Errorf("max_concurrency must be positive")
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive")
	}
	if c.RateLimitTokens <= 0 {
		return fmt.Errorf("rate_limit_tokens must be positive")
	}
	if c.RateLimitPeriod <= 0 {
		return fmt.Errorf("rate_limit_period_seconds must be positive")
	}
	return nil
}
