// Package config centralizes runtime configuration for dam. It loads a
// JSON configuration file and exposes a process-wide configuration with
// sensible defaults. Tests and development builds will use defaults when
// the file is not present. Operators should place a JSON file at
// /etc/dam/config.json or specify a different path via the CONFIG_FILE
// env var.
package config

import (
	"encoding/json"
	"os"
)

// Config holds configurable options for the dam service.
type Config struct {
	DBFile           string `json:"db_file"`
	Port             int    `json:"port"`
	LogBuffer        int    `json:"log_buffer"`
	DocsDir          string `json:"docs_dir"`
	FaucetAmount     string `json:"faucet_amount"`
	DefaultBalance   string `json:"default_balance"`
	SeedDemoAccounts bool   `json:"seed_demo_accounts"`
}

var cfg *Config

// LoadConfig reads a JSON file at path. If the file does not exist or
// cannot be parsed, LoadConfig returns defaults (and no error) so that the
// application can run in development with minimal friction.
func LoadConfig(path string) (*Config, error) {
	def := &Config{
		DBFile:           "ledger.db",
		Port:             8080,
		LogBuffer:        200,
		DocsDir:          "internal/docs",
		FaucetAmount:     "50.00",
		DefaultBalance:   "100.00",
		SeedDemoAccounts: true,
	}

	if path == "" {
		cfg = def
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		// file missing or unreadable -> use defaults
		cfg = def
		return cfg, nil
	}

	var c Config
	if err := json.Unmarshal(b, &c); err != nil {
		// parse error -> use defaults
		cfg = def
		return cfg, nil
	}

	// merge defaults for any zero-value fields
	if c.DBFile == "" {
		c.DBFile = def.DBFile
	}
	if c.Port == 0 {
		c.Port = def.Port
	}
	if c.LogBuffer == 0 {
		c.LogBuffer = def.LogBuffer
	}
	if c.DocsDir == "" {
		c.DocsDir = def.DocsDir
	}
	if c.FaucetAmount == "" {
		c.FaucetAmount = def.FaucetAmount
	}
	if c.DefaultBalance == "" {
		c.DefaultBalance = def.DefaultBalance
	}

	cfg = &c
	return cfg, nil
}

// Get returns the loaded configuration. If LoadConfig hasn't been called
// yet, it returns defaults.
func Get() *Config {
	if cfg == nil {
		LoadConfig("")
	}
	return cfg
}
