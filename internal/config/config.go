// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for divine-tui.
//
// Supports both TOML and JSON configuration formats, with sensible
// defaults and environment variable overrides.
//
// Configuration file locations (in order of precedence):
//   - ~/.divine/config.toml
//   - ~/.divine/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/divine-tui/internal/cloud"
	"github.com/jeranaias/divine-tui/internal/profile"
)

// Environment variable overrides. Each one, when set, wins over the
// config file.
const (
	EnvAPIKey  = "DIVINE_API_KEY"
	EnvAPIURL  = "DIVINE_API_URL"
	EnvDataDir = "DIVINE_DATA_DIR"
)

// =============================================================================
// CONFIG STRUCTURE
// =============================================================================

// Config is the complete divine-tui configuration.
type Config struct {
	// APIKey authenticates against the completions endpoint.
	APIKey string `toml:"api_key" json:"api_key"`

	// APIURL is the chat completions endpoint.
	APIURL string `toml:"api_url" json:"api_url"`

	// DataDir holds the local database. Defaults to ~/.divine.
	DataDir string `toml:"data_dir" json:"data_dir"`

	// DefaultModel is the profile key preselected for new sessions.
	DefaultModel string `toml:"default_model" json:"default_model"`

	// DarkTheme picks the dark rendering palette. When absent the
	// terminal background decides.
	DarkTheme *bool `toml:"dark_theme" json:"dark_theme"`

	// RequestTimeoutSecs bounds a single completion request.
	RequestTimeoutSecs int `toml:"request_timeout_secs" json:"request_timeout_secs"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		APIURL:             cloud.DefaultBaseURL,
		DataDir:            defaultDataDir(),
		DefaultModel:       profile.DefaultKey,
		RequestTimeoutSecs: 60,
	}
}

// defaultDataDir resolves ~/.divine, falling back to the working
// directory when the home directory is unknown.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".divine"
	}
	return filepath.Join(home, ".divine")
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".divine"), nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration: TOML first, JSON as fallback, built-in
// defaults when neither file exists. Environment overrides apply last.
func Load() (*Config, error) {
	dir, err := ConfigDir()
	if err != nil {
		cfg := Default()
		cfg.applyEnv()
		return cfg, cfg.Validate()
	}

	for _, name := range []string{"config.toml", "config.json"} {
		path := filepath.Join(dir, name)
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		return LoadFromPath(path)
	}

	cfg := Default()
	cfg.applyEnv()
	return cfg, cfg.Validate()
}

// LoadFromPath reads the configuration from an explicit file. The format
// is chosen by extension: .json is JSON, everything else TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	var err error
	if filepath.Ext(path) == ".json" {
		err = loadJSON(cfg, path)
	} else {
		err = loadTOML(cfg, path)
	}
	if err != nil {
		return nil, err
	}

	cfg.applyEnv()
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML config: %w", err)
	}
	return nil
}

func loadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON config: %w", err)
	}
	return nil
}

// applyEnv applies environment variable overrides.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
}

// fillDefaults backfills zero values a partial config file left out.
func (c *Config) fillDefaults() {
	def := Default()
	if c.APIURL == "" {
		c.APIURL = def.APIURL
	}
	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}
	if c.DefaultModel == "" {
		c.DefaultModel = def.DefaultModel
	}
	if c.RequestTimeoutSecs <= 0 {
		c.RequestTimeoutSecs = def.RequestTimeoutSecs
	}
}

// Validate rejects configurations that cannot work.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api_url %q", c.APIURL)
	}
	if c.RequestTimeoutSecs <= 0 {
		return fmt.Errorf("request_timeout_secs must be positive, got %d", c.RequestTimeoutSecs)
	}
	return nil
}

// DatabasePath returns the path of the local database file.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "divine.db")
}
