// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jeranaias/divine-tui/internal/cloud"
	"github.com/jeranaias/divine-tui/internal/profile"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	if cfg.APIURL != cloud.DefaultBaseURL {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.DefaultModel != profile.DefaultKey {
		t.Errorf("DefaultModel = %q", cfg.DefaultModel)
	}
	if cfg.RequestTimeoutSecs != 60 {
		t.Errorf("RequestTimeoutSecs = %d", cfg.RequestTimeoutSecs)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFromPathTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
api_key = "k-123"
default_model = "agent"
dark_theme = true
request_timeout_secs = 30
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.APIKey != "k-123" {
		t.Errorf("APIKey = %q", cfg.APIKey)
	}
	if cfg.DefaultModel != "agent" {
		t.Errorf("DefaultModel = %q", cfg.DefaultModel)
	}
	if cfg.DarkTheme == nil || !*cfg.DarkTheme {
		t.Error("DarkTheme not set")
	}
	if cfg.RequestTimeoutSecs != 30 {
		t.Errorf("RequestTimeoutSecs = %d", cfg.RequestTimeoutSecs)
	}
	// Unset fields backfill from defaults.
	if cfg.APIURL != cloud.DefaultBaseURL {
		t.Errorf("APIURL = %q, want default", cfg.APIURL)
	}
	if cfg.DataDir == "" {
		t.Error("DataDir not backfilled")
	}
}

func TestLoadFromPathJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"api_key": "k-json", "api_url": "https://example.test/v1/chat"}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.APIKey != "k-json" {
		t.Errorf("APIKey = %q", cfg.APIKey)
	}
	if cfg.APIURL != "https://example.test/v1/chat" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
}

func TestEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`api_key = "from-file"`), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	t.Setenv(EnvAPIKey, "from-env")
	t.Setenv(EnvDataDir, "/tmp/divine-test")

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.APIKey != "from-env" {
		t.Errorf("APIKey = %q, want env override", cfg.APIKey)
	}
	if cfg.DataDir != "/tmp/divine-test" {
		t.Errorf("DataDir = %q, want env override", cfg.DataDir)
	}
}

func TestValidateRejectsBadURL(t *testing.T) {
	cfg := Default()
	cfg.APIURL = "not a url"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for bad URL")
	}
}

func TestLoadFromPathRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`api_key = `), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := LoadFromPath(path); err == nil {
		t.Error("expected decode error")
	}
}

func TestDatabasePath(t *testing.T) {
	cfg := Default()
	cfg.DataDir = "/data/divine"
	if got := cfg.DatabasePath(); got != filepath.Join("/data/divine", "divine.db") {
		t.Errorf("DatabasePath = %q", got)
	}
}
