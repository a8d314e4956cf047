// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.BaseURL != "http://127.0.0.1:8000" {
		t.Errorf("BaseURL = %q", cfg.Server.BaseURL)
	}
	if cfg.UI.AutoscrollThresholdLines != 8 {
		t.Errorf("AutoscrollThresholdLines = %d, want 8", cfg.UI.AutoscrollThresholdLines)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config fails validation: %v", err)
	}
}

func TestLoadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
version = "1.0.0"

[server]
base_url = "http://10.0.0.5:9000"

[ui]
theme = "light"
autoscroll_threshold_lines = 4
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Server.BaseURL != "http://10.0.0.5:9000" {
		t.Errorf("BaseURL = %q", cfg.Server.BaseURL)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("Theme = %q", cfg.UI.Theme)
	}
	if cfg.UI.AutoscrollThresholdLines != 4 {
		t.Errorf("AutoscrollThresholdLines = %d", cfg.UI.AutoscrollThresholdLines)
	}
	// Unset fields fall back to defaults.
	if cfg.Server.TimeoutSecs != 30 {
		t.Errorf("TimeoutSecs = %d, want default 30", cfg.Server.TimeoutSecs)
	}
	if len(cfg.Upload.AllowedExtensions) == 0 {
		t.Error("AllowedExtensions not defaulted")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"https ok", func(c *Config) { c.Server.BaseURL = "https://docs.example.com" }, false},
		{"relative url", func(c *Config) { c.Server.BaseURL = "localhost:8000" }, true},
		{"bad scheme", func(c *Config) { c.Server.BaseURL = "ftp://host" }, true},
		{"bad theme", func(c *Config) { c.UI.Theme = "solarized" }, true},
		{"extension without dot", func(c *Config) { c.Upload.AllowedExtensions = []string{"pdf"} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("DOCCHAT_BASE_URL", "http://override:1234")
	t.Setenv("DOCCHAT_THEME", "light")
	t.Setenv("DOCCHAT_TIMEOUT_SECS", "5")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Server.BaseURL != "http://override:1234" {
		t.Errorf("BaseURL = %q", cfg.Server.BaseURL)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("Theme = %q", cfg.UI.Theme)
	}
	if cfg.Server.TimeoutSecs != 5 {
		t.Errorf("TimeoutSecs = %d", cfg.Server.TimeoutSecs)
	}
}

func TestSaveTOMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Server.BaseURL = "http://roundtrip:8000"
	cfg.UI.CompactMode = true

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("permissions = %o, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if loaded.Server.BaseURL != "http://roundtrip:8000" || !loaded.UI.CompactMode {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

func TestWatcherReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	if err := SaveTOML(Default(), path); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *Config, 1)
	w, err := NewWatcher(path, func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	if err := w.Watch(); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	edited := Default()
	edited.UI.Theme = "light"
	if err := SaveTOML(edited, path); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.UI.Theme != "light" {
			t.Errorf("reloaded theme = %q", cfg.UI.Theme)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher never reloaded")
	}
}

func TestWatcherSkipsBrokenRevision(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	if err := SaveTOML(Default(), path); err != nil {
		t.Fatal(err)
	}

	calls := make(chan struct{}, 4)
	w, err := NewWatcher(path, func(*Config) { calls <- struct{}{} })
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.Watch(); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("this is not toml = = ="), 0600); err != nil {
		t.Fatal(err)
	}

	select {
	case <-calls:
		t.Error("callback fired for unparseable config")
	case <-time.After(time.Second):
	}
}
