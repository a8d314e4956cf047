// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for docchat.
package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/docchat-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete docchat configuration.
type Config struct {
	Version string `toml:"version"`

	// Server configuration
	Server ServerConfig `toml:"server"`

	// Upload configuration
	Upload UploadConfig `toml:"upload"`

	// Archive configuration (local transcript archive)
	Archive ArchiveConfig `toml:"archive"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// ServerConfig contains backend connection configuration.
type ServerConfig struct {
	// BaseURL is the docchat backend base URL
	BaseURL string `toml:"base_url"`
	// TimeoutSecs is the timeout for non-streaming requests in seconds
	TimeoutSecs int `toml:"timeout_secs"`
	// UploadTimeoutSecs is the timeout for document uploads in seconds
	UploadTimeoutSecs int `toml:"upload_timeout_secs"`
}

// UploadConfig contains document upload configuration.
type UploadConfig struct {
	// DropDir, when set, is a directory watched for new files; anything
	// dropped there is uploaded to the active session automatically
	DropDir string `toml:"drop_dir"`
	// MaxSizeMB is the maximum upload size in megabytes
	MaxSizeMB int64 `toml:"max_size_mb"`
	// AllowedExtensions lists acceptable file extensions (with leading dot)
	AllowedExtensions []string `toml:"allowed_extensions"`
}

// ArchiveConfig contains local transcript archive configuration.
type ArchiveConfig struct {
	// Enabled controls whether completed exchanges are archived locally
	Enabled bool `toml:"enabled"`
	// Path is the archive database file (empty = ~/.docchat/archive.db)
	Path string `toml:"path"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light"
	Theme string `toml:"theme"`
	// ShowThinking reveals the model's reasoning text while it streams
	ShowThinking bool `toml:"show_thinking"`
	// CompactMode uses a more compact layout
	CompactMode bool `toml:"compact_mode"`
	// AutoscrollThresholdLines is how close to the bottom (in lines) the
	// viewport must be for streaming output to keep it pinned there
	AutoscrollThresholdLines int `toml:"autoscroll_threshold_lines"`
	// DebugLogPath enables debug logging to the given file when set
	DebugLogPath string `toml:"debug_log_path"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Server: ServerConfig{
			BaseURL:           "http://127.0.0.1:8000",
			TimeoutSecs:       30,
			UploadTimeoutSecs: 120,
		},

		Upload: UploadConfig{
			DropDir:           "",
			MaxSizeMB:         50,
			AllowedExtensions: []string{".pdf", ".doc", ".docx", ".txt", ".md"},
		},

		Archive: ArchiveConfig{
			Enabled: true,
			Path:    "",
		},

		UI: UIConfig{
			Theme:                    "dark",
			ShowThinking:             true,
			CompactMode:              false,
			AutoscrollThresholdLines: 8,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// Dir returns the docchat configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".docchat"), nil
}

// Path returns the path to the TOML config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureDir ensures the config directory exists.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ArchivePath resolves the archive database path, applying the default.
func (c *Config) ArchivePath() (string, error) {
	if c.Archive.Path != "" {
		return c.Archive.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "archive.db"), nil
}

// ServerTimeout returns the non-streaming request timeout as a duration.
func (c *Config) ServerTimeout() time.Duration {
	return time.Duration(c.Server.TimeoutSecs) * time.Second
}

// UploadTimeout returns the quick-parse upload timeout as a duration.
func (c *Config) UploadTimeout() time.Duration {
	return time.Duration(c.Server.UploadTimeoutSecs) * time.Second
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from ~/.docchat/config.toml, falling back to
// defaults when the file is absent. Environment overrides apply last.
func Load() (*Config, error) {
	cfg := Default()

	path, err := Path()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("failed to decode config file: %w", err)
			}
		}
	}

	cfg.fillDefaults()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadFromPath loads configuration from a specific file path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	cfg.fillDefaults()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// fillDefaults fills in any missing values with defaults.
func (c *Config) fillDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = defaults.Server.BaseURL
	}
	if c.Server.TimeoutSecs <= 0 {
		c.Server.TimeoutSecs = defaults.Server.TimeoutSecs
	}
	if c.Server.UploadTimeoutSecs <= 0 {
		c.Server.UploadTimeoutSecs = defaults.Server.UploadTimeoutSecs
	}
	if c.Upload.MaxSizeMB <= 0 {
		c.Upload.MaxSizeMB = defaults.Upload.MaxSizeMB
	}
	if len(c.Upload.AllowedExtensions) == 0 {
		c.Upload.AllowedExtensions = defaults.Upload.AllowedExtensions
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.UI.AutoscrollThresholdLines <= 0 {
		c.UI.AutoscrollThresholdLines = defaults.UI.AutoscrollThresholdLines
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies DOCCHAT_* environment variables on top of
// the loaded configuration.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("DOCCHAT_BASE_URL"); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv("DOCCHAT_TIMEOUT_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Server.TimeoutSecs = n
		}
	}
	if v := os.Getenv("DOCCHAT_DROP_DIR"); v != "" {
		c.Upload.DropDir = v
	}
	if v := os.Getenv("DOCCHAT_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("DOCCHAT_DEBUG_LOG"); v != "" {
		c.UI.DebugLogPath = v
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ValidationError{Field: "server.base_url", Message: "must be an absolute http(s) URL"}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ValidationError{Field: "server.base_url", Message: "scheme must be http or https"}
	}

	switch c.UI.Theme {
	case "dark", "light":
	default:
		return ValidationError{Field: "ui.theme", Message: "must be \"dark\" or \"light\""}
	}

	for _, ext := range c.Upload.AllowedExtensions {
		if !strings.HasPrefix(ext, ".") {
			return ValidationError{Field: "upload.allowed_extensions", Message: "extensions need a leading dot: " + ext}
		}
	}

	return nil
}

// =============================================================================
// SAVE
// =============================================================================

// Save writes the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
// RELIABILITY: Atomic write with fsync prevents data loss on crash
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# docchat configuration file")
	fmt.Fprintln(&buf, "# Generated by docchat - edit with care")
	fmt.Fprintln(&buf, "")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
