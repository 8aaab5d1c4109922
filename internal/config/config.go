// Copyright (c) 2025 Support AutoPilot
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for the
// autopilot console.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.autopilot/config.toml
//   - ~/.autopilot/config.json
//   - Built-in defaults
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/supportautopilot/autopilot-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete autopilot console configuration.
type Config struct {
	// Version of the config schema.
	Version string `toml:"version" json:"version"`

	// Server holds backend connection settings.
	Server ServerConfig `toml:"server" json:"server"`

	// Voice holds speech capture/playback settings.
	Voice VoiceConfig `toml:"voice" json:"voice"`

	// UI holds presentation settings.
	UI UIConfig `toml:"ui" json:"ui"`

	// Audit holds the local session-event log settings.
	Audit AuditConfig `toml:"audit" json:"audit"`
}

// ServerConfig contains backend connection configuration.
type ServerConfig struct {
	// BaseURL is the single configured base URL for the backend.
	// Every endpoint path hangs off it under /api.
	BaseURL string `toml:"base_url" json:"base_url"`
	// TimeoutSecs bounds each outbound request. A request that exceeds it
	// surfaces as a network failure, never a hung waiting indicator.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
}

// VoiceConfig contains speech capture and playback configuration.
// Both capabilities are optional; missing commands degrade to a no-op
// adapter with a one-time notice.
type VoiceConfig struct {
	// Enabled turns the voice layer on or off entirely.
	Enabled bool `toml:"enabled" json:"enabled"`
	// CaptureCommand is the speech-to-text program. It must print the
	// transcript of a single utterance to stdout and exit.
	CaptureCommand string `toml:"capture_command" json:"capture_command"`
	// CaptureArgs are extra arguments passed to the capture command.
	CaptureArgs []string `toml:"capture_args" json:"capture_args"`
	// CaptureTimeoutSecs bounds a single listening session.
	CaptureTimeoutSecs int `toml:"capture_timeout_secs" json:"capture_timeout_secs"`
	// SpeakCommand is the text-to-speech program. The text to play is
	// passed as the final argument.
	SpeakCommand string `toml:"speak_command" json:"speak_command"`
	// SpeakArgs are extra arguments passed to the speak command.
	SpeakArgs []string `toml:"speak_args" json:"speak_args"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// CompactMode uses a more compact layout
	CompactMode bool `toml:"compact_mode" json:"compact_mode"`
}

// AuditConfig contains the local session-event log configuration.
type AuditConfig struct {
	// Enabled turns the local audit trail on or off.
	Enabled bool `toml:"enabled" json:"enabled"`
	// Path is the sqlite database path (empty = ~/.autopilot/audit.db).
	Path string `toml:"path" json:"path"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Server: ServerConfig{
			BaseURL:     "http://localhost:8000",
			TimeoutSecs: 30,
		},

		Voice: VoiceConfig{
			Enabled:            true,
			CaptureCommand:     "",
			CaptureTimeoutSecs: 30,
			SpeakCommand:       "",
		},

		UI: UIConfig{
			Theme:       "dark",
			CompactMode: false,
		},

		Audit: AuditConfig{
			Enabled: true,
			Path:    "",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the autopilot configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".autopilot"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()

	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				return nil, fmt.Errorf("failed to load TOML config: %w", err)
			}
			return finish(cfg)
		}
	}

	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				return nil, fmt.Errorf("failed to load JSON config: %w", err)
			}
			return finish(cfg)
		}
	}

	return finish(cfg)
}

// LoadFromPath loads configuration from a specific file path with full
// validation. The file type is inferred from the extension (TOML default).
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}
	return finish(cfg)
}

// finish applies env overrides, defaults, and validation.
func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// Save writes the configuration to the TOML config file atomically.
func (c *Config) Save() error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return util.AtomicWriteFile(path, buf.Bytes(), 0600)
}

// =============================================================================
// ENV OVERRIDES / DEFAULTS / VALIDATION
// =============================================================================

// ApplyEnvOverrides applies AUTOPILOT_* environment variables on top of the
// loaded configuration.
func (c *Config) ApplyEnvOverrides() {
	if u := os.Getenv("AUTOPILOT_SERVER_URL"); u != "" {
		c.Server.BaseURL = u
	}
	if theme := os.Getenv("AUTOPILOT_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if v := os.Getenv("AUTOPILOT_VOICE"); v != "" {
		c.Voice.Enabled = v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "on")
	}
	if v := os.Getenv("AUTOPILOT_AUDIT"); v != "" {
		c.Audit.Enabled = v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "on")
	}
}

// SetDefaults fills zero values with usable defaults.
func (c *Config) SetDefaults() {
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = "http://localhost:8000"
	}
	if c.Server.TimeoutSecs <= 0 {
		c.Server.TimeoutSecs = 30
	}
	if c.Voice.CaptureTimeoutSecs <= 0 {
		c.Voice.CaptureTimeoutSecs = 30
	}
	if c.UI.Theme == "" {
		c.UI.Theme = "dark"
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil {
		return fmt.Errorf("server.base_url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server.base_url must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("server.base_url has no host")
	}

	switch c.UI.Theme {
	case "dark", "light", "auto":
	default:
		return fmt.Errorf("ui.theme must be dark, light, or auto, got %q", c.UI.Theme)
	}

	if c.Server.TimeoutSecs > 300 {
		return fmt.Errorf("server.timeout_secs %d exceeds the 300s ceiling", c.Server.TimeoutSecs)
	}
	return nil
}

// BaseURL returns the configured base URL without a trailing slash.
func (c *Config) BaseURL() string {
	return strings.TrimSuffix(c.Server.BaseURL, "/")
}
