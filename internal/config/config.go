// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for docbud.
//
// Supports TOML, JSON and YAML configuration files, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.docbud/config.toml
//   - ~/.docbud/config.json
//   - ~/.docbud/config.yaml
//   - Built-in defaults
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/docbud-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete docbud configuration.
type Config struct {
	Version string `toml:"version" json:"version" yaml:"version"`

	// Backend is the remote PDF question-answering service
	Backend BackendConfig `toml:"backend" json:"backend" yaml:"backend"`

	// Storage is where conversations are persisted
	Storage StorageConfig `toml:"storage" json:"storage" yaml:"storage"`

	UI  UIConfig  `toml:"ui" json:"ui" yaml:"ui"`
	Log LogConfig `toml:"log" json:"log" yaml:"log"`
}

// BackendConfig contains the remote service settings.
type BackendConfig struct {
	// BaseURL is the service root; /upload_pdf/ and /ask_question/ are appended
	BaseURL string `toml:"base_url" json:"base_url" yaml:"base_url"`
	// TimeoutSecs bounds a single upload or question request
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs" yaml:"timeout_secs"`
	// RequestsPerSecond caps outgoing requests (0 = unlimited)
	RequestsPerSecond float64 `toml:"requests_per_second" json:"requests_per_second" yaml:"requests_per_second"`
}

// StorageConfig selects the key-value backend that holds the conversation blob.
type StorageConfig struct {
	// Backend is one of: "file", "sqlite", "redis", "memory"
	Backend string `toml:"backend" json:"backend" yaml:"backend"`
	// Path is the directory (file) or database file (sqlite).
	// Empty means a default under the config directory.
	Path string `toml:"path" json:"path" yaml:"path"`
	// Key is the well-known key the conversation blob is stored under
	Key string `toml:"key" json:"key" yaml:"key"`
	// RedisAddr is host:port of the redis server (redis backend only)
	RedisAddr string `toml:"redis_addr" json:"redis_addr" yaml:"redis_addr"`
	// RedisDB is the redis logical database number
	RedisDB int `toml:"redis_db" json:"redis_db" yaml:"redis_db"`
	// Watch reloads the sidebar when another process rewrites the store (file backend)
	Watch bool `toml:"watch" json:"watch" yaml:"watch"`
}

// UIConfig contains terminal UI settings.
type UIConfig struct {
	// Theme is "dark" or "light"
	Theme string `toml:"theme" json:"theme" yaml:"theme"`
	// RevealIntervalMs is the delay between revealed words of an answer
	RevealIntervalMs int `toml:"reveal_interval_ms" json:"reveal_interval_ms" yaml:"reveal_interval_ms"`
	// ShowSidebar shows the conversation list on start
	ShowSidebar bool `toml:"show_sidebar" json:"show_sidebar" yaml:"show_sidebar"`
}

// LogConfig controls the zerolog file sink.
type LogConfig struct {
	// Level is a zerolog level name: debug, info, warn, error, disabled
	Level string `toml:"level" json:"level" yaml:"level"`
	// Path is the log file; empty means ~/.docbud/docbud.log
	Path string `toml:"path" json:"path" yaml:"path"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Storage backend names.
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// DefaultStorageKey matches the key the browser client used, so exported
// blobs stay interchangeable.
const DefaultStorageKey = "pdf-chat-conversations"

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1",

		Backend: BackendConfig{
			BaseURL:           "http://127.0.0.1:8000",
			TimeoutSecs:       120, // PDF ingestion on the backend can be slow
			RequestsPerSecond: 5,
		},

		Storage: StorageConfig{
			Backend:   StorageFile,
			Key:       DefaultStorageKey,
			RedisAddr: "127.0.0.1:6379",
			Watch:     true,
		},

		UI: UIConfig{
			Theme:            "dark",
			RevealIntervalMs: 50,
			ShowSidebar:      true,
		},

		Log: LogConfig{
			Level: "info",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the docbud configuration directory path.
// DOCBUD_HOME overrides the default ~/.docbud.
func ConfigDir() (string, error) {
	if dir := os.Getenv("DOCBUD_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".docbud"), nil
}

func configPath(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) { return configPath("config.toml") }

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) { return configPath("config.json") }

// ConfigPathYAML returns the path to the YAML config file.
func ConfigPathYAML() (string, error) { return configPath("config.yaml") }

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

// Load loads configuration from the first config file found, falling back to
// defaults. Environment overrides are applied last.
func Load() (*Config, error) {
	finders := []func() (string, error){ConfigPathTOML, ConfigPathJSON, ConfigPathYAML}
	for _, find := range finders {
		path, err := find()
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		return LoadFromPath(path)
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file path with full
// validation. The format is chosen by extension; unknown extensions are
// parsed as TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = LoadJSON(cfg, path)
	case ".yaml", ".yml":
		err = LoadYAML(cfg, path)
	default:
		err = LoadTOML(cfg, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
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

// LoadYAML decodes a YAML file over cfg.
func LoadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read YAML file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode YAML file: %w", err)
	}
	return nil
}

// SetDefaults fills any zero-value fields from Default().
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = defaults.Backend.BaseURL
	}
	if c.Backend.TimeoutSecs == 0 {
		c.Backend.TimeoutSecs = defaults.Backend.TimeoutSecs
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaults.Storage.Backend
	}
	c.Storage.Backend = strings.ToLower(c.Storage.Backend)
	if c.Storage.Key == "" {
		c.Storage.Key = defaults.Storage.Key
	}
	if c.Storage.RedisAddr == "" {
		c.Storage.RedisAddr = defaults.Storage.RedisAddr
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.UI.RevealIntervalMs == 0 {
		c.UI.RevealIntervalMs = defaults.UI.RevealIntervalMs
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}

	// Trailing slashes would produce //upload_pdf/
	c.Backend.BaseURL = strings.TrimRight(c.Backend.BaseURL, "/")
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - DOCBUD_BACKEND_URL: overrides backend.base_url
//   - DOCBUD_BACKEND_TIMEOUT: overrides backend.timeout_secs
//   - DOCBUD_STORAGE_BACKEND: overrides storage.backend
//   - DOCBUD_STORAGE_PATH: overrides storage.path
//   - DOCBUD_STORAGE_KEY: overrides storage.key
//   - DOCBUD_REDIS_ADDR: overrides storage.redis_addr
//   - DOCBUD_LOG_LEVEL: overrides log.level
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("DOCBUD_BACKEND_URL"); v != "" {
		c.Backend.BaseURL = v
	}
	if v := os.Getenv("DOCBUD_BACKEND_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.Backend.TimeoutSecs = secs
		}
	}
	if v := os.Getenv("DOCBUD_STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("DOCBUD_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("DOCBUD_STORAGE_KEY"); v != "" {
		c.Storage.Key = v
	}
	if v := os.Getenv("DOCBUD_REDIS_ADDR"); v != "" {
		c.Storage.RedisAddr = v
	}
	if v := os.Getenv("DOCBUD_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// SaveTOML saves the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var sb strings.Builder
	sb.WriteString("# docbud configuration file\n")
	sb.WriteString("# Generated by docbud - edit with care\n\n")
	if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	if err := util.AtomicWritePrivate(path, []byte(sb.String())); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
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
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.Backend.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "backend.base_url",
			Message: fmt.Sprintf("invalid URL '%s', must be absolute (e.g. http://127.0.0.1:8000)", c.Backend.BaseURL),
		})
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, ValidationError{
			Field:   "backend.base_url",
			Message: fmt.Sprintf("unsupported scheme '%s', must be http or https", u.Scheme),
		})
	}

	if c.Backend.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{Field: "backend.timeout_secs", Message: "cannot be negative"})
	}
	if c.Backend.RequestsPerSecond < 0 {
		errs = append(errs, ValidationError{Field: "backend.requests_per_second", Message: "cannot be negative"})
	}

	validBackends := map[string]bool{StorageFile: true, StorageSQLite: true, StorageRedis: true, StorageMemory: true}
	if !validBackends[strings.ToLower(c.Storage.Backend)] {
		errs = append(errs, ValidationError{
			Field:   "storage.backend",
			Message: fmt.Sprintf("invalid backend '%s', must be one of: file, sqlite, redis, memory", c.Storage.Backend),
		})
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		errs = append(errs, ValidationError{Field: "storage.key", Message: "cannot be empty"})
	}
	if c.Storage.RedisDB < 0 {
		errs = append(errs, ValidationError{Field: "storage.redis_db", Message: "cannot be negative"})
	}

	validThemes := map[string]bool{"dark": true, "light": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light", c.UI.Theme),
		})
	}
	if c.UI.RevealIntervalMs < 0 || c.UI.RevealIntervalMs > 5000 {
		errs = append(errs, ValidationError{Field: "ui.reveal_interval_ms", Message: "must be between 0 and 5000"})
	}

	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true, "disabled": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s'", c.Log.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// BackendTimeout returns the per-request timeout.
func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSecs) * time.Second
}

// RevealInterval returns the delay between revealed answer words.
func (c *Config) RevealInterval() time.Duration {
	return time.Duration(c.UI.RevealIntervalMs) * time.Millisecond
}

// StoragePath resolves the storage location, defaulting under ConfigDir:
// ~/.docbud/storage for the file backend and ~/.docbud/docbud.db for sqlite.
func (c *Config) StoragePath() (string, error) {
	if c.Storage.Path != "" {
		return c.Storage.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	if c.Storage.Backend == StorageSQLite {
		return filepath.Join(dir, "docbud.db"), nil
	}
	return filepath.Join(dir, "storage"), nil
}

// LogPath resolves the log file location.
func (c *Config) LogPath() (string, error) {
	if c.Log.Path != "" {
		return c.Log.Path, nil
	}
	return configPath("docbud.log")
}

// Clone creates a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns an indented JSON rendering for `docbud config`.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
