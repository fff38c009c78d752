// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "http://127.0.0.1:8000", cfg.Backend.BaseURL)
	assert.Equal(t, DefaultStorageKey, cfg.Storage.Key)
	assert.Equal(t, StorageFile, cfg.Storage.Backend)
	assert.Equal(t, 50*time.Millisecond, cfg.RevealInterval())
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	t.Setenv("DOCBUD_HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default().Backend.BaseURL, cfg.Backend.BaseURL)
}

func TestLoad_PrefersTOML(t *testing.T) {
	home := t.TempDir()
	t.Setenv("DOCBUD_HOME", home)

	require.NoError(t, os.WriteFile(filepath.Join(home, "config.toml"), []byte(`
[backend]
base_url = "http://toml.example:9000/"
`), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.json"), []byte(`{"backend":{"base_url":"http://json.example"}}`), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	// trailing slash trimmed by SetDefaults
	assert.Equal(t, "http://toml.example:9000", cfg.Backend.BaseURL)
}

func TestLoadFromPath_Formats(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"toml", "c.toml", "[storage]\nbackend = \"sqlite\"\nkey = \"k1\"\n"},
		{"json", "c.json", `{"storage":{"backend":"sqlite","key":"k1"}}`},
		{"yaml", "c.yaml", "storage:\n  backend: sqlite\n  key: k1\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.file)
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0600))

			cfg, err := LoadFromPath(path)
			require.NoError(t, err)
			assert.Equal(t, StorageSQLite, cfg.Storage.Backend)
			assert.Equal(t, "k1", cfg.Storage.Key)
			// untouched sections keep defaults
			assert.Equal(t, 50, cfg.UI.RevealIntervalMs)
		})
	}
}

func TestLoadFromPath_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[backend\nbase_url="), 0600))

	_, err := LoadFromPath(path)
	assert.Error(t, err)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("DOCBUD_BACKEND_URL", "https://qa.internal")
	t.Setenv("DOCBUD_BACKEND_TIMEOUT", "15")
	t.Setenv("DOCBUD_STORAGE_BACKEND", "redis")
	t.Setenv("DOCBUD_STORAGE_KEY", "team-chat")
	t.Setenv("DOCBUD_REDIS_ADDR", "redis:6380")
	t.Setenv("DOCBUD_LOG_LEVEL", "debug")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "https://qa.internal", cfg.Backend.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.BackendTimeout())
	assert.Equal(t, "redis", cfg.Storage.Backend)
	assert.Equal(t, "team-chat", cfg.Storage.Key)
	assert.Equal(t, "redis:6380", cfg.Storage.RedisAddr)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestValidate_CollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.Backend.BaseURL = "not a url"
	cfg.Storage.Backend = "postgres"
	cfg.Storage.Key = " "
	cfg.UI.Theme = "neon"
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)

	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))

	fields := map[string]bool{}
	for _, e := range verrs {
		fields[e.Field] = true
	}
	for _, want := range []string{"backend.base_url", "storage.backend", "storage.key", "ui.theme", "log.level"} {
		assert.True(t, fields[want], "missing validation error for %s", want)
	}
}

func TestValidate_RejectsNonHTTPScheme(t *testing.T) {
	cfg := Default()
	cfg.Backend.BaseURL = "ftp://files.example"
	assert.Error(t, cfg.Validate())
}

func TestStoragePath_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("DOCBUD_HOME", home)

	cfg := Default()
	path, err := cfg.StoragePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "storage"), path)

	cfg.Storage.Backend = StorageSQLite
	path, err = cfg.StoragePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "docbud.db"), path)

	cfg.Storage.Path = "/tmp/custom.db"
	path, err = cfg.StoragePath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.db", path)
}

func TestSaveTOML_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Backend.BaseURL = "http://saved.example:8000"
	cfg.UI.Theme = "light"
	require.NoError(t, SaveTOML(cfg, path))

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "http://saved.example:8000", loaded.Backend.BaseURL)
	assert.Equal(t, "light", loaded.UI.Theme)
}
