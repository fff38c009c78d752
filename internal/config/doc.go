// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for docbud.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - BackendConfig: Remote PDF question-answering service address and limits
//   - StorageConfig: Key-value backend holding the conversation blob
//   - UIConfig, LogConfig: Terminal and logging settings
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (DOCBUD_*)
//   - ~/.docbud/config.toml
//   - ~/.docbud/config.json
//   - ~/.docbud/config.yaml
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := backend.NewClient(backend.ClientConfig{BaseURL: cfg.Backend.BaseURL})
package config
