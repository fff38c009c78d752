// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/jeranaias/docbud-tui/internal/backend"
	"github.com/jeranaias/docbud-tui/internal/config"
	"github.com/jeranaias/docbud-tui/internal/kv"
	"github.com/jeranaias/docbud-tui/internal/session"
	"github.com/jeranaias/docbud-tui/internal/storage"
)

// =============================================================================
// APPLICATION WIRING
// =============================================================================

// App bundles the components every command works with.
type App struct {
	Config *config.Config
	KV     kv.Storage
	Store  *storage.Store
	Client *backend.Client
	Ctrl   *session.Controller

	// LoadErr is set when the stored blob could not be decoded. The store
	// then refuses writes until it is overwritten.
	LoadErr error
}

// OpenApp opens the configured storage backend, loads the conversation
// store and builds the backend client and controller.
func OpenApp(ctx context.Context, cfg *config.Config) (*App, error) {
	path, err := cfg.StoragePath()
	if err != nil {
		return nil, &ConfigError{Err: err}
	}

	backendKV, err := kv.Open(ctx, kv.Options{
		Backend:   cfg.Storage.Backend,
		Path:      path,
		RedisAddr: cfg.Storage.RedisAddr,
		RedisDB:   cfg.Storage.RedisDB,
	})
	if err != nil {
		return nil, &CommandError{Command: "storage", Reason: "cannot open " + cfg.Storage.Backend + " store", Err: err}
	}

	store := storage.NewStore(backendKV, cfg.Storage.Key)
	_, loadErr := store.Load(ctx)
	if loadErr != nil {
		log.Error().Err(loadErr).Str("key", cfg.Storage.Key).Msg("conversation history unreadable")
	}

	client := backend.NewClient(backend.ClientConfig{
		BaseURL:           cfg.Backend.BaseURL,
		Timeout:           cfg.BackendTimeout(),
		RequestsPerSecond: cfg.Backend.RequestsPerSecond,
	})

	return &App{
		Config:  cfg,
		KV:      backendKV,
		Store:   store,
		Client:  client,
		Ctrl:    session.NewController(store, client),
		LoadErr: loadErr,
	}, nil
}

// Watch subscribes to external changes of the store when the backend
// supports it. It returns nil otherwise.
func (a *App) Watch(ctx context.Context) <-chan struct{} {
	w, ok := a.KV.(kv.Watcher)
	if !ok {
		return nil
	}
	ch, err := w.Watch(ctx, a.Store.Key())
	if err != nil {
		log.Warn().Err(err).Msg("store watch unavailable")
		return nil
	}
	return ch
}

// Close releases the storage backend.
func (a *App) Close() error {
	return a.KV.Close()
}
