// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package kv provides flat key-value storage for docbud's persisted state.
//
// It plays the role a browser's local storage plays for a web client: a
// handful of string keys, each holding one opaque value that is always read
// and written whole. Backends: a directory of files, SQLite, Redis, and an
// in-memory map for tests.
package kv

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by Get when the key has never been written or was
// deleted.
var ErrNotFound = errors.New("kv: key not found")

// Storage is a whole-value key-value store. Implementations apply each Set
// atomically: a concurrent reader sees the old or the new value, never a mix.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Watcher is implemented by backends that can report writes made by other
// processes. The channel receives one value per external change and is
// closed when ctx ends.
type Watcher interface {
	Watch(ctx context.Context, key string) (<-chan struct{}, error)
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Backend   string
	Path      string // directory (file) or database file (sqlite)
	RedisAddr string
	RedisDB   int
}

// Open constructs the backend named in opts.
func Open(ctx context.Context, opts Options) (Storage, error) {
	switch strings.ToLower(opts.Backend) {
	case BackendFile, "":
		return NewFileStorage(opts.Path)
	case BackendSQLite:
		return NewSQLiteStorage(ctx, opts.Path)
	case BackendRedis:
		return NewRedisStorage(ctx, opts.RedisAddr, opts.RedisDB)
	case BackendMemory:
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("kv: unknown backend %q", opts.Backend)
	}
}
