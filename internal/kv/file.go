// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package kv

import (
	"bytes"
	"context"
	"crypto/sha256"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/docbud-tui/internal/util"
)

// FileStorage stores each key as one file in a directory.
type FileStorage struct {
	dir string

	mu sync.Mutex
	// last digest written by this process per key; watch events whose file
	// content matches are our own writes and are not reported
	written map[string][sha256.Size]byte
}

// NewFileStorage creates dir (0700) when missing.
func NewFileStorage(dir string) (*FileStorage, error) {
	if dir == "" {
		return nil, errors.New("kv: file backend needs a directory")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.Wrapf(err, "kv: create %s", dir)
	}
	return &FileStorage{dir: dir, written: make(map[string][sha256.Size]byte)}, nil
}

// Dir returns the storage directory.
func (f *FileStorage) Dir() string { return f.dir }

// Path returns the file backing key.
func (f *FileStorage) Path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key)+".json")
}

func (f *FileStorage) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "kv: read %s", key)
	}
	return data, nil
}

// writeFile is swapped in tests.
var writeFile = util.AtomicWritePrivate

// Set records the digest before the rename so a watch event raised by the
// rename is already recognised as our own.
func (f *FileStorage) Set(_ context.Context, key string, value []byte) error {
	sum := sha256.Sum256(value)
	f.mu.Lock()
	prev, hadPrev := f.written[key]
	f.written[key] = sum
	f.mu.Unlock()

	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	if err := writeFile(f.Path(key), value); err != nil {
		f.mu.Lock()
		if f.written[key] == sum {
			if hadPrev {
				f.written[key] = prev
			} else {
				delete(f.written, key)
			}
		}
		f.mu.Unlock()
		return errors.Wrapf(err, "kv: write %s", key)
	}
	return nil
}

func (f *FileStorage) Delete(_ context.Context, key string) error {
	if err := os.Remove(f.Path(key)); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "kv: delete %s", key)
	}
	f.mu.Lock()
	delete(f.written, key)
	f.mu.Unlock()
	return nil
}

func (f *FileStorage) Close() error { return nil }

// Watch reports writes to key made by other processes. The directory is
// watched rather than the file because atomic renames replace the inode.
func (f *FileStorage) Watch(ctx context.Context, key string) (<-chan struct{}, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "kv: create watcher")
	}
	if err := w.Add(f.dir); err != nil {
		w.Close()
		return nil, errors.Wrapf(err, "kv: watch %s", f.dir)
	}

	target := filepath.Clean(f.Path(key))
	out := make(chan struct{}, 1)

	go func() {
		defer close(out)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
					continue
				}
				if f.isOwnWrite(key) {
					continue
				}
				select {
				case out <- struct{}{}:
				default: // a change is already pending
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Str("dir", f.dir).Msg("storage watcher error")
			}
		}
	}()

	return out, nil
}

func (f *FileStorage) isOwnWrite(key string) bool {
	data, err := os.ReadFile(f.Path(key))
	f.mu.Lock()
	defer f.mu.Unlock()
	last, ok := f.written[key]
	if err != nil {
		// removed: ours only if we deleted it
		return !ok
	}
	sum := sha256.Sum256(data)
	return ok && bytes.Equal(sum[:], last[:])
}
