// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package kv

import (
	"context"
	"crypto/sha256"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Storage {
	t.Helper()
	ctx := context.Background()

	file, err := NewFileStorage(filepath.Join(t.TempDir(), "store"))
	require.NoError(t, err)
	sqlite, err := NewSQLiteStorage(ctx, filepath.Join(t.TempDir(), "docbud.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Storage{
		"memory": NewMemoryStorage(),
		"file":   file,
		"sqlite": sqlite,
	}
}

func TestStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, "pdf-chat-conversations")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Set(ctx, "pdf-chat-conversations", []byte(`[1]`)))
			require.NoError(t, s.Set(ctx, "pdf-chat-conversations", []byte(`[1,2]`)))

			got, err := s.Get(ctx, "pdf-chat-conversations")
			require.NoError(t, err)
			assert.Equal(t, `[1,2]`, string(got))

			require.NoError(t, s.Delete(ctx, "pdf-chat-conversations"))
			_, err = s.Get(ctx, "pdf-chat-conversations")
			assert.ErrorIs(t, err, ErrNotFound)

			// deleting a missing key is not an error
			assert.NoError(t, s.Delete(ctx, "pdf-chat-conversations"))
		})
	}
}

func TestMemoryStorage_CopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStorage()
	buf := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", buf))
	buf[0] = 'x'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
	assert.Equal(t, 1, m.Writes())
}

func TestFileStorage_PathEscapesKey(t *testing.T) {
	f, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, f.Dir(), filepath.Dir(f.Path("../escape")))
}

func TestFileStorage_RequiresDir(t *testing.T) {
	_, err := NewFileStorage("")
	assert.Error(t, err)
}

func TestFileStorage_WatchReportsExternalWrites(t *testing.T) {
	f, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := f.Watch(ctx, "conv")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(f.Path("conv"), []byte(`{"version":1}`), 0600))

	select {
	case <-changes:
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported for external write")
	}

	cancel()
	for range changes {
	}
}

func TestFileStorage_OwnWriteIsRecognised(t *testing.T) {
	ctx := context.Background()
	f, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, f.Set(ctx, "conv", []byte("mine")))
	assert.True(t, f.isOwnWrite("conv"))

	require.NoError(t, os.WriteFile(f.Path("conv"), []byte("theirs"), 0600))
	assert.False(t, f.isOwnWrite("conv"))
}

func TestFileStorage_DigestRecordedBeforeRename(t *testing.T) {
	ctx := context.Background()
	f, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, f.Set(ctx, "conv", []byte("v1")))

	orig := writeFile
	t.Cleanup(func() { writeFile = orig })
	var ownDuringWrite bool
	writeFile = func(path string, data []byte) error {
		if err := orig(path, data); err != nil {
			return err
		}
		// a watch event handled right after the rename
		ownDuringWrite = f.isOwnWrite("conv")
		return nil
	}

	require.NoError(t, f.Set(ctx, "conv", []byte("v2")))
	assert.True(t, ownDuringWrite, "rename of our own write reported as external")
}

func TestFileStorage_FailedWriteRestoresDigest(t *testing.T) {
	ctx := context.Background()
	f, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, f.Set(ctx, "conv", []byte("v1")))

	// a directory in place of the file makes the rename fail
	require.NoError(t, os.Remove(f.Path("conv")))
	require.NoError(t, os.Mkdir(f.Path("conv"), 0700))
	require.NoError(t, os.WriteFile(filepath.Join(f.Path("conv"), "keep"), nil, 0600))

	assert.Error(t, f.Set(ctx, "conv", []byte("v2")))
	f.mu.Lock()
	last := f.written["conv"]
	f.mu.Unlock()
	assert.Equal(t, sha256.Sum256([]byte("v1")), last)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{Backend: BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStorage{}, s)

	s, err = Open(ctx, Options{Backend: "FILE", Path: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileStorage{}, s)
	_, ok := s.(Watcher)
	assert.True(t, ok, "file storage should support watching")

	_, err = Open(ctx, Options{Backend: "etcd"})
	assert.Error(t, err)

	_, err = Open(ctx, Options{Backend: BackendRedis})
	assert.Error(t, err, "redis without an address")
}

func TestRedisStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	srv := miniredis.RunT(t)

	s, err := Open(ctx, Options{Backend: BackendRedis, RedisAddr: srv.Addr()})
	require.NoError(t, err)
	defer s.Close()
	require.IsType(t, &RedisStorage{}, s)

	_, err = s.Get(ctx, "conv")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "conv", []byte(`{"version":1}`)))
	got, err := s.Get(ctx, "conv")
	require.NoError(t, err)
	assert.Equal(t, `{"version":1}`, string(got))

	raw, err := srv.Get(redisPrefix + "conv")
	require.NoError(t, err)
	assert.Equal(t, `{"version":1}`, raw, "value stored under the prefixed key")

	require.NoError(t, s.Delete(ctx, "conv"))
	_, err = s.Get(ctx, "conv")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, s.Delete(ctx, "conv"), "deleting a missing key")
}

func TestRedisStorage_Unreachable(t *testing.T) {
	srv := miniredis.RunT(t)
	addr := srv.Addr()
	srv.Close()

	_, err := NewRedisStorage(context.Background(), addr, 0)
	assert.Error(t, err)
}

// TestRedisStorage_Server runs against a real server when REDIS_ADDR is set.
func TestRedisStorage_Server(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	s, err := NewRedisStorage(ctx, addr, 0)
	require.NoError(t, err)
	defer s.Close()

	key := "test-" + t.Name()
	t.Cleanup(func() { _ = s.Delete(ctx, key) })

	require.NoError(t, s.Set(ctx, key, []byte("value")))
	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "value", string(got))
}
