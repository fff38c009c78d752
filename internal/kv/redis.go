// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package kv

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// redisPrefix namespaces docbud keys in a shared Redis database.
const redisPrefix = "docbud:"

// RedisStorage stores values as plain Redis strings.
type RedisStorage struct {
	client *redis.Client
}

// NewRedisStorage connects to addr and verifies the connection with PING.
func NewRedisStorage(ctx context.Context, addr string, db int) (*RedisStorage, error) {
	if addr == "" {
		return nil, errors.New("kv: redis backend needs an address")
	}
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrapf(err, "kv: connect to redis at %s", addr)
	}
	return &RedisStorage{client: client}, nil
}

func (r *RedisStorage) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, redisPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "kv: get %s", key)
	}
	return value, nil
}

func (r *RedisStorage) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, redisPrefix+key, value, 0).Err(); err != nil {
		return errors.Wrapf(err, "kv: set %s", key)
	}
	return nil
}

func (r *RedisStorage) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, redisPrefix+key).Err(); err != nil {
		return errors.Wrapf(err, "kv: delete %s", key)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	return r.client.Close()
}
