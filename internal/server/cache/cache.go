// Package cache keeps a short-lived copy of each user's avatar key so
// avatar reads can skip the database.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// AvatarKeys caches user id → avatar object key.
type AvatarKeys interface {
	// Get reports ok=false on a miss.
	Get(ctx context.Context, userID int64) (key string, ok bool, err error)
	Set(ctx context.Context, userID int64, key string) error
	// Fill stores key only if no entry exists, so a value read from the
	// database never replaces one written by a newer upload.
	Fill(ctx context.Context, userID int64, key string) error
}

const keyPrefix = "avatar_key:"

// RedisAvatarKeys stores entries as plain strings with a TTL.
type RedisAvatarKeys struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAvatarKeys(client *redis.Client, ttl time.Duration) *RedisAvatarKeys {
	return &RedisAvatarKeys{client: client, ttl: ttl}
}

// NewRedisClient connects to addr and pings it.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

func redisKey(userID int64) string {
	return keyPrefix + strconv.FormatInt(userID, 10)
}

func (c *RedisAvatarKeys) Get(ctx context.Context, userID int64) (string, bool, error) {
	v, err := c.client.Get(ctx, redisKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return v, true, nil
}

func (c *RedisAvatarKeys) Set(ctx context.Context, userID int64, key string) error {
	if err := c.client.Set(ctx, redisKey(userID), key, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *RedisAvatarKeys) Fill(ctx context.Context, userID int64, key string) error {
	if err := c.client.SetNX(ctx, redisKey(userID), key, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	return nil
}

// Nop never stores anything. It is used when no Redis address is configured.
type Nop struct{}

func (Nop) Get(context.Context, int64) (string, bool, error) { return "", false, nil }

func (Nop) Set(context.Context, int64, string) error { return nil }

func (Nop) Fill(context.Context, int64, string) error { return nil }
