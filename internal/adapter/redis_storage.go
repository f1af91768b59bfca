package adapter

import (
	"context"
	"errors"
	"time"

	"quiz-forge/internal/cache"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const (
	storageServiceName = "ratelimit"
	storageObjectType  = "window"
	scanBatchSize      = 100
)

// RedisStorage implements fiber.Storage on top of a Redis client so the
// limiter counters are shared by every API instance.
type RedisStorage struct {
	client  *redis.Client
	timeout time.Duration
}

// NewRedisStorage creates a new instance of RedisStorage.
// It expects a connected *redis.Client.
func NewRedisStorage(client *redis.Client) *RedisStorage {
	return &RedisStorage{client: client, timeout: 2 * time.Second}
}

func (r *RedisStorage) key(key string) string {
	return cache.GenerateCacheKey(storageServiceName, storageObjectType, key)
}

func (r *RedisStorage) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), r.timeout)
}

// Get returns nil, nil when the key does not exist.
func (r *RedisStorage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	ctx, cancel := r.ctx()
	defer cancel()

	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return val, nil
}

// Set ignores empty keys and values. An exp of 0 means no expiration.
func (r *RedisStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	ctx, cancel := r.ctx()
	defer cancel()
	return r.client.Set(ctx, r.key(key), val, exp).Err()
}

func (r *RedisStorage) Delete(key string) error {
	if key == "" {
		return nil
	}
	ctx, cancel := r.ctx()
	defer cancel()
	return r.client.Del(ctx, r.key(key)).Err()
}

// Reset deletes every key owned by this storage. Other keys in the database are left alone.
func (r *RedisStorage) Reset() error {
	ctx, cancel := r.ctx()
	defer cancel()

	match := r.key("*")
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, match, scanBatchSize).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func (r *RedisStorage) Close() error {
	return r.client.Close()
}

var _ fiber.Storage = (*RedisStorage)(nil)
