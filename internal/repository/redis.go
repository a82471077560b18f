package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hotelbook/internal/config"

	"github.com/redis/go-redis/v9"
)

// compareAndDelete removes KEYS[1] only while it still holds ARGV[1].
var compareAndDelete = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

// RedisStore implements domain.KVStore on top of a shared Redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisClient builds a client from the redis config section.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.OpTimeout,
		WriteTimeout: cfg.OpTimeout,
	}

	return redis.NewClient(options)
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	if r.client == nil {
		return "", false, errNilClient
	}
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s from redis: %w", key, err)
	}
	return val, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if r.client == nil {
		return errNilClient
	}
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s in redis: %w", key, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if r.client == nil {
		return errNilClient
	}
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete %s from redis: %w", key, err)
	}
	return nil
}

// SetNX is a single SET key value NX PX ttl.
func (r *RedisStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	if r.client == nil {
		return false, errNilClient
	}
	ok, err := r.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to setnx %s in redis: %w", key, err)
	}
	return ok, nil
}

func (r *RedisStore) CompareAndDelete(ctx context.Context, key, value string) (bool, error) {
	if r.client == nil {
		return false, errNilClient
	}
	n, err := compareAndDelete.Run(ctx, r.client, []string{key}, value).Int64()
	if err != nil {
		return false, fmt.Errorf("failed to compare-and-delete %s in redis: %w", key, err)
	}
	return n == 1, nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	if r.client == nil {
		return errNilClient
	}
	return Ping(ctx, r.client)
}

var errNilClient = errors.New("redis client is nil")

// Ping checks the Redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
