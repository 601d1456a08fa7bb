package services

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by KeyValue.Get for absent or expired keys.
var ErrCacheMiss = errors.New("cache miss")

// KeyValue is the redis surface used for sessions and sign-in state.
type KeyValue interface {
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	// Take reads and deletes key in one step.
	Take(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type RedisKV struct {
	client *redis.Client
}

func NewRedisKV(client *redis.Client) *RedisKV {
	return &RedisKV{client: client}
}

func (r *RedisKV) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	return missing(r.client.Get(ctx, key).Result())
}

func (r *RedisKV) Take(ctx context.Context, key string) (string, error) {
	return missing(r.client.GetDel(ctx, key).Result())
}

func (r *RedisKV) Del(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

func missing(value string, err error) (string, error) {
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	return value, err
}
