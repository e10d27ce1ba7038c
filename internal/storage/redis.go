package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/catalogcart/pkg/redis"
)

type redisClient interface {
	Get(context.Context, string) (string, error)
	Set(context.Context, string, any, time.Duration) error
	Del(context.Context, ...string) error
	Ping(context.Context) error
	Key(parts ...string) string
}

// Redis stores values under the service key namespace with an optional TTL.
type Redis struct {
	client redisClient
	ttl    time.Duration
}

func NewRedis(client redisClient, ttl time.Duration) (*Redis, error) {
	if client == nil {
		return nil, errors.New("redis client required")
	}
	return &Redis{client: client, ttl: ttl}, nil
}

func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, r.client.Key(key))
	if err != nil {
		if redis.IsNil(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.client.Key(key), value, r.ttl); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.client.Key(key)); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx)
}
