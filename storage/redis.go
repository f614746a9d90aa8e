package storage

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Redis stores items as fields of one Redis hash.
type Redis struct {
	client redis.UniversalClient
	hash   string
	owned  bool
}

// NewRedis connects to addr and verifies the connection.
func NewRedis(ctx context.Context, addr, hash string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "ping redis %s", addr)
	}
	r := NewRedisFromClient(client, hash)
	r.owned = true
	return r, nil
}

// NewRedisFromClient uses an existing client. Close leaves it open.
func NewRedisFromClient(client redis.UniversalClient, hash string) *Redis {
	if hash == "" {
		hash = "furrystore:items"
	}
	return &Redis{client: client, hash: hash}
}

func (r *Redis) GetItem(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.HGet(ctx, r.hash, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *Redis) SetItem(ctx context.Context, key, value string) error {
	return r.client.HSet(ctx, r.hash, key, value).Err()
}

func (r *Redis) RemoveItem(ctx context.Context, key string) error {
	return r.client.HDel(ctx, r.hash, key).Err()
}

func (r *Redis) Keys(ctx context.Context) ([]string, error) {
	keys, err := r.client.HKeys(ctx, r.hash).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

func (r *Redis) Close() error {
	if !r.owned {
		return nil
	}
	return r.client.Close()
}
