package tokenstore

import (
	"context"
	"fmt"
)

type redisKV interface {
	FirstOf(ctx context.Context, keys ...string) (string, bool, error)
	SetAll(ctx context.Context, values map[string]string) error
	Del(ctx context.Context, keys ...string) error
	TokenKey(profile, key string) string
}

// RedisBackend stores tokens in Redis under fb:token:<profile>:<key>.
type RedisBackend struct {
	client  redisKV
	profile string
}

func NewRedisBackend(client redisKV, profile string) (*RedisBackend, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &RedisBackend{client: client, profile: profile}, nil
}

func (r *RedisBackend) Get(ctx context.Context, keys ...string) (string, bool, error) {
	return r.client.FirstOf(ctx, r.namespaced(keys)...)
}

func (r *RedisBackend) SetAll(ctx context.Context, values map[string]string) error {
	namespaced := make(map[string]string, len(values))
	for k, v := range values {
		namespaced[r.client.TokenKey(r.profile, k)] = v
	}
	return r.client.SetAll(ctx, namespaced)
}

func (r *RedisBackend) Delete(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, r.namespaced(keys)...)
}

func (r *RedisBackend) namespaced(keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = r.client.TokenKey(r.profile, k)
	}
	return out
}
