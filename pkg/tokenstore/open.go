package tokenstore

import (
	"context"
	"fmt"
	"io"

	"github.com/angelmondragon/foodbank-client/pkg/config"
	"github.com/angelmondragon/foodbank-client/pkg/db"
	"github.com/angelmondragon/foodbank-client/pkg/logger"
	"github.com/angelmondragon/foodbank-client/pkg/redis"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds a Store whose durable scope is the backend named in cfg.TokenStore.
// The returned closer releases the backend connection.
func Open(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*Store, io.Closer, error) {
	profile := cfg.TokenStore.Profile
	switch cfg.TokenStore.Backend {
	case config.TokenBackendMemory:
		return New(NewMemoryBackend(), nil), nopCloser{}, nil
	case config.TokenBackendRedis:
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, nil, err
		}
		backend, err := NewRedisBackend(client, profile)
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return New(backend, nil), client, nil
	case config.TokenBackendSQLite, config.TokenBackendPostgres:
		client, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, nil, err
		}
		backend, err := NewSQLBackend(ctx, client, profile)
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return New(backend, nil), client, nil
	default:
		return nil, nil, fmt.Errorf("unsupported token backend %q", cfg.TokenStore.Backend)
	}
}
