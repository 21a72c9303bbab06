package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/slotlist/slotlist/frontend/go-client/internal/config"
	"github.com/slotlist/slotlist/frontend/go-client/internal/database"
	"github.com/slotlist/slotlist/frontend/go-client/pkg/logger"
)

// Open builds the backend selected by cfg.Storage.Backend.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	ns, err := CheckNamespace(cfg.Storage.Namespace)
	if err != nil {
		return nil, err
	}
	backend := strings.ToLower(cfg.Storage.Backend)
	logger.Debugf("storage: opening %s backend (namespace=%s)", backend, ns)

	switch backend {
	case "memory":
		return NewMemoryStore(), nil
	case "", "file":
		return NewFileStore(cfg.Storage.Path, ns)
	case "sqlite":
		return OpenSQL(ctx, DialectSQLite, cfg.SQL.DSN, cfg.SQL.Table, ns)
	case "mysql":
		return OpenSQL(ctx, DialectMySQL, cfg.SQL.DSN, cfg.SQL.Table, ns)
	case "redis":
		addr := cfg.Redis.RedisAddress()
		if addr == "" {
			return nil, fmt.Errorf("storage: redis backend needs REDIS_HOST")
		}
		client := redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("storage: redis ping: %w", err)
		}
		s, err := NewRedisStore(client, ns)
		if err != nil {
			client.Close()
			return nil, err
		}
		return s, nil
	case "mongo", "mongodb":
		if cfg.MongoDB.URI == "" {
			return nil, fmt.Errorf("storage: mongo backend needs MONGODB_URI")
		}
		client, err := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		if err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
		col := client.Database(cfg.MongoDB.Database).Collection(cfg.MongoDB.Collection)
		if err := database.EnsureKeyIndex(ctx, col); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("storage: %w", err)
		}
		return NewMongoStore(client, col, ns), nil
	case "minio":
		return NewMinIOStore(ctx, cfg.MinIO, ns)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.Storage.Backend)
	}
}
