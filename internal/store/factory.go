package store

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/matthieukhl/shopcore/internal/config"
	"github.com/matthieukhl/shopcore/internal/database"
)

// Open creates the store selected by cfg.Store.Driver
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		return NewMemory(), nil
	case config.DriverMySQL:
		db, err := database.NewConnection(&cfg.DB)
		if err != nil {
			return nil, err
		}
		if err := db.SetupSchema(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to setup schema: %w", err)
		}
		return NewMySQL(db), nil
	case config.DriverPostgres:
		return OpenPostgres(cfg.Postgres.DSN)
	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		return NewRedis(client, cfg.Store.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}
