package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/roomstats/internal/analytics"
	analyticsdb "github.com/odyssey-erp/roomstats/internal/analytics/db"
	"github.com/odyssey-erp/roomstats/internal/app"
	"github.com/odyssey-erp/roomstats/internal/platform/cache"
	pgdb "github.com/odyssey-erp/roomstats/internal/platform/db"
)

// backend holds the stores every analytics command needs.
type backend struct {
	pool    *pgxpool.Pool
	redis   *redis.Client
	queries *analyticsdb.Queries
	service *analytics.Service
}

// openBackend connects Postgres and Redis. Without Redis the service loads
// straight from Postgres unless requireRedis is set.
func openBackend(ctx context.Context, cfg *app.Config, logger *slog.Logger, requireRedis bool) (*backend, error) {
	pool, err := pgdb.New(ctx, cfg.PGDSN, pgdb.PoolOptions{
		MaxConns:        cfg.PGMaxConns,
		ReadOnly:        true,
		ApplicationName: "roomstats",
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	b := &backend{pool: pool, queries: analyticsdb.New(pool)}

	client, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	switch {
	case err != nil && requireRedis:
		pool.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	case err != nil:
		logger.Warn("redis unavailable, analytics cache disabled", slog.Any("error", err))
	default:
		b.redis = client
	}

	loc, err := cfg.Location()
	if err != nil {
		b.Close(logger)
		return nil, err
	}
	var analyticsCache *analytics.Cache
	if b.redis != nil {
		analyticsCache = analytics.NewCache(b.redis, cfg.AnalyticsCacheTTL)
	}
	b.service = analytics.NewService(b.queries, analyticsCache).WithLocation(loc)
	return b, nil
}

func (b *backend) Close(logger *slog.Logger) {
	if b == nil {
		return
	}
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}
	if b.pool != nil {
		b.pool.Close()
	}
}
