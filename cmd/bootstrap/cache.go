package bootstrap

import (
	"context"
	"log/slog"

	"spa-storefront/internal/infra/cache"
	"spa-storefront/internal/pkg/config"
	"spa-storefront/internal/usecase/commands"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var CacheModule = fx.Module("cache",
	fx.Provide(
		NewCartCache,
	),
)

// NewCartCache falls back to a cache that always misses when no address is set.
func NewCartCache(lc fx.Lifecycle, cfg config.Config) commands.CartCache {
	if cfg.Redis.Addr == "" {
		slog.Info("cart cache disabled")
		return cache.Noop{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// an unreachable cache only costs hit rate
			if err := client.Ping(ctx).Err(); err != nil {
				slog.Warn("redis ping failed", "addr", cfg.Redis.Addr, "error", err.Error())
			}
			return nil
		},
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})
	return cache.NewRedisCartCache(client, cfg.Redis.CartTTL)
}
