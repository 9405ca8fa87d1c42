// Package wire 提供依赖注入配置
package wire

import (
	"context"
	"fmt"

	"flow-writer-api/internal/config"
	"flow-writer-api/internal/domain/repository"
	"flow-writer-api/internal/infrastructure/persistence/file"
	"flow-writer-api/internal/infrastructure/persistence/postgres"
	"flow-writer-api/internal/infrastructure/persistence/redis"
	"flow-writer-api/pkg/logger"
)

// ProvideProjectStore 按配置选择项目存储后端
func ProvideProjectStore(cfg *config.Config) (repository.ProjectStore, func(), error) {
	switch cfg.Storage.Driver {
	case "", "file":
		store, err := file.NewStore(&cfg.Storage.File)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil

	case "postgres":
		client, err := postgres.NewClient(&cfg.Storage.Postgres)
		if err != nil {
			return nil, nil, err
		}
		store, err := postgres.NewProjectStore(client)
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return store, func() { _ = client.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}
}

// ProvideRedisClient 未启用 Redis 时返回 nil，缓存与限流退化为直通
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	if !cfg.Cache.Redis.Enabled {
		logger.Warn(context.Background(), "redis disabled, cache and rate limiting are degraded")
		return nil, func() {}, nil
	}

	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideCache 创建缓存服务；Redis 缺失时为 nil
func ProvideCache(client *redis.Client) *redis.Cache {
	if client == nil {
		return nil
	}
	return redis.NewCache(client)
}

// ProvideRateLimiter 创建限流器；Redis 缺失时为 nil
func ProvideRateLimiter(client *redis.Client) *redis.RateLimiter {
	if client == nil {
		return nil
	}
	return redis.NewRateLimiter(client)
}
