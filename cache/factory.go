package cache

import (
	"context"
	"fmt"

	"github.com/anoixa/taskboard/cache/memory"
	"github.com/anoixa/taskboard/cache/redis"
	"github.com/anoixa/taskboard/config"
	"go.uber.org/zap"
)

const redisKeyPrefix = "taskboard:"

// NewProvider 按配置创建缓存提供者
// redis 不可用时退回内存缓存，配置缓存丢失不影响正确性
func NewProvider(ctx context.Context, cfg *config.Config, log *zap.Logger) (Provider, error) {
	switch cfg.CacheType {
	case "redis":
		provider, err := redis.NewRedis(ctx, redis.Config{
			Addr:     cfg.CacheRedisAddr,
			Password: cfg.CacheRedisPassword,
			DB:       cfg.CacheRedisDB,
			Prefix:   redisKeyPrefix,
		})
		if err == nil {
			log.Info("cache provider initialized", zap.String("type", "redis"), zap.String("addr", cfg.CacheRedisAddr))
			return provider, nil
		}
		log.Warn("redis cache unavailable, falling back to memory", zap.Error(err))
		fallthrough
	case "memory", "":
		provider, err := memory.NewMemory(memory.DefaultConfig())
		if err != nil {
			return nil, err
		}
		log.Info("cache provider initialized", zap.String("type", "memory"))
		return provider, nil
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.CacheType)
	}
}
