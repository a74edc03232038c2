package core

import (
	"context"
	"net/http"
	"time"

	"github.com/anoixa/taskboard/cache"
	"github.com/anoixa/taskboard/config"
	"github.com/anoixa/taskboard/database"
	"github.com/anoixa/taskboard/storage"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const healthCheckTimeout = 3 * time.Second

const healthProbeKey = "health:probe"

// HealthHandler 健康检查
type HealthHandler struct {
	db      database.Provider
	storage storage.Provider
	cache   cache.Provider
	started time.Time
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(db database.Provider, provider storage.Provider, cacheProvider cache.Provider) *HealthHandler {
	return &HealthHandler{
		db:      db,
		storage: provider,
		cache:   cacheProvider,
		started: time.Now(),
	}
}

// Handle 并行检查数据库、存储和缓存，任一失败返回 503
func (h *HealthHandler) Handle(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	var dbStatus, storageStatus, cacheStatus string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dbStatus = checkDatabaseHealth(gctx, h.db)
		return nil
	})
	g.Go(func() error {
		storageStatus = checkStorageHealth(gctx, h.storage)
		return nil
	})
	g.Go(func() error {
		cacheStatus = checkCacheHealth(gctx, h.cache)
		return nil
	})
	_ = g.Wait()

	checks := gin.H{
		"database": dbStatus,
		"storage":  storageStatus,
		"cache":    cacheStatus,
	}

	status, httpStatus := "ok", http.StatusOK
	for _, result := range checks {
		if result != "ok" {
			status, httpStatus = "degraded", http.StatusServiceUnavailable
			break
		}
	}

	c.JSON(httpStatus, gin.H{
		"status":  status,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
		"version": config.VersionString(),
		"checks":  checks,
	})
}

func checkDatabaseHealth(ctx context.Context, provider database.Provider) string {
	if provider == nil {
		return "not initialized"
	}
	if err := provider.Ping(ctx); err != nil {
		return "unavailable: " + err.Error()
	}
	return "ok"
}

func checkStorageHealth(ctx context.Context, provider storage.Provider) string {
	if provider == nil {
		return "not initialized"
	}
	if err := provider.Health(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

// checkCacheHealth 缓存只用于配置，不可用时同样报告
func checkCacheHealth(ctx context.Context, provider cache.Provider) string {
	if provider == nil {
		return "not initialized"
	}
	if _, err := provider.Exists(ctx, healthProbeKey); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
