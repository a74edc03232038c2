package core

import (
	"net/http"

	"github.com/anoixa/taskboard/api/common"
	"github.com/anoixa/taskboard/api/handler/admin"
	"github.com/anoixa/taskboard/api/handler/attachments"
	"github.com/anoixa/taskboard/api/middleware"
	"github.com/anoixa/taskboard/cache"
	"github.com/anoixa/taskboard/config"
	configSvc "github.com/anoixa/taskboard/config/db"
	"github.com/anoixa/taskboard/database"
	"github.com/anoixa/taskboard/database/models"
	"github.com/anoixa/taskboard/internal/services/attachment"
	"github.com/anoixa/taskboard/storage"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxConcurrentUploads 同时处理的上传请求数
const maxConcurrentUploads = 32

// RouterDependencies 路由注册依赖
type RouterDependencies struct {
	DB          database.Provider
	Storage     storage.Provider
	Cache       cache.Provider
	Settings    *configSvc.Manager
	Tokens      middleware.TokenParser
	Attachments attachment.Dependencies
	Query       *attachment.QueryService
	Deleter     *attachment.DeleteService
	Access      *attachment.AccessChecker
	Config      *config.Config
	Logger      *zap.Logger
}

// limiters 路由使用的限流器，关闭服务时停止清理协程
type limiters struct {
	api    *middleware.IPRateLimiter
	upload *middleware.IPRateLimiter
	slots  *middleware.ConcurrencyLimiter
}

func newLimiters(cfg *config.Config) *limiters {
	return &limiters{
		api:    middleware.NewIPRateLimiter(cfg.RateLimitApiRPS, cfg.RateLimitApiBurst, cfg.RateLimitExpireTime),
		upload: middleware.NewIPRateLimiter(cfg.RateLimitUploadRPS, cfg.RateLimitUploadBurst, cfg.RateLimitExpireTime),
		slots:  middleware.NewConcurrencyLimiter(maxConcurrentUploads),
	}
}

func (l *limiters) stop() {
	l.api.StopCleanup()
	l.upload.StopCleanup()
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(router *gin.Engine, deps *RouterDependencies) func() {
	l := newLimiters(deps.Config)

	registerBasicRoutes(router, deps)
	registerStaticRoutes(router, deps)
	registerAPIRoutes(router, deps, l)

	return l.stop
}

// registerBasicRoutes 注册基础路由
func registerBasicRoutes(router *gin.Engine, deps *RouterDependencies) {
	healthHandler := NewHealthHandler(deps.DB, deps.Storage, deps.Cache)
	router.GET("/health", healthHandler.Handle)

	router.GET("/version", func(c *gin.Context) {
		common.RespondSuccess(c, http.StatusOK, "", gin.H{
			"version": config.Version,
			"commit":  config.CommitHash,
		})
	})
}

// registerStaticRoutes 本地存储时直接提供上传文件，其他存储由前置服务或对象存储提供
func registerStaticRoutes(router *gin.Engine, deps *RouterDependencies) {
	local, ok := deps.Storage.(*storage.LocalStorage)
	if !ok {
		return
	}
	router.StaticFS(deps.Config.UploadPublicPrefix, &gin.OnlyFilesFS{FileSystem: local.HTTPFileSystem()})
}

// registerAPIRoutes 注册 API 路由
func registerAPIRoutes(router *gin.Engine, deps *RouterDependencies, l *limiters) {
	cfg := deps.Config

	attachmentHandler := attachments.NewHandler(
		deps.Settings,
		attachments.Limits{
			UploadMaxBytes:  cfg.UploadMaxBytes(),
			RequestMaxBytes: cfg.RequestMaxBytes(),
		},
		deps.Attachments,
		deps.Query,
		deps.Deleter,
		deps.Access,
		deps.Logger,
	)
	settingsHandler := admin.NewSettingsHandler(deps.Settings, deps.Logger)

	apiGroup := router.Group("/api")
	apiGroup.Use(func(c *gin.Context) { // 所有API禁止缓存
		c.Header("Cache-Control", "no-store")
		c.Next()
	})

	v1 := apiGroup.Group("/v1")
	v1.Use(l.api.Middleware())
	v1.Use(middleware.JWTAuth(deps.Tokens))
	{
		v1.POST("/upload", l.upload.Middleware(), l.slots.Middleware(), attachmentHandler.Upload) // POST /api/v1/upload
		v1.GET("/upload", attachmentHandler.List)                                                 // GET /api/v1/upload?entity_type=&entity_id=
		v1.GET("/upload/:id", attachmentHandler.Get)                                              // GET /api/v1/upload/{id}
		v1.DELETE("/upload", attachmentHandler.Delete)                                            // DELETE /api/v1/upload?id=

		adminGroup := v1.Group("/admin")
		adminGroup.Use(middleware.RequireRole(models.RoleAdmin))
		{
			adminGroup.GET("/settings/upload", settingsHandler.GetUploadSettings)    // GET /api/v1/admin/settings/upload
			adminGroup.PUT("/settings/upload", settingsHandler.UpdateUploadSettings) // PUT /api/v1/admin/settings/upload
		}
	}
}
