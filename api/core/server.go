package core

import (
	"net/http"
	"time"

	"github.com/anoixa/taskboard/api/middleware"
	"github.com/anoixa/taskboard/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// multipartMemory 超过该大小的上传分片写入临时文件
const multipartMemory = 8 << 20

// setupRouter 创建 gin 引擎和全局中间件
func setupRouter(deps *RouterDependencies) (*gin.Engine, func()) {
	cfg := deps.Config
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog(deps.Logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins(cfg.CORSAllowedOrigins),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: !allowsAnyOrigin(corsOrigins(cfg.CORSAllowedOrigins)),
		MaxAge:           12 * time.Hour,
	}))

	_ = router.SetTrustedProxies(nil)
	router.MaxMultipartMemory = multipartMemory

	// 请求体上限，超出时 multipart 解析失败并返回 413
	router.Use(middleware.MaxBytesReader(cfg.RequestMaxBytes()))

	cleanup := RegisterRoutes(router, deps)
	return router, cleanup
}

// corsOrigins 未配置时允许任意来源
func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// allowsAnyOrigin 通配来源不能与 credentials 同时使用
func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

// StartServer 创建 http.Server
func StartServer(deps *RouterDependencies) (*http.Server, func()) {
	cfg := deps.Config
	router, clean := setupRouter(deps)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return srv, clean
}
