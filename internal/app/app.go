package app

import (
	"context"
	"fmt"

	"github.com/anoixa/taskboard/cache"
	"github.com/anoixa/taskboard/config"
	configSvc "github.com/anoixa/taskboard/config/db"
	"github.com/anoixa/taskboard/database"
	"github.com/anoixa/taskboard/database/repo/attachments"
	"github.com/anoixa/taskboard/database/repo/entities"
	"github.com/anoixa/taskboard/database/repo/settings"
	"github.com/anoixa/taskboard/internal/auth"
	"github.com/anoixa/taskboard/internal/services/attachment"
	"github.com/anoixa/taskboard/storage"
	"github.com/anoixa/taskboard/utils/generator"
	"go.uber.org/zap"
)

// Container 依赖注入容器，管理所有服务的生命周期
type Container struct {
	config          *config.Config
	log             *zap.Logger
	databaseFactory *database.Factory
	cacheProvider   cache.Provider
	storageProvider storage.Provider
	configManager   *configSvc.Manager
	jwtService      *auth.JWTService
	attachmentDeps  *attachment.Dependencies

	AttachmentsRepo *attachments.Repository
	EntitiesRepo    *entities.Repository
	SettingsRepo    *settings.SettingRepository
}

// NewContainer 创建新的依赖注入容器
func NewContainer(cfg *config.Config, log *zap.Logger) *Container {
	if log == nil {
		log = zap.NewNop()
	}
	return &Container{config: cfg, log: log}
}

// Init 初始化全部依赖
func (c *Container) Init(ctx context.Context) error {
	if err := c.InitDatabase(); err != nil {
		return err
	}
	return c.InitServices(ctx)
}

// InitDatabase 只初始化数据库和仓库，migrate 命令使用
func (c *Container) InitDatabase() error {
	factory, err := database.NewFactory(c.config, c.log)
	if err != nil {
		return fmt.Errorf("failed to initialize database factory: %w", err)
	}
	c.databaseFactory = factory

	provider := factory.GetProvider()
	c.AttachmentsRepo = attachments.NewRepository(provider)
	c.EntitiesRepo = entities.NewRepository(provider)
	c.SettingsRepo = settings.NewRepository(provider)
	return nil
}

// InitServices 初始化缓存、存储和配置管理器
func (c *Container) InitServices(ctx context.Context) error {
	cacheProvider, err := cache.NewProvider(ctx, c.config, c.log)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	c.cacheProvider = cacheProvider

	storageProvider, err := storage.NewProvider(ctx, c.config, c.log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	c.storageProvider = storageProvider

	c.configManager = configSvc.NewManager(c.SettingsRepo, c.cacheProvider, c.config.SettingsCacheTTL, c.log)
	return nil
}

// Migrate 自动迁移并写入缺失的默认配置
func (c *Container) Migrate(ctx context.Context) error {
	if err := c.databaseFactory.AutoMigrate(); err != nil {
		return err
	}
	manager := c.configManager
	if manager == nil {
		manager = configSvc.NewManager(c.SettingsRepo, nil, 0, c.log)
	}
	return manager.EnsureDefaults(ctx)
}

// GetJWTService 获取令牌服务，未配置密钥时返回错误
func (c *Container) GetJWTService() (*auth.JWTService, error) {
	if c.jwtService == nil {
		svc, err := auth.NewJWTService(c.config.JWTSecret, c.config.JWTExpiresIn)
		if err != nil {
			return nil, err
		}
		c.jwtService = svc
	}
	return c.jwtService, nil
}

// AttachmentDependencies 上传编排使用的依赖，Processor 的并发上限在所有请求间共享
func (c *Container) AttachmentDependencies() attachment.Dependencies {
	if c.attachmentDeps == nil {
		c.attachmentDeps = &attachment.Dependencies{
			Storage:   c.storageProvider,
			Store:     c.AttachmentsRepo,
			Namer:     attachment.NewNamer(generator.NewPathGenerator(), c.storageProvider),
			Processor: attachment.NewProcessor(c.storageProvider, c.config.GetWorkerCount()),
			URLs:      c.URLBuilder(),
			Logger:    c.log,
		}
	}
	return *c.attachmentDeps
}

// URLBuilder 存储路径到公开地址
func (c *Container) URLBuilder() *attachment.URLBuilder {
	return attachment.NewURLBuilder(c.config.UploadPublicPrefix)
}

// QueryService 附件查询
func (c *Container) QueryService() *attachment.QueryService {
	return attachment.NewQueryService(c.AttachmentsRepo, c.URLBuilder())
}

// DeleteService 附件删除
func (c *Container) DeleteService() *attachment.DeleteService {
	return attachment.NewDeleteService(c.AttachmentsRepo, c.storageProvider, c.log)
}

// AccessChecker 实体写权限
func (c *Container) AccessChecker() *attachment.AccessChecker {
	return attachment.NewAccessChecker(c.EntitiesRepo)
}

// Sweeper 孤立文件清理
func (c *Container) Sweeper() *attachment.Sweeper {
	return attachment.NewSweeper(c.AttachmentsRepo, c.storageProvider, c.log)
}

// GetDatabaseProvider 获取数据库提供者
func (c *Container) GetDatabaseProvider() database.Provider {
	if c.databaseFactory == nil {
		return nil
	}
	return c.databaseFactory.GetProvider()
}

// GetCacheProvider 获取缓存提供者
func (c *Container) GetCacheProvider() cache.Provider {
	return c.cacheProvider
}

// GetStorageProvider 获取存储提供者
func (c *Container) GetStorageProvider() storage.Provider {
	return c.storageProvider
}

// GetConfigManager 获取配置管理器
func (c *Container) GetConfigManager() *configSvc.Manager {
	return c.configManager
}

// GetConfig 获取配置
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// Close 关闭所有服务
func (c *Container) Close() error {
	if c.cacheProvider != nil {
		if err := c.cacheProvider.Close(); err != nil {
			c.log.Warn("error closing cache provider", zap.Error(err))
		}
	}
	if c.databaseFactory != nil {
		if err := c.databaseFactory.Close(); err != nil {
			return fmt.Errorf("error closing database: %w", err)
		}
	}
	return nil
}
