package database

import (
	"fmt"

	"github.com/anoixa/taskboard/config"
	"github.com/anoixa/taskboard/database/models"
	"go.uber.org/zap"
)

// Factory 数据库工厂
type Factory struct {
	provider Provider
	log      *zap.Logger
}

// NewFactory 创建新的数据库工厂
func NewFactory(cfg *config.Config, log *zap.Logger) (*Factory, error) {
	provider, err := NewGormProvider(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database provider: %w", err)
	}

	log.Info("database provider initialized", zap.String("type", provider.Name()))
	return &Factory{provider: provider, log: log}, nil
}

// GetProvider 获取数据库提供者
func (f *Factory) GetProvider() Provider {
	return f.provider
}

// Close 关闭数据库连接
func (f *Factory) Close() error {
	if f.provider != nil {
		return f.provider.Close()
	}
	return nil
}

// AutoMigrate 自动迁移数据库结构
func (f *Factory) AutoMigrate() error {
	if f.provider == nil {
		return fmt.Errorf("database provider not initialized")
	}

	f.log.Info("running database auto migration")
	if err := f.provider.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to auto migrate database: %w", err)
	}
	f.log.Info("database auto migration completed")
	return nil
}
