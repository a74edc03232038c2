package storage

import (
	"context"
	"fmt"

	"github.com/anoixa/taskboard/config"
	"go.uber.org/zap"
)

// NewProvider 按 storage_type 创建存储提供者
func NewProvider(ctx context.Context, cfg *config.Config, log *zap.Logger) (Provider, error) {
	var (
		provider Provider
		err      error
	)

	switch cfg.StorageType {
	case "local", "":
		provider, err = NewLocalStorage(cfg.UploadRoot)
	case "minio", "s3":
		provider, err = NewMinioStorage(ctx, MinioConfig{
			Endpoint:        cfg.StorageMinioEndpoint,
			AccessKeyID:     cfg.StorageMinioAccessKey,
			SecretAccessKey: cfg.StorageMinioSecretKey,
			BucketName:      cfg.StorageMinioBucket,
			UseSSL:          cfg.StorageMinioUseSSL,
		})
	case "webdav":
		provider, err = NewWebDAVStorage(ctx, WebDAVConfig{
			URL:      cfg.StorageWebDAVURL,
			Username: cfg.StorageWebDAVUsername,
			Password: cfg.StorageWebDAVPassword,
			RootPath: cfg.StorageWebDAVRootPath,
		})
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.StorageType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s storage: %w", cfg.StorageType, err)
	}

	log.Info("storage provider initialized", zap.String("type", provider.Name()))
	return provider, nil
}
