package attachment

import (
	"context"
	"errors"

	"github.com/anoixa/taskboard/database/models"
	"github.com/anoixa/taskboard/database/repo/attachments"
	"github.com/anoixa/taskboard/storage"
	"go.uber.org/zap"
)

// Remover 附件删除
type Remover interface {
	DeleteOwned(ctx context.Context, id, uploaderID uint) (*models.Attachment, error)
}

// DeleteService 删除附件，只有上传者可以删除
type DeleteService struct {
	repo    Remover
	storage storage.Provider
	log     *zap.Logger
}

// NewDeleteService 创建删除服务
func NewDeleteService(repo Remover, provider storage.Provider, log *zap.Logger) *DeleteService {
	if log == nil {
		log = zap.NewNop()
	}
	return &DeleteService{repo: repo, storage: provider, log: log.Named("attachment-delete")}
}

// Delete 先删除记录，再删除原文件和缩略图
// 文件删除失败只记录日志
func (s *DeleteService) Delete(ctx context.Context, id, uploaderID uint) error {
	deleted, err := s.repo.DeleteOwned(ctx, id, uploaderID)
	if err != nil {
		if errors.Is(err, attachments.ErrNotFoundOrForbidden) {
			return newError(CodeNotFoundOrForbidden, "File not found or you don't have permission to delete it", err)
		}
		s.log.Error("failed to delete attachment record", zap.Uint("id", id), zap.Error(err))
		return newError(CodeInternalError, "failed to delete attachment", err)
	}

	for _, p := range []string{deleted.FilePath, deleted.ThumbnailPath} {
		if p == "" {
			continue
		}
		if err := s.storage.DeleteWithContext(ctx, p); err != nil && !errors.Is(err, storage.ErrNotFound) {
			s.log.Warn("failed to remove attachment file",
				zap.Uint("id", id),
				zap.String("path", p),
				zap.Error(err))
		}
	}

	s.log.Info("attachment deleted", zap.Uint("id", id), zap.Uint("uploader", uploaderID))
	return nil
}
