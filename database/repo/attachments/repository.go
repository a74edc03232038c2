package attachments

import (
	"context"
	"errors"
	"fmt"

	"github.com/anoixa/taskboard/database"
	"github.com/anoixa/taskboard/database/models"
	"gorm.io/gorm"
)

var (
	// ErrNotFound 附件不存在
	ErrNotFound = fmt.Errorf("attachment not found: %w", gorm.ErrRecordNotFound)
	// ErrNotFoundOrForbidden 附件不存在或不属于调用者，两种情况不做区分
	ErrNotFoundOrForbidden = errors.New("attachment not found or not owned by caller")
)

// Record 附件记录及上传者名称
type Record struct {
	models.Attachment
	UploaderName string `json:"uploader_name"`
}

// Repository 附件仓库
type Repository struct {
	db database.Provider
}

// NewRepository 创建附件仓库
func NewRepository(db database.Provider) *Repository {
	return &Repository{db: db}
}

// Create 在事务中插入一条附件记录并返回 ID
func (r *Repository) Create(ctx context.Context, attachment *models.Attachment) (uint, error) {
	err := r.db.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		return tx.Create(attachment).Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to insert attachment: %w", err)
	}
	return attachment.ID, nil
}

// withUploader 关联上传者显示名称
func (r *Repository) withUploader(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("attachments").
		Select("attachments.*, COALESCE(NULLIF(users.full_name, ''), users.username, '') AS uploader_name").
		Joins("LEFT JOIN users ON users.id = attachments.uploaded_by")
}

// ListByEntity 列出实体的全部附件，最新的在前
func (r *Repository) ListByEntity(ctx context.Context, entityType models.EntityKind, entityID uint) ([]Record, error) {
	records := make([]Record, 0)
	err := r.withUploader(ctx).
		Where("attachments.entity_type = ? AND attachments.entity_id = ?", entityType, entityID).
		Order("attachments.created_at DESC").
		Order("attachments.id DESC").
		Scan(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments for %s %d: %w", entityType, entityID, err)
	}
	return records, nil
}

// GetByID 根据 ID 获取附件
func (r *Repository) GetByID(ctx context.Context, id uint) (*Record, error) {
	var records []Record
	err := r.withUploader(ctx).
		Where("attachments.id = ?", id).
		Limit(1).
		Scan(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get attachment %d: %w", id, err)
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	return &records[0], nil
}

// DeleteOwned 删除属于 uploaderID 的附件，返回被删除的行
func (r *Repository) DeleteOwned(ctx context.Context, id, uploaderID uint) (*models.Attachment, error) {
	var deleted models.Attachment
	err := r.db.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND uploaded_by = ?", id, uploaderID).Limit(1).Find(&deleted)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFoundOrForbidden
		}

		result = tx.Where("id = ? AND uploaded_by = ?", id, uploaderID).Delete(&models.Attachment{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFoundOrForbidden
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFoundOrForbidden) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to delete attachment %d: %w", id, err)
	}
	return &deleted, nil
}

// StoredPaths 返回所有被记录引用的存储路径（原文件和缩略图）
func (r *Repository) StoredPaths(ctx context.Context) (map[string]struct{}, error) {
	var rows []struct {
		FilePath      string
		ThumbnailPath string
	}
	if err := r.db.WithContext(ctx).Model(&models.Attachment{}).
		Select("file_path, thumbnail_path").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load attachment paths: %w", err)
	}

	paths := make(map[string]struct{}, len(rows)*2)
	for _, row := range rows {
		paths[row.FilePath] = struct{}{}
		if row.ThumbnailPath != "" {
			paths[row.ThumbnailPath] = struct{}{}
		}
	}
	return paths, nil
}
