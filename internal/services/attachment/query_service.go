package attachment

import (
	"context"
	"errors"
	"time"

	"github.com/anoixa/taskboard/database/models"
	"github.com/anoixa/taskboard/database/repo/attachments"
	"github.com/anoixa/taskboard/utils/format"
	"github.com/anoixa/taskboard/utils/generator"
)

// Finder 附件查询
type Finder interface {
	ListByEntity(ctx context.Context, entityType models.EntityKind, entityID uint) ([]attachments.Record, error)
	GetByID(ctx context.Context, id uint) (*attachments.Record, error)
}

// Entry 列表中的附件
type Entry struct {
	ID               uint              `json:"id"`
	Filename         string            `json:"filename"`
	OriginalFilename string            `json:"original_filename"`
	FilePath         string            `json:"file_path"`
	ThumbnailPath    *string           `json:"thumbnail_path"`
	FileType         models.FileKind   `json:"file_type"`
	FileSize         int64             `json:"file_size"`
	FormattedSize    string            `json:"formatted_size"`
	MimeType         string            `json:"mime_type"`
	Icon             string            `json:"icon"`
	IsImage          bool              `json:"is_image"`
	IsVideo          bool              `json:"is_video"`
	IsDocument       bool              `json:"is_document"`
	Width            int               `json:"width,omitempty"`
	Height           int               `json:"height,omitempty"`
	EntityType       models.EntityKind `json:"entity_type"`
	EntityID         uint              `json:"entity_id"`
	UploadedBy       uint              `json:"uploaded_by"`
	UploaderName     string            `json:"uploader_name"`
	Description      string            `json:"description"`
	CreatedAt        time.Time         `json:"created_at"`
}

// QueryService 附件查询
type QueryService struct {
	finder Finder
	urls   *URLBuilder
}

// NewQueryService 创建查询服务
func NewQueryService(finder Finder, urls *URLBuilder) *QueryService {
	return &QueryService{finder: finder, urls: urls}
}

// ListForEntity 列出实体的附件，最新的在前
func (s *QueryService) ListForEntity(ctx context.Context, ref EntityRef) ([]Entry, error) {
	records, err := s.finder.ListByEntity(ctx, ref.Kind, ref.ID)
	if err != nil {
		return nil, newError(CodeInternalError, "failed to list attachments", err)
	}

	entries := make([]Entry, 0, len(records))
	for i := range records {
		entries = append(entries, s.present(&records[i]))
	}
	return entries, nil
}

// Get 获取单个附件
func (s *QueryService) Get(ctx context.Context, id uint) (*Entry, error) {
	record, err := s.finder.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, attachments.ErrNotFound) {
			return nil, newError(CodeNotFoundOrForbidden, "Attachment not found", err)
		}
		return nil, newError(CodeInternalError, "failed to load attachment", err)
	}
	entry := s.present(record)
	return &entry, nil
}

func (s *QueryService) present(r *attachments.Record) Entry {
	ext := generator.ExtensionOf(r.Filename)
	e := Entry{
		ID:               r.ID,
		Filename:         r.Filename,
		OriginalFilename: r.OriginalFilename,
		FilePath:         s.urls.File(r.FilePath),
		FileType:         r.FileType,
		FileSize:         r.FileSize,
		FormattedSize:    format.HumanReadableSize(r.FileSize),
		MimeType:         r.MimeType,
		Icon:             Icon(r.FileType, ext),
		IsImage:          r.FileType == models.FileKindImage,
		IsVideo:          r.FileType == models.FileKindVideo,
		IsDocument:       r.FileType == models.FileKindDocument,
		Width:            r.Width,
		Height:           r.Height,
		EntityType:       r.EntityType,
		EntityID:         r.EntityID,
		UploadedBy:       r.UploadedBy,
		UploaderName:     r.UploaderName,
		Description:      r.Description,
		CreatedAt:        r.CreatedAt,
	}
	if e.IsImage && r.HasThumbnail() {
		thumb := s.urls.File(r.ThumbnailPath)
		e.ThumbnailPath = &thumb
	}
	return e
}
