package attachment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anoixa/taskboard/database/models"
	"github.com/anoixa/taskboard/storage"
	"github.com/anoixa/taskboard/utils"
	"github.com/anoixa/taskboard/utils/format"
	"go.uber.org/zap"
)

// Store 附件元数据持久化
type Store interface {
	Create(ctx context.Context, attachment *models.Attachment) (uint, error)
}

// UploadRequest 一次上传
// 调用方已确认上传者有权写入 Entity
type UploadRequest struct {
	File        RawUpload
	Entity      EntityRef
	UploaderID  uint
	Description string
}

// Descriptor 上传成功后返回的描述
type Descriptor struct {
	ID               uint            `json:"file_id"`
	Filename         string          `json:"filename"`
	OriginalFilename string          `json:"original_filename"`
	FilePath         string          `json:"file_path"`
	ThumbnailPath    *string         `json:"thumbnail_path"`
	FileSize         int64           `json:"file_size"`
	FileType         models.FileKind `json:"file_type"`
	MimeType         string          `json:"mime_type"`
	FormattedSize    string          `json:"formatted_size"`
	Icon             string          `json:"icon"`
	Width            int             `json:"width,omitempty"`
	Height           int             `json:"height,omitempty"`
}

// Dependencies 各请求共享的依赖
type Dependencies struct {
	Storage   storage.Provider
	Store     Store
	Namer     *Namer
	Processor *Processor
	URLs      *URLBuilder
	Logger    *zap.Logger
}

// UploadService 上传编排：校验、命名、落盘、后处理、探测、入库
type UploadService struct {
	cfg  UploadConfig
	deps Dependencies
	log  *zap.Logger
}

// NewUploadService cfg 为本次请求读取到的配置
func NewUploadService(cfg UploadConfig, deps Dependencies) *UploadService {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &UploadService{cfg: cfg, deps: deps, log: log.Named("upload")}
}

// Upload 执行上传
func (s *UploadService) Upload(ctx context.Context, req UploadRequest) (*Descriptor, error) {
	if err := Validate(req.File, s.cfg); err != nil {
		return nil, err
	}

	ext := req.File.Extension()
	kind := ClassifyExtension(ext)
	wantThumb := kind == models.FileKindImage && s.cfg.thumbnailsEnabled()

	dest, err := s.deps.Namer.Prepare(ctx, ext, kind, wantThumb)
	if err != nil {
		s.log.Error("failed to prepare upload destination", zap.Error(err))
		return nil, newError(CodeStorageError, "failed to prepare destination", err)
	}

	if err := s.move(ctx, req.File, dest.StoragePath); err != nil {
		s.log.Error("failed to store uploaded file",
			zap.String("path", dest.StoragePath),
			zap.String("original", utils.SanitizeLogFilename(req.File.Name)),
			zap.Error(err))
		return nil, newError(CodeStorageError, "failed to store file", err)
	}

	var dims Dimensions
	if kind == models.FileKindImage {
		dims, dest.ThumbnailPath = s.postProcess(ctx, ext, dest)
	}

	info, err := s.deps.Storage.Stat(ctx, dest.StoragePath)
	if err != nil {
		s.cleanup(dest)
		s.log.Error("failed to stat stored file", zap.String("path", dest.StoragePath), zap.Error(err))
		return nil, newError(CodeStorageError, "failed to read stored file", err)
	}

	mimeType, err := s.detectMime(ctx, dest.StoragePath)
	if err != nil {
		s.cleanup(dest)
		s.log.Error("failed to probe mime type", zap.String("path", dest.StoragePath), zap.Error(err))
		return nil, newError(CodeStorageError, "failed to read stored file", err)
	}

	record := &models.Attachment{
		Filename:         dest.Filename,
		OriginalFilename: sanitizeOriginalName(req.File.Name),
		FilePath:         dest.StoragePath,
		ThumbnailPath:    dest.ThumbnailPath,
		FileType:         kind,
		FileSize:         info.Size,
		MimeType:         mimeType,
		Width:            dims.Width,
		Height:           dims.Height,
		EntityType:       req.Entity.Kind,
		EntityID:         req.Entity.ID,
		UploadedBy:       req.UploaderID,
		Description:      strings.TrimSpace(req.Description),
	}

	id, err := s.deps.Store.Create(ctx, record)
	if err != nil {
		// 入库失败时删除已落盘的文件，残留由 clean 命令兜底
		s.cleanup(dest)
		s.log.Error("failed to persist attachment metadata",
			zap.String("entity", req.Entity.String()),
			zap.String("path", dest.StoragePath),
			zap.Error(err))
		return nil, newError(CodeStorageError, "failed to save attachment metadata", err)
	}

	s.log.Info("attachment uploaded",
		zap.Uint("id", id),
		zap.String("entity", req.Entity.String()),
		zap.String("path", dest.StoragePath),
		zap.Int64("size", info.Size),
		zap.Uint("uploader", req.UploaderID))

	return s.describe(record, ext), nil
}

// move 把 multipart 内容写入目标路径
func (s *UploadService) move(ctx context.Context, u RawUpload, storagePath string) error {
	src, err := u.Header.Open()
	if err != nil {
		return fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	return s.deps.Storage.SaveWithContext(ctx, storagePath, src)
}

// postProcess 缩放与缩略图，失败只记录日志
// 返回最终尺寸和实际生成的缩略图路径
func (s *UploadService) postProcess(ctx context.Context, ext string, dest Destination) (Dimensions, string) {
	log := s.log.With(zap.String("path", dest.StoragePath))

	dims, resized, err := s.deps.Processor.ResizeInPlace(ctx, dest.StoragePath, ext,
		s.cfg.ImageMaxWidth, s.cfg.ImageMaxHeight, s.cfg.MaxImageDimension, s.cfg.quality())
	switch {
	case errors.Is(err, ErrImageTooLarge):
		log.Warn("image too large, skipping post-processing", zap.Error(err))
		return dims, ""
	case err != nil:
		log.Warn("image resize failed, keeping original", zap.Error(err))
		if probed, probeErr := s.deps.Processor.Probe(ctx, dest.StoragePath); probeErr == nil {
			dims = probed
		}
	case resized:
		log.Debug("image resized", zap.Int("width", dims.Width), zap.Int("height", dims.Height))
	}

	if dest.ThumbnailPath == "" {
		return dims, ""
	}

	created, err := s.deps.Processor.GenerateThumbnail(ctx, dest.StoragePath, dest.ThumbnailPath, ext,
		s.cfg.ThumbnailSize, s.cfg.MaxImageDimension, s.cfg.quality())
	if err != nil {
		log.Warn("thumbnail generation failed", zap.Error(err))
		return dims, ""
	}
	if !created {
		log.Debug("thumbnail skipped for format", zap.String("ext", ext))
		return dims, ""
	}
	return dims, dest.ThumbnailPath
}

func (s *UploadService) detectMime(ctx context.Context, storagePath string) (string, error) {
	rc, err := s.deps.Storage.GetWithContext(ctx, storagePath)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return utils.DetectContentType(rc)
}

// cleanup 删除本次上传写入的文件
// 使用独立 context，请求取消后仍能完成清理
func (s *UploadService) cleanup(dest Destination) {
	ctx := context.Background()
	for _, p := range []string{dest.StoragePath, dest.ThumbnailPath} {
		if p == "" {
			continue
		}
		if err := s.deps.Storage.DeleteWithContext(ctx, p); err != nil && !errors.Is(err, storage.ErrNotFound) {
			s.log.Warn("failed to remove orphaned file", zap.String("path", p), zap.Error(err))
		}
	}
}

func (s *UploadService) describe(a *models.Attachment, ext string) *Descriptor {
	d := &Descriptor{
		ID:               a.ID,
		Filename:         a.Filename,
		OriginalFilename: a.OriginalFilename,
		FilePath:         s.deps.URLs.File(a.FilePath),
		FileSize:         a.FileSize,
		FileType:         a.FileType,
		MimeType:         a.MimeType,
		FormattedSize:    format.HumanReadableSize(a.FileSize),
		Icon:             Icon(a.FileType, ext),
		Width:            a.Width,
		Height:           a.Height,
	}
	if a.HasThumbnail() {
		thumb := s.deps.URLs.File(a.ThumbnailPath)
		d.ThumbnailPath = &thumb
	}
	return d
}

const maxOriginalNameLen = 255

// sanitizeOriginalName 只保留文件名部分
func sanitizeOriginalName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = utils.SanitizeLogMessage(strings.TrimSpace(name))
	if runes := []rune(name); len(runes) > maxOriginalNameLen {
		name = string(runes[:maxOriginalNameLen])
	}
	if name == "" {
		return "file"
	}
	return name
}
