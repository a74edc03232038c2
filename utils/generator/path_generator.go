package generator

import (
	"encoding/hex"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ThumbnailDir 缩略图目录
const ThumbnailDir = "thumbnails"

// ThumbnailPrefix 缩略图文件名前缀
const ThumbnailPrefix = "thumb_"

// PathGenerator 附件文件名与存储路径生成器
type PathGenerator struct {
	newID func() (uuid.UUID, error)
}

// NewPathGenerator 创建路径生成器
// 文件名使用 UUIDv7：毫秒时间戳加 74 位随机数
func NewPathGenerator() *PathGenerator {
	return &PathGenerator{newID: uuid.NewV7}
}

// StorageIdentifiers 存储标识
type StorageIdentifiers struct {
	Filename      string // 生成的文件名，如 0192c3a1f0e87b3c9d2e4f5a6b7c8d9e.png
	StoragePath   string // 存储路径，如 images/0192c3a1f0e87b3c9d2e4f5a6b7c8d9e.png
	ThumbnailPath string // 缩略图路径，如 thumbnails/thumb_0192c3a1f0e87b3c9d2e4f5a6b7c8d9e.png
}

// GenerateAttachmentIdentifiers 为扩展名 ext 生成文件名和 kindDir 下的存储路径
func (pg *PathGenerator) GenerateAttachmentIdentifiers(ext, kindDir string) (StorageIdentifiers, error) {
	id, err := pg.newID()
	if err != nil {
		return StorageIdentifiers{}, fmt.Errorf("failed to generate file id: %w", err)
	}

	ext = NormalizeExtension(ext)
	filename := hex.EncodeToString(id[:])
	if ext != "" {
		filename += "." + ext
	}

	return StorageIdentifiers{
		Filename:      filename,
		StoragePath:   path.Join(kindDir, filename),
		ThumbnailPath: ThumbnailPathFor(filename),
	}, nil
}

// ThumbnailPathFor 缩略图路径由文件名确定
func ThumbnailPathFor(filename string) string {
	return path.Join(ThumbnailDir, ThumbnailPrefix+filename)
}

// NormalizeExtension 去掉前导点并转小写
func NormalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// ExtensionOf 取文件名的扩展名（小写，不含点）
func ExtensionOf(filename string) string {
	return NormalizeExtension(path.Ext(strings.ReplaceAll(filename, "\\", "/")))
}
