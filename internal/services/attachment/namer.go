package attachment

import (
	"context"
	"fmt"

	"github.com/anoixa/taskboard/database/models"
	"github.com/anoixa/taskboard/storage"
	"github.com/anoixa/taskboard/utils/generator"
)

// Destination 一次上传的目标位置
type Destination struct {
	Kind          models.FileKind
	Filename      string
	StoragePath   string
	ThumbnailPath string // 不生成缩略图时为空
}

// Namer 生成文件名并创建目标目录
type Namer struct {
	paths   *generator.PathGenerator
	storage storage.Provider
}

// NewNamer 创建命名器
func NewNamer(paths *generator.PathGenerator, provider storage.Provider) *Namer {
	return &Namer{paths: paths, storage: provider}
}

// Prepare 生成文件名、存储路径，并创建分类目录与缩略图目录
func (n *Namer) Prepare(ctx context.Context, ext string, kind models.FileKind, withThumbnail bool) (Destination, error) {
	ids, err := n.paths.GenerateAttachmentIdentifiers(ext, kind.Dir())
	if err != nil {
		return Destination{}, err
	}

	if err := n.storage.EnsureDir(ctx, kind.Dir()); err != nil {
		return Destination{}, fmt.Errorf("failed to create upload directory %s: %w", kind.Dir(), err)
	}

	dest := Destination{
		Kind:        kind,
		Filename:    ids.Filename,
		StoragePath: ids.StoragePath,
	}

	if withThumbnail {
		if err := n.storage.EnsureDir(ctx, generator.ThumbnailDir); err != nil {
			return Destination{}, fmt.Errorf("failed to create thumbnail directory: %w", err)
		}
		dest.ThumbnailPath = ids.ThumbnailPath
	}

	return dest, nil
}
