package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"
)

// ErrNotFound 文件不存在
var ErrNotFound = errors.New("storage: file not found")

// FileInfo 存储中单个文件的元信息
type FileInfo struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// WalkFunc 遍历回调，返回错误会终止遍历
type WalkFunc func(info FileInfo) error

// Provider 存储提供者接口
// 所有路径都是相对于上传根目录的 "/" 分隔路径
type Provider interface {
	// SaveWithContext 写入文件，已存在时覆盖
	SaveWithContext(ctx context.Context, storagePath string, file io.Reader) error

	// GetWithContext 读取文件，不存在时返回 ErrNotFound
	GetWithContext(ctx context.Context, storagePath string) (io.ReadCloser, error)

	// DeleteWithContext 删除文件，不存在时返回 ErrNotFound
	DeleteWithContext(ctx context.Context, storagePath string) error

	// Exists 检查文件是否存在
	Exists(ctx context.Context, storagePath string) (bool, error)

	// Stat 获取文件大小与修改时间
	Stat(ctx context.Context, storagePath string) (FileInfo, error)

	// EnsureDir 递归创建目录，对象存储上为空操作
	EnsureDir(ctx context.Context, dir string) error

	// Walk 遍历 prefix 目录下的全部文件
	Walk(ctx context.Context, prefix string, fn WalkFunc) error

	// Health 检查存储健康状态
	Health(ctx context.Context) error

	// Name 返回存储名称
	Name() string
}

// IsValidStoragePath 校验相对存储路径，拒绝绝对路径、目录穿越和非常规字符
func IsValidStoragePath(p string) bool {
	if p == "" || p == "." || strings.HasPrefix(p, "/") {
		return false
	}

	if strings.Contains(p, "..") {
		return false
	}

	for _, r := range p {
		if (r < 'a' || r > 'z') &&
			(r < 'A' || r > 'Z') &&
			(r < '0' || r > '9') &&
			r != '-' && r != '_' && r != '.' && r != '/' {
			return false
		}
	}

	return path.Clean(p) == p
}
