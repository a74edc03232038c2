package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/studio-b12/gowebdav"
)

// WebDAVConfig WebDAV 存储配置
type WebDAVConfig struct {
	URL      string
	Username string
	Password string
	RootPath string
}

// WebDAVStorage WebDAV 存储实现
type WebDAVStorage struct {
	client   *gowebdav.Client
	rootPath string
}

// NewWebDAVStorage 创建 WebDAV 存储并验证连接
func NewWebDAVStorage(ctx context.Context, cfg WebDAVConfig) (*WebDAVStorage, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("webdav URL is required")
	}

	rootPath := strings.Trim(cfg.RootPath, "/")
	if rootPath != "" {
		rootPath = "/" + rootPath
	}

	client := gowebdav.NewClient(cfg.URL, cfg.Username, cfg.Password)
	client.SetTimeout(60 * time.Second)

	s := &WebDAVStorage{client: client, rootPath: rootPath}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if rootPath != "" {
		if err := s.run(ctx, func() error { return client.MkdirAll(rootPath, 0755) }); err != nil {
			return nil, fmt.Errorf("failed to prepare webdav root %s: %w", rootPath, err)
		}
	}
	if err := s.Health(ctx); err != nil {
		return nil, fmt.Errorf("webdav connection test failed: %w", err)
	}

	return s, nil
}

// run 在 goroutine 中执行阻塞调用，ctx 取消时提前返回
func (s *WebDAVStorage) run(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// fullPath 生成完整的 WebDAV 路径
func (s *WebDAVStorage) fullPath(storagePath string) string {
	storagePath = strings.TrimLeft(storagePath, "/")
	if s.rootPath != "" {
		return s.rootPath + "/" + storagePath
	}
	return "/" + storagePath
}

// relPath 把完整路径还原为存储路径
func (s *WebDAVStorage) relPath(full string) string {
	return strings.TrimPrefix(strings.TrimPrefix(full, s.rootPath), "/")
}

func (s *WebDAVStorage) notFound(err error, storagePath string) error {
	if gowebdav.IsErrNotFound(err) || os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, storagePath)
	}
	return err
}

// SaveWithContext 保存文件到 WebDAV
func (s *WebDAVStorage) SaveWithContext(ctx context.Context, storagePath string, file io.Reader) error {
	if !IsValidStoragePath(storagePath) {
		return fmt.Errorf("invalid storage path: %s", storagePath)
	}

	fullPath := s.fullPath(storagePath)
	if err := s.run(ctx, func() error { return s.client.MkdirAll(path.Dir(fullPath), 0755) }); err != nil {
		return fmt.Errorf("failed to ensure parent directory for %s: %w", storagePath, err)
	}

	if err := s.run(ctx, func() error { return s.client.WriteStream(fullPath, file, 0644) }); err != nil {
		return fmt.Errorf("failed to write file %s: %w", storagePath, err)
	}
	return nil
}

// GetWithContext 从 WebDAV 获取文件
func (s *WebDAVStorage) GetWithContext(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	if !IsValidStoragePath(storagePath) {
		return nil, fmt.Errorf("invalid storage path: %s", storagePath)
	}

	var stream io.ReadCloser
	err := s.run(ctx, func() error {
		var err error
		stream, err = s.client.ReadStream(s.fullPath(storagePath))
		return err
	})
	if err != nil {
		return nil, s.notFound(err, storagePath)
	}
	return stream, nil
}

// DeleteWithContext 从 WebDAV 删除文件
func (s *WebDAVStorage) DeleteWithContext(ctx context.Context, storagePath string) error {
	if _, err := s.Stat(ctx, storagePath); err != nil {
		return err
	}

	if err := s.run(ctx, func() error { return s.client.Remove(s.fullPath(storagePath)) }); err != nil {
		return fmt.Errorf("failed to delete file %s: %w", storagePath, s.notFound(err, storagePath))
	}
	return nil
}

// Exists 检查文件是否存在
func (s *WebDAVStorage) Exists(ctx context.Context, storagePath string) (bool, error) {
	_, err := s.Stat(ctx, storagePath)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return false, err
}

// Stat 获取文件信息
func (s *WebDAVStorage) Stat(ctx context.Context, storagePath string) (FileInfo, error) {
	if !IsValidStoragePath(storagePath) {
		return FileInfo{}, fmt.Errorf("invalid storage path: %s", storagePath)
	}

	var info os.FileInfo
	err := s.run(ctx, func() error {
		var err error
		info, err = s.client.Stat(s.fullPath(storagePath))
		return err
	})
	if err != nil {
		return FileInfo{}, s.notFound(err, storagePath)
	}
	return FileInfo{Path: storagePath, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// EnsureDir 递归创建目录
func (s *WebDAVStorage) EnsureDir(ctx context.Context, dir string) error {
	if !IsValidStoragePath(dir) {
		return fmt.Errorf("invalid storage path: %s", dir)
	}
	return s.run(ctx, func() error { return s.client.MkdirAll(s.fullPath(dir), 0755) })
}

// Walk 递归遍历目录
func (s *WebDAVStorage) Walk(ctx context.Context, prefix string, fn WalkFunc) error {
	if !IsValidStoragePath(prefix) {
		return fmt.Errorf("invalid storage path: %s", prefix)
	}
	return s.walkDir(ctx, s.fullPath(prefix), fn)
}

func (s *WebDAVStorage) walkDir(ctx context.Context, dir string, fn WalkFunc) error {
	var entries []os.FileInfo
	err := s.run(ctx, func() error {
		var err error
		entries, err = s.client.ReadDir(dir)
		return err
	})
	if err != nil {
		if gowebdav.IsErrNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		full := path.Join(dir, entry.Name())
		if entry.IsDir() {
			if err := s.walkDir(ctx, full, fn); err != nil {
				return err
			}
			continue
		}
		if err := fn(FileInfo{Path: s.relPath(full), Size: entry.Size(), ModTime: entry.ModTime()}); err != nil {
			return err
		}
	}
	return nil
}

// Health 读取根目录验证连接
func (s *WebDAVStorage) Health(ctx context.Context) error {
	root := s.rootPath
	if root == "" {
		root = "/"
	}
	return s.run(ctx, func() error {
		_, err := s.client.ReadDir(root)
		return err
	})
}

// Name 返回存储名称
func (s *WebDAVStorage) Name() string {
	return "webdav"
}
