package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/anoixa/taskboard/utils/pool"
	"github.com/spf13/afero"
)

// LocalStorage 基于 afero 的本地文件存储
type LocalStorage struct {
	fs   afero.Fs
	root string
}

// NewLocalStorage 以 basePath 作为上传根目录
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for '%s': %w", basePath, err)
	}

	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(absPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create local storage directory '%s': %w", absPath, err)
	}

	s := NewLocalStorageFs(afero.NewBasePathFs(osFs, absPath))
	s.root = absPath

	// 启动时确认目录可写
	probe := ".write_test_" + strconv.FormatInt(time.Now().UnixNano(), 10)
	if err := afero.WriteFile(s.fs, probe, nil, 0644); err != nil {
		return nil, fmt.Errorf("local storage directory '%s' is not writable: %w", absPath, err)
	}
	_ = s.fs.Remove(probe)

	return s, nil
}

// NewLocalStorageFs 直接使用给定的文件系统，测试中传入 afero.NewMemMapFs()
func NewLocalStorageFs(fs afero.Fs) *LocalStorage {
	return &LocalStorage{fs: fs, root: "/"}
}

// Fs 返回底层文件系统
func (s *LocalStorage) Fs() afero.Fs {
	return s.fs
}

// HTTPFileSystem 用于静态文件服务，路径与存储路径一样按相对路径解析
func (s *LocalStorage) HTTPFileSystem() http.FileSystem {
	return afero.NewHttpFs(s.fs).Dir(".")
}

// SaveWithContext 保存文件到本地存储
func (s *LocalStorage) SaveWithContext(ctx context.Context, storagePath string, file io.Reader) error {
	if !IsValidStoragePath(storagePath) {
		return fmt.Errorf("invalid storage path: %s", storagePath)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.fs.MkdirAll(path.Dir(storagePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory for '%s': %w", storagePath, err)
	}

	dst, err := s.fs.OpenFile(storagePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create destination file '%s': %w", storagePath, err)
	}

	buf := pool.GetCopyBuffer()
	defer pool.PutCopyBuffer(buf)

	if _, err := io.CopyBuffer(dst, file, *buf); err != nil {
		_ = dst.Close()
		_ = s.fs.Remove(storagePath)
		return fmt.Errorf("failed to copy file content to '%s': %w", storagePath, err)
	}

	if err := dst.Close(); err != nil {
		_ = s.fs.Remove(storagePath)
		return fmt.Errorf("failed to flush '%s': %w", storagePath, err)
	}
	return nil
}

// GetWithContext 从本地存储获取文件
func (s *LocalStorage) GetWithContext(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	if !IsValidStoragePath(storagePath) {
		return nil, fmt.Errorf("invalid storage path: %s", storagePath)
	}

	file, err := s.fs.Open(storagePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, storagePath)
		}
		return nil, fmt.Errorf("failed to open file '%s': %w", storagePath, err)
	}
	return file, nil
}

// DeleteWithContext 从本地存储删除文件
func (s *LocalStorage) DeleteWithContext(ctx context.Context, storagePath string) error {
	if !IsValidStoragePath(storagePath) {
		return fmt.Errorf("invalid storage path: %s", storagePath)
	}

	if err := s.fs.Remove(storagePath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, storagePath)
		}
		return fmt.Errorf("failed to delete local file '%s': %w", storagePath, err)
	}
	return nil
}

// Exists 检查文件是否存在
func (s *LocalStorage) Exists(ctx context.Context, storagePath string) (bool, error) {
	if !IsValidStoragePath(storagePath) {
		return false, fmt.Errorf("invalid storage path: %s", storagePath)
	}
	return afero.Exists(s.fs, storagePath)
}

// Stat 获取文件信息
func (s *LocalStorage) Stat(ctx context.Context, storagePath string) (FileInfo, error) {
	if !IsValidStoragePath(storagePath) {
		return FileInfo{}, fmt.Errorf("invalid storage path: %s", storagePath)
	}

	info, err := s.fs.Stat(storagePath)
	if err != nil {
		if os.IsNotExist(err) {
			return FileInfo{}, fmt.Errorf("%w: %s", ErrNotFound, storagePath)
		}
		return FileInfo{}, err
	}
	return FileInfo{Path: storagePath, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// EnsureDir 递归创建目录
func (s *LocalStorage) EnsureDir(ctx context.Context, dir string) error {
	if !IsValidStoragePath(dir) {
		return fmt.Errorf("invalid storage path: %s", dir)
	}
	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}
	return nil
}

// Walk 遍历目录，目录不存在时直接返回
func (s *LocalStorage) Walk(ctx context.Context, prefix string, fn WalkFunc) error {
	if !IsValidStoragePath(prefix) {
		return fmt.Errorf("invalid storage path: %s", prefix)
	}

	err := afero.Walk(s.fs, prefix, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if info.IsDir() {
			return nil
		}
		return fn(FileInfo{Path: filepath.ToSlash(p), Size: info.Size(), ModTime: info.ModTime()})
	})
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Health 检查根目录可访问
func (s *LocalStorage) Health(ctx context.Context) error {
	if _, err := s.fs.Stat("."); err != nil {
		return fmt.Errorf("local storage root %s unavailable: %w", s.root, err)
	}
	return nil
}

// Name 返回存储名称
func (s *LocalStorage) Name() string {
	return "local"
}
