package config

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/anoixa/taskboard/cache"
	"github.com/anoixa/taskboard/database/repo/settings"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL 配置缓存时间
const DefaultCacheTTL = time.Minute

// Manager 数据库配置管理器
type Manager struct {
	repo     settings.Repository
	cache    cache.Provider
	cacheTTL time.Duration
	keys     *cache.KeyBuilder
	group    singleflight.Group
	// 串行化管理员更新
	updateMu sync.Mutex
	log      *zap.Logger
}

// NewManager 创建配置管理器，cacheProvider 可以为 nil
func NewManager(repo settings.Repository, cacheProvider cache.Provider, cacheTTL time.Duration, log *zap.Logger) *Manager {
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		repo:     repo,
		cache:    cacheProvider,
		cacheTTL: cacheTTL,
		keys:     cache.NewKeyBuilder("settings"),
		log:      log.Named("settings"),
	}
}

// EnsureDefaults 写入缺失的默认配置
func (m *Manager) EnsureDefaults(ctx context.Context) error {
	created, err := m.repo.EnsureDefaults(ctx, DefaultUploadSettings().values())
	if err != nil {
		return err
	}
	if created > 0 {
		m.log.Info("default upload settings created", zap.Int("count", created))
		m.invalidate(ctx)
	}
	return nil
}

// GetUploadSettings 获取上传配置，并发未命中只查询一次数据库
func (m *Manager) GetUploadSettings(ctx context.Context) (*UploadSettings, error) {
	key := m.keys.Build("upload")

	if m.cache != nil {
		var cached UploadSettings
		err := m.cache.Get(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !cache.IsCacheMiss(err) {
			m.log.Warn("failed to read settings cache", zap.Error(err))
		}
	}

	v, err, _ := m.group.Do(key, func() (interface{}, error) {
		// 共享结果的调用方不应受第一个请求取消的影响
		ctx := context.WithoutCancel(ctx)

		s, err := m.load(ctx)
		if err != nil {
			return nil, err
		}

		if m.cache != nil {
			if err := m.cache.Set(ctx, key, s, m.cacheTTL); err != nil {
				m.log.Warn("failed to write settings cache", zap.Error(err))
			}
		}
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*UploadSettings).clone(), nil
}

// load 从数据库读取并合并默认值
func (m *Manager) load(ctx context.Context) (*UploadSettings, error) {
	values, err := m.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	s := DefaultUploadSettings()
	if err := decodeInto(s, values, false); err != nil {
		return nil, err
	}
	return s, nil
}

// UpdateUploadSettings 合并部分更新，校验后在一个事务中写入
// 只写入 patch 中出现的键，未知的键返回 ErrInvalidSettings
func (m *Manager) UpdateUploadSettings(ctx context.Context, patch map[string]interface{}) (*UploadSettings, error) {
	m.updateMu.Lock()
	defer m.updateMu.Unlock()

	current, err := m.load(ctx)
	if err != nil {
		return nil, err
	}

	if err := decodeInto(current, patch, true); err != nil {
		return nil, err
	}
	if err := current.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	all := current.values()
	changed := make(map[string]string, len(patch))
	for k := range patch {
		key := strings.ToLower(k)
		if v, ok := all[key]; ok {
			changed[key] = v
		}
	}

	if err := m.repo.SetMany(ctx, changed); err != nil {
		return nil, err
	}
	m.invalidate(ctx)

	m.log.Info("upload settings updated")
	return current, nil
}

func (m *Manager) invalidate(ctx context.Context) {
	if m.cache == nil {
		return
	}
	if err := m.cache.Delete(ctx, m.keys.Build("upload")); err != nil {
		m.log.Warn("failed to invalidate settings cache", zap.Error(err))
	}
}
