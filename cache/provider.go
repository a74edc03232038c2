package cache

import "github.com/anoixa/taskboard/cache/types"

// Provider 缓存提供者接口
type Provider = types.Provider

// ErrCacheMiss 缓存未命中错误
var ErrCacheMiss = types.ErrCacheMiss

// IsCacheMiss 判断是否为缓存未命中错误
func IsCacheMiss(err error) bool {
	return types.IsCacheMiss(err)
}
