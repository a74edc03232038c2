package attachment

// UploadConfig 单次上传使用的配置，每个请求读取一次后注入
type UploadConfig struct {
	// 平台上限，0 表示不限制
	PlatformUploadLimit  int64
	PlatformRequestLimit int64
	// 数据库中配置的上限，0 表示不限制
	ConfiguredLimit int64

	// 小写、不带点的扩展名
	AllowedExtensions []string

	// 任一为 0 时不缩放
	ImageMaxWidth  int
	ImageMaxHeight int
	ImageQuality   int
	// 超过该边长的图片不做后处理，0 表示不限制
	MaxImageDimension int

	ThumbnailsEnabled bool
	ThumbnailSize     int
}

// DefaultImageQuality 有损格式的重新编码质量
const DefaultImageQuality = 85

// EffectiveMaxSize 平台上传上限、请求上限与配置上限中的最小值
// 全部未设置时返回 0
func (c UploadConfig) EffectiveMaxSize() int64 {
	var limit int64
	for _, v := range []int64{c.PlatformUploadLimit, c.PlatformRequestLimit, c.ConfiguredLimit} {
		if v <= 0 {
			continue
		}
		if limit == 0 || v < limit {
			limit = v
		}
	}
	return limit
}

// Allows 扩展名是否在白名单内
func (c UploadConfig) Allows(ext string) bool {
	if ext == "" {
		return false
	}
	for _, allowed := range c.AllowedExtensions {
		if allowed == ext {
			return true
		}
	}
	return false
}

func (c UploadConfig) quality() int {
	if c.ImageQuality <= 0 || c.ImageQuality > 100 {
		return DefaultImageQuality
	}
	return c.ImageQuality
}

func (c UploadConfig) resizeEnabled() bool {
	return c.ImageMaxWidth > 0 && c.ImageMaxHeight > 0
}

func (c UploadConfig) thumbnailsEnabled() bool {
	return c.ThumbnailsEnabled && c.ThumbnailSize > 0
}
