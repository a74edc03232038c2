package config

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/anoixa/taskboard/internal/services/attachment"
	"github.com/anoixa/taskboard/utils/generator"
	"github.com/mitchellh/mapstructure"
)

// settings 表中的键
const (
	KeyMaxFileSize       = "max_file_size"
	KeyAllowedExtensions = "allowed_extensions"
	KeyImageMaxWidth     = "image_max_width"
	KeyImageMaxHeight    = "image_max_height"
	KeyThumbnailSize     = "thumbnail_size"
	KeyEnableThumbnails  = "enable_thumbnails"
	KeyImageQuality      = "image_quality"
	KeyMaxImageDimension = "max_image_dimension"
)

const maxThumbnailSize = 1024

// ErrInvalidSettings 配置值不合法
var ErrInvalidSettings = errors.New("invalid upload settings")

// UploadSettings 上传配置
type UploadSettings struct {
	// 字节，0 表示只受平台上限约束
	MaxFileSize int64 `json:"max_file_size" mapstructure:"max_file_size"`
	// 不含点的小写扩展名
	AllowedExtensions []string `json:"allowed_extensions" mapstructure:"allowed_extensions"`
	// 任一为 0 时不缩放
	ImageMaxWidth    int  `json:"image_max_width" mapstructure:"image_max_width"`
	ImageMaxHeight   int  `json:"image_max_height" mapstructure:"image_max_height"`
	ThumbnailSize    int  `json:"thumbnail_size" mapstructure:"thumbnail_size"`
	EnableThumbnails bool `json:"enable_thumbnails" mapstructure:"enable_thumbnails"`
	ImageQuality     int  `json:"image_quality" mapstructure:"image_quality"`
	// 超过该边长的图片跳过后处理，0 表示不限制
	MaxImageDimension int `json:"max_image_dimension" mapstructure:"max_image_dimension"`
}

// DefaultUploadSettings 默认上传配置
func DefaultUploadSettings() *UploadSettings {
	return &UploadSettings{
		MaxFileSize:       10 * 1024 * 1024,
		AllowedExtensions: []string{
			"jpg", "jpeg", "png", "gif", "webp", "bmp",
			"mp4", "webm", "mov", "avi",
			"pdf", "doc", "docx", "xls", "xlsx", "ppt", "pptx", "txt", "csv",
			"zip", "rar", "7z",
		},
		ImageMaxWidth:     1920,
		ImageMaxHeight:    1080,
		ThumbnailSize:     150,
		EnableThumbnails:  true,
		ImageQuality:      attachment.DefaultImageQuality,
		MaxImageDimension: attachment.DefaultMaxImageDimension,
	}
}

// decodeInto 把字符串或 JSON 值合并到 s 上，缺失的键保持原值
// ZeroFields 使列表整体替换而不是按下标合并；strict 时未知的键报错
func decodeInto(s *UploadSettings, input interface{}, strict bool) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			trimStringHook,
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		ZeroFields:       true,
		ErrorUnused:      strict,
		Result:           s,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	s.normalize()
	return nil
}

func trimStringHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to.Kind() == reflect.String {
		return data, nil
	}
	return strings.TrimSpace(data.(string)), nil
}

// normalize 扩展名转小写、去点、去重
func (s *UploadSettings) normalize() {
	seen := make(map[string]struct{}, len(s.AllowedExtensions))
	exts := make([]string, 0, len(s.AllowedExtensions))
	for _, ext := range s.AllowedExtensions {
		ext = generator.NormalizeExtension(ext)
		if ext == "" {
			continue
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		exts = append(exts, ext)
	}
	s.AllowedExtensions = exts
}

// Validate 检查取值范围
func (s *UploadSettings) Validate() error {
	switch {
	case s.MaxFileSize < 0:
		return fmt.Errorf("%s must not be negative", KeyMaxFileSize)
	case len(s.AllowedExtensions) == 0:
		return fmt.Errorf("%s must contain at least one extension", KeyAllowedExtensions)
	case s.ImageMaxWidth < 0 || s.ImageMaxHeight < 0:
		return fmt.Errorf("%s and %s must not be negative", KeyImageMaxWidth, KeyImageMaxHeight)
	case s.ThumbnailSize < 0 || s.ThumbnailSize > maxThumbnailSize:
		return fmt.Errorf("%s must be between 0 and %d", KeyThumbnailSize, maxThumbnailSize)
	case s.ImageQuality < 1 || s.ImageQuality > 100:
		return fmt.Errorf("%s must be between 1 and 100", KeyImageQuality)
	case s.MaxImageDimension < 0:
		return fmt.Errorf("%s must not be negative", KeyMaxImageDimension)
	}
	for _, ext := range s.AllowedExtensions {
		if !isPlainExtension(ext) {
			return fmt.Errorf("invalid extension %q", ext)
		}
	}
	return nil
}

func isPlainExtension(ext string) bool {
	if len(ext) > 16 {
		return false
	}
	for _, r := range ext {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// values 转换为 settings 表的行
func (s *UploadSettings) values() map[string]string {
	return map[string]string{
		KeyMaxFileSize:       strconv.FormatInt(s.MaxFileSize, 10),
		KeyAllowedExtensions: strings.Join(s.AllowedExtensions, ","),
		KeyImageMaxWidth:     strconv.Itoa(s.ImageMaxWidth),
		KeyImageMaxHeight:    strconv.Itoa(s.ImageMaxHeight),
		KeyThumbnailSize:     strconv.Itoa(s.ThumbnailSize),
		KeyEnableThumbnails:  strconv.FormatBool(s.EnableThumbnails),
		KeyImageQuality:      strconv.Itoa(s.ImageQuality),
		KeyMaxImageDimension: strconv.Itoa(s.MaxImageDimension),
	}
}

func (s *UploadSettings) clone() *UploadSettings {
	c := *s
	c.AllowedExtensions = append([]string(nil), s.AllowedExtensions...)
	return &c
}

// ToUploadConfig 合并平台上限，得到单次上传使用的配置
func (s *UploadSettings) ToUploadConfig(platformUploadLimit, platformRequestLimit int64) attachment.UploadConfig {
	return attachment.UploadConfig{
		PlatformUploadLimit:  platformUploadLimit,
		PlatformRequestLimit: platformRequestLimit,
		ConfiguredLimit:      s.MaxFileSize,
		AllowedExtensions:    append([]string(nil), s.AllowedExtensions...),
		ImageMaxWidth:        s.ImageMaxWidth,
		ImageMaxHeight:       s.ImageMaxHeight,
		ImageQuality:         s.ImageQuality,
		ThumbnailsEnabled:    s.EnableThumbnails,
		ThumbnailSize:        s.ThumbnailSize,
		MaxImageDimension:    s.MaxImageDimension,
	}
}
