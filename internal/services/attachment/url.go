package attachment

import "strings"

// URLBuilder 把存储路径转换为对外的访问路径
type URLBuilder struct {
	prefix string
}

// NewURLBuilder prefix 如 "/uploads"
func NewURLBuilder(prefix string) *URLBuilder {
	prefix = strings.TrimRight(prefix, "/")
	return &URLBuilder{prefix: prefix}
}

// File 返回 prefix/storagePath
func (b *URLBuilder) File(storagePath string) string {
	if b == nil || b.prefix == "" {
		return storagePath
	}
	return b.prefix + "/" + strings.TrimLeft(storagePath, "/")
}
