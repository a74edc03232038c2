package format

import (
	"strconv"
	"strings"
)

const byteUnit = 1024

var units = []string{"B", "KB", "MB", "GB", "TB", "PB"}

// HumanReadableSize 将字节数转换为人类可读的格式，保留两位小数
// 1536 -> "1.5 KB"，1048576 -> "1 MB"
func HumanReadableSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	if bytes < byteUnit {
		return strconv.FormatInt(bytes, 10) + " B"
	}

	value := float64(bytes)
	exp := 0
	for value >= byteUnit && exp < len(units)-1 {
		value /= byteUnit
		exp++
	}

	s := strconv.FormatFloat(value, 'f', 2, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	return s + " " + units[exp]
}

// MegabytesToBytes MB 配置值转字节
func MegabytesToBytes(mb int64) int64 {
	return mb * byteUnit * byteUnit
}
