package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxLoggedNameLen = 120

// SanitizeLogMessage 去掉不可打印字符，防止日志注入
func SanitizeLogMessage(msg string) string {
	var sb strings.Builder
	sb.Grow(len(msg))
	for _, r := range msg {
		if r == utf8.RuneError {
			continue
		}
		if r == '\n' || r == '\r' {
			sb.WriteRune(' ')
			continue
		}
		if unicode.IsPrint(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// SanitizeLogFilename 用户提供的文件名，截断后再清洗
func SanitizeLogFilename(name string) string {
	if utf8.RuneCountInString(name) > maxLoggedNameLen {
		runes := []rune(name)
		name = string(runes[:maxLoggedNameLen]) + "..."
	}
	return SanitizeLogMessage(name)
}
