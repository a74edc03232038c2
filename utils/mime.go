package utils

import (
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultMimeType 无法识别时的类型
const DefaultMimeType = "application/octet-stream"

// DetectContentType 根据内容探测 MIME 类型，不信任客户端声明
func DetectContentType(r io.Reader) (string, error) {
	mtype, err := mimetype.DetectReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to read stream for mime sniffing: %w", err)
	}
	if mtype == nil {
		return DefaultMimeType, nil
	}
	return mtype.String(), nil
}
