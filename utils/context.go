package utils

import (
	"context"
	"errors"
	"io"
	"net/http"
)

// IsClientGone 请求被客户端中断（取消、断开或请求体未读完）
func IsClientGone(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, http.ErrBodyReadAfterClose)
}
