package attachment

import (
	"errors"
	"fmt"
)

// Code 错误分类
type Code string

const (
	CodeInvalidUpload       Code = "invalid_upload"
	CodeFileTooLarge        Code = "file_too_large"
	CodeUnsupportedType     Code = "unsupported_type"
	CodeTransferError       Code = "transfer_error"
	CodeStorageError        Code = "storage_error"
	CodeNotFoundOrForbidden Code = "not_found_or_forbidden"
	CodeInternalError       Code = "internal_error"
)

// Error 附件服务返回的错误
// Message 可以直接展示给调用者，Err 只用于日志
type Error struct {
	Code    Code
	Message string
	// Transfer 仅 CodeTransferError 使用
	Transfer TransferCode
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is 按错误码匹配，errors.Is(err, ErrFileTooLarge) 可用
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// 哨兵错误，只用于 errors.Is 比较
var (
	ErrInvalidUpload       = &Error{Code: CodeInvalidUpload}
	ErrFileTooLarge        = &Error{Code: CodeFileTooLarge}
	ErrUnsupportedType     = &Error{Code: CodeUnsupportedType}
	ErrTransferError       = &Error{Code: CodeTransferError}
	ErrStorageError        = &Error{Code: CodeStorageError}
	ErrNotFoundOrForbidden = &Error{Code: CodeNotFoundOrForbidden}
	ErrInternal            = &Error{Code: CodeInternalError}
)

func newError(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf 提取错误码，非 *Error 视为内部错误
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternalError
}

// PublicMessage 返回可以展示给调用者的信息
// 存储和内部错误只返回通用描述
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "Internal server error"
	}

	switch e.Code {
	case CodeStorageError:
		return "Failed to store the uploaded file"
	case CodeInternalError:
		return "Internal server error"
	}
	return e.Message
}
