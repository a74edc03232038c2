package attachment

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/anoixa/taskboard/utils/format"
	"github.com/anoixa/taskboard/utils/generator"
)

// TransferCode 上传传输结果，数值与常见平台上传错误码一致
type TransferCode int

const (
	TransferOK        TransferCode = 0
	TransferIniSize   TransferCode = 1 // 超过服务端上限
	TransferFormSize  TransferCode = 2 // 超过表单声明的上限
	TransferPartial   TransferCode = 3 // 只收到部分内容
	TransferNoFile    TransferCode = 4 // 没有文件
	TransferNoTmpDir  TransferCode = 6 // 缺少临时目录
	TransferCantWrite TransferCode = 7 // 临时文件写入失败
	TransferExtension TransferCode = 8 // 被扩展中止
)

func (c TransferCode) String() string {
	switch c {
	case TransferOK:
		return "ok"
	case TransferIniSize:
		return "file exceeds the server upload limit"
	case TransferFormSize:
		return "file exceeds the form upload limit"
	case TransferPartial:
		return "file was only partially uploaded"
	case TransferNoFile:
		return "no file was uploaded"
	case TransferNoTmpDir:
		return "missing temporary folder"
	case TransferCantWrite:
		return "failed to write file to disk"
	case TransferExtension:
		return "upload stopped by extension"
	}
	return fmt.Sprintf("unknown transfer error %d", int(c))
}

// RawUpload 收到的原始上传
// Header 必须来自 multipart 解析，调用方不能伪造临时路径
type RawUpload struct {
	Header       *multipart.FileHeader
	Name         string
	Size         int64
	TransferCode TransferCode
}

// NewRawUpload 由 multipart 文件头构造
func NewRawUpload(header *multipart.FileHeader) RawUpload {
	if header == nil {
		return RawUpload{TransferCode: TransferNoFile}
	}
	return RawUpload{
		Header: header,
		Name:   header.Filename,
		Size:   header.Size,
	}
}

// Extension 小写扩展名，不含点
func (u RawUpload) Extension() string {
	return generator.ExtensionOf(u.Name)
}

// genuine 内容只能来自 multipart 解析器，且声明的文件名与分片一致
func (u RawUpload) genuine() bool {
	if u.Header == nil || u.Name == "" {
		return false
	}
	return u.Header.Filename == u.Name
}

// Validate 按顺序检查上传，遇到第一个失败即返回，无副作用
func Validate(u RawUpload, cfg UploadConfig) error {
	if !u.genuine() {
		if u.Header == nil && u.TransferCode == TransferNoFile {
			return newError(CodeInvalidUpload, "No file was uploaded", nil)
		}
		return newError(CodeInvalidUpload, "Invalid file upload", nil)
	}

	if limit := cfg.EffectiveMaxSize(); limit > 0 && u.Size > limit {
		return newError(CodeFileTooLarge,
			fmt.Sprintf("File size exceeds the maximum allowed size of %s", format.HumanReadableSize(limit)), nil)
	}

	ext := u.Extension()
	if !cfg.Allows(ext) {
		shown := ext
		if shown == "" {
			shown = strings.TrimPrefix(filepath.Ext(u.Name), ".")
		}
		return newError(CodeUnsupportedType,
			fmt.Sprintf("File type '%s' is not allowed. Allowed types: %s", shown, strings.Join(cfg.AllowedExtensions, ", ")), nil)
	}

	if u.TransferCode != TransferOK {
		return TransferFailure(u.TransferCode, nil)
	}

	return nil
}

// TransferFailure 传输阶段失败，multipart 解析出错时由调用方直接使用
func TransferFailure(code TransferCode, cause error) error {
	return &Error{
		Code:     CodeTransferError,
		Message:  "Upload error: " + code.String(),
		Transfer: code,
		Err:      cause,
	}
}
