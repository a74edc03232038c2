package attachments

import (
	"context"
	"errors"
	"net/http"

	"github.com/anoixa/taskboard/api/common"
	configSvc "github.com/anoixa/taskboard/config/db"
	"github.com/anoixa/taskboard/internal/services/attachment"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SettingsSource 每个请求读取一次上传配置
type SettingsSource interface {
	GetUploadSettings(ctx context.Context) (*configSvc.UploadSettings, error)
}

// Limits 平台级上限，来自环境配置
type Limits struct {
	UploadMaxBytes  int64
	RequestMaxBytes int64
}

// Handler 附件接口
type Handler struct {
	settings SettingsSource
	limits   Limits
	deps     attachment.Dependencies
	query    *attachment.QueryService
	deleter  *attachment.DeleteService
	access   *attachment.AccessChecker
	log      *zap.Logger
}

// NewHandler 创建附件处理器
func NewHandler(
	settings SettingsSource,
	limits Limits,
	deps attachment.Dependencies,
	query *attachment.QueryService,
	deleter *attachment.DeleteService,
	access *attachment.AccessChecker,
	log *zap.Logger,
) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		settings: settings,
		limits:   limits,
		deps:     deps,
		query:    query,
		deleter:  deleter,
		access:   access,
		log:      log.Named("attachments"),
	}
}

// statusFor 错误码到 HTTP 状态码
func statusFor(err error) int {
	var e *attachment.Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}

	switch e.Code {
	case attachment.CodeInvalidUpload:
		return http.StatusBadRequest
	case attachment.CodeTransferError:
		if e.Transfer == attachment.TransferIniSize || e.Transfer == attachment.TransferFormSize {
			return http.StatusRequestEntityTooLarge
		}
		return http.StatusBadRequest
	case attachment.CodeFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case attachment.CodeUnsupportedType:
		return http.StatusUnsupportedMediaType
	case attachment.CodeNotFoundOrForbidden:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// respondServiceError 存储和内部错误只返回通用信息，细节写日志
func (h *Handler) respondServiceError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("attachment request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
	}
	common.RespondError(c, status, attachment.PublicMessage(err))
}
