package admin

import (
	"context"
	"errors"
	"net/http"

	"github.com/anoixa/taskboard/api/common"
	configSvc "github.com/anoixa/taskboard/config/db"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SettingsManager 上传配置的读写
type SettingsManager interface {
	GetUploadSettings(ctx context.Context) (*configSvc.UploadSettings, error)
	UpdateUploadSettings(ctx context.Context, patch map[string]interface{}) (*configSvc.UploadSettings, error)
}

// SettingsHandler 管理员配置接口
type SettingsHandler struct {
	manager SettingsManager
	log     *zap.Logger
}

// NewSettingsHandler 创建配置处理器
func NewSettingsHandler(manager SettingsManager, log *zap.Logger) *SettingsHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &SettingsHandler{manager: manager, log: log.Named("admin")}
}

// GetUploadSettings 获取上传配置
// @Summary      Get upload settings
// @Tags         admin
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /admin/settings/upload [get]
func (h *SettingsHandler) GetUploadSettings(c *gin.Context) {
	settings, err := h.manager.GetUploadSettings(c.Request.Context())
	if err != nil {
		h.log.Error("failed to load upload settings", zap.Error(err))
		common.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	common.RespondSuccess(c, http.StatusOK, "", gin.H{"settings": settings})
}

// UpdateUploadSettings 部分更新上传配置，未出现的键保持原值
// @Summary      Update upload settings
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        settings  body  map[string]interface{}  true  "Partial settings"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  common.Response
// @Security     BearerAuth
// @Router       /admin/settings/upload [put]
func (h *SettingsHandler) UpdateUploadSettings(c *gin.Context) {
	var patch map[string]interface{}
	if err := c.ShouldBindJSON(&patch); err != nil || len(patch) == 0 {
		common.RespondError(c, http.StatusBadRequest, "Request body must be a non-empty JSON object")
		return
	}

	settings, err := h.manager.UpdateUploadSettings(c.Request.Context(), patch)
	if err != nil {
		if errors.Is(err, configSvc.ErrInvalidSettings) {
			common.RespondError(c, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error("failed to update upload settings", zap.Error(err))
		common.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.log.Info("upload settings updated", zap.Int("keys", len(patch)))
	common.RespondSuccess(c, http.StatusOK, "Settings updated", gin.H{"settings": settings})
}
