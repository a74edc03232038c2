package attachments

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/anoixa/taskboard/api/common"
	"github.com/anoixa/taskboard/api/middleware"
	"github.com/anoixa/taskboard/internal/services/attachment"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// List 列出实体的附件，按上传时间倒序
// @Summary      List attachments
// @Tags         attachments
// @Produce      json
// @Param        entity_type  query  string  true  "task, project or comment"
// @Param        entity_id    query  int     true  "Entity ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  common.Response
// @Security     BearerAuth
// @Router       /upload [get]
func (h *Handler) List(c *gin.Context) {
	ref, err := attachment.ParseEntityRef(c.Query("entity_type"), c.Query("entity_id"))
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid entity type or ID")
		return
	}

	files, err := h.query.ListForEntity(c.Request.Context(), ref)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "", gin.H{"files": files})
}

// Get 获取单个附件
// @Summary      Get an attachment
// @Tags         attachments
// @Produce      json
// @Param        id  path  int  true  "Attachment ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  common.Response
// @Security     BearerAuth
// @Router       /upload/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := parseFileID(c.Param("id"))
	if !ok {
		common.RespondError(c, http.StatusBadRequest, "Invalid file ID")
		return
	}

	file, err := h.query.Get(c.Request.Context(), id)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "", gin.H{"file": file})
}

// Delete 删除附件，只有上传者可以删除
// @Summary      Delete an attachment
// @Tags         attachments
// @Produce      json
// @Param        id  query  int  true  "Attachment ID"
// @Success      200  {object}  common.Response
// @Failure      404  {object}  common.Response
// @Security     BearerAuth
// @Router       /upload [delete]
func (h *Handler) Delete(c *gin.Context) {
	userID, _, ok := middleware.CurrentUser(c)
	if !ok {
		common.RespondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, ok := parseFileID(c.Query("id"))
	if !ok {
		common.RespondError(c, http.StatusBadRequest, "Invalid file ID")
		return
	}

	if err := h.deleter.Delete(c.Request.Context(), id, userID); err != nil {
		h.respondServiceError(c, err)
		return
	}

	h.log.Info("attachment deleted", zap.Uint("id", id), zap.Uint("user_id", userID))
	common.Respond(c, http.StatusOK, true, "File deleted successfully")
}

func parseFileID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
