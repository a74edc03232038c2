package attachments

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/anoixa/taskboard/api/common"
	"github.com/anoixa/taskboard/api/middleware"
	"github.com/anoixa/taskboard/internal/services/attachment"
	"github.com/anoixa/taskboard/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const formFileField = "file"

type uploadResponse struct {
	common.Response
	*attachment.Descriptor
}

// Upload 上传附件
// @Summary      Upload an attachment
// @Description  Attach a file to a task, project or comment
// @Tags         attachments
// @Accept       multipart/form-data
// @Produce      json
// @Param        file         formData  file    true   "File"
// @Param        entity_type  formData  string  true   "task, project or comment"
// @Param        entity_id    formData  int     true   "Entity ID"
// @Param        description  formData  string  false  "Description"
// @Success      201  {object}  uploadResponse
// @Failure      400  {object}  common.Response
// @Failure      403  {object}  common.Response
// @Failure      413  {object}  common.Response
// @Failure      415  {object}  common.Response
// @Security     BearerAuth
// @Router       /upload [post]
func (h *Handler) Upload(c *gin.Context) {
	userID, role, ok := middleware.CurrentUser(c)
	if !ok {
		common.RespondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	raw, err := h.readUpload(c)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	ref, err := attachment.ParseEntityRef(c.PostForm("entity_type"), c.PostForm("entity_id"))
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid entity type or ID")
		return
	}

	ctx := c.Request.Context()
	if err := h.access.CanWrite(ctx, attachment.Actor{UserID: userID, Role: role}, ref); err != nil {
		h.respondAccessError(c, err)
		return
	}

	settings, err := h.settings.GetUploadSettings(ctx)
	if err != nil {
		h.log.Error("failed to load upload settings", zap.Error(err))
		common.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	cfg := settings.ToUploadConfig(h.limits.UploadMaxBytes, h.limits.RequestMaxBytes)

	desc, err := attachment.NewUploadService(cfg, h.deps).Upload(ctx, attachment.UploadRequest{
		File:        raw,
		Entity:      ref,
		UploaderID:  userID,
		Description: c.PostForm("description"),
	})
	if err != nil {
		if statusFor(err) < http.StatusInternalServerError {
			h.log.Info("upload rejected",
				zap.Uint("user_id", userID),
				zap.String("file", utils.SanitizeLogFilename(raw.Name)),
				zap.String("reason", attachment.PublicMessage(err)))
		}
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, uploadResponse{
		Response:   common.Response{Success: true, Message: "File uploaded successfully"},
		Descriptor: desc,
	})
}

// readUpload 解析 multipart，解析失败映射为传输错误
func (h *Handler) readUpload(c *gin.Context) (attachment.RawUpload, error) {
	header, err := c.FormFile(formFileField)
	if err == nil {
		return attachment.NewRawUpload(header), nil
	}

	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return attachment.NewRawUpload(nil), nil
	case errors.As(err, &maxBytesErr), errors.Is(err, multipart.ErrMessageTooLarge):
		return attachment.RawUpload{}, attachment.TransferFailure(attachment.TransferIniSize, err)
	case utils.IsClientGone(err):
		return attachment.RawUpload{}, attachment.TransferFailure(attachment.TransferPartial, err)
	}
	return attachment.RawUpload{}, attachment.TransferFailure(attachment.TransferCantWrite, err)
}

func (h *Handler) respondAccessError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, attachment.ErrEntityNotFound):
		common.RespondError(c, http.StatusNotFound, "Entity not found")
	case errors.Is(err, attachment.ErrWriteDenied):
		common.RespondError(c, http.StatusForbidden, "You don't have permission to upload files to this entity")
	default:
		h.log.Error("failed to check entity access", zap.Error(err))
		common.RespondError(c, http.StatusInternalServerError, "Internal server error")
	}
}
