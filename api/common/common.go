package common

import (
	"github.com/gin-gonic/gin"
)

// Response 所有接口共用的外层结构
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Respond 只返回 success 和 message
func Respond(c *gin.Context, httpStatus int, success bool, message string) {
	c.JSON(httpStatus, Response{Success: success, Message: message})
}

// RespondSuccess 成功响应，fields 与 success、message 平铺在同一层
func RespondSuccess(c *gin.Context, httpStatus int, message string, fields gin.H) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(httpStatus, body)
}

// RespondError 失败响应
func RespondError(c *gin.Context, httpStatus int, message string) {
	Respond(c, httpStatus, false, message)
}

// RespondErrorAbort 失败响应并中止后续处理
func RespondErrorAbort(c *gin.Context, httpStatus int, message string) {
	c.AbortWithStatusJSON(httpStatus, Response{Success: false, Message: message})
}
