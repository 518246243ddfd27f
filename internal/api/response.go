package api

import (
	"github.com/gin-gonic/gin"

	"vaultEnvelopes/internal/api/middleware"
	"vaultEnvelopes/internal/errcode"
)

// Error 以统一结构返回错误：{"message", "code"}，开发环境额外附带 "error"。
func Error(c *gin.Context, code int, msg string, cause error) {
	body := gin.H{"message": msg, "code": code}
	if cause != nil && middleware.ExposeErrors(c) {
		body["error"] = cause.Error()
	}
	c.AbortWithStatusJSON(errcode.HTTPStatus(code), body)
}

func Unauthorized(c *gin.Context, msg string) { Error(c, errcode.Unauthorized, msg, nil) }
func BadRequest(c *gin.Context, msg string)   { Error(c, errcode.MalformedRequest, msg, nil) }
func Rejected(c *gin.Context, msg string)     { Error(c, errcode.UploadRejected, msg, nil) }
func NotFound(c *gin.Context, msg string)     { Error(c, errcode.NotFound, msg, nil) }

// Internal 记录错误并返回 500。
func Internal(c *gin.Context, msg string, cause error) {
	Error(c, errcode.SystemError, msg, cause)
}

// ValidationFailed 数据校验失败同样按服务端错误返回。
func ValidationFailed(c *gin.Context, cause error) {
	Error(c, errcode.Validation, "Server error", cause)
}
