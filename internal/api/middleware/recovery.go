package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

const exposeErrorsKey = "exposeErrors"

// ErrorDetailMiddleware 标记是否在错误响应中附带内部错误信息，仅开发环境开启。
func ErrorDetailMiddleware(expose bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(exposeErrorsKey, expose)
		c.Next()
	}
}

// ExposeErrors reports whether error detail may be sent to the client.
func ExposeErrors(c *gin.Context) bool {
	return c.GetBool(exposeErrorsKey)
}

// RecoveryMiddleware 捕获 panic，记录堆栈并返回统一的 500 响应。
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			LoggerFromContext(c).Error("panic recovered",
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())),
			)

			body := gin.H{"message": "Something went wrong!"}
			if ExposeErrors(c) {
				body["error"] = fmt.Sprint(rec)
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, body)
		}()
		c.Next()
	}
}
