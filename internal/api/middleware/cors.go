package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const defaultAllowHeaders = "Content-Type, Authorization"

// CORSMiddleware 允许任意来源；预检请求回显浏览器声明的请求头后直接返回 200。
// 通配符 "*" 不覆盖 Authorization，所以这里不用它。
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		allow := strings.TrimSpace(c.GetHeader("Access-Control-Request-Headers"))
		if allow == "" {
			allow = defaultAllowHeaders
		}
		h.Set("Access-Control-Allow-Headers", allow)
		h.Add("Vary", "Access-Control-Request-Headers")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}
