package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vaultEnvelopes/internal/auth"
)

const adminIDKey = "adminID"

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": msg})
}

// BearerToken 从 Authorization 头中取出令牌，格式不符时返回空串。
func BearerToken(c *gin.Context) string {
	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// AuthMiddleware 校验管理员令牌并将 adminID 注入上下文。
func AuthMiddleware(authService *auth.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawToken := BearerToken(c)
		if rawToken == "" {
			abortUnauthorized(c, "Not authorized, no token")
			return
		}

		claims, err := authService.ValidateToken(rawToken)
		if err != nil {
			LoggerFromContext(c).Info("reject bearer token", slog.Any("error", err))
			abortUnauthorized(c, "Not authorized, token failed")
			return
		}

		c.Set(adminIDKey, claims.AdminID)
		c.Next()
	}
}

// AdminIDFromContext 返回已通过鉴权的管理员 ID。
func AdminIDFromContext(c *gin.Context) (uint, bool) {
	value, ok := c.Get(adminIDKey)
	if !ok {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}
