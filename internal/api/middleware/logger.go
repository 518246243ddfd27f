package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"vaultEnvelopes/internal/metrics"
)

const requestLoggerKey = "requestLogger"

// 路由参数到日志字段的映射，handler 不必再手动附加。
var routeParamAttrs = []struct{ param, attr string }{
	{"id", "resource_id"},
	{"envelopeId", "envelope_id"},
	{"cardId", "card_id"},
}

// RequestLogger 为每个请求派生带 correlation_id、路由分区和资源 id 的 logger，
// 结束时写一条访问日志。系统路由（健康检查、指标抓取）只在 Debug 级别出现。
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		area := metrics.RouteArea(route)
		if route == "" {
			route = c.Request.URL.Path
		}

		attrs := []any{
			slog.String("correlation_id", GetCorrelationID(c)),
			slog.String("method", c.Request.Method),
			slog.String("route", route),
			slog.String("area", area),
		}
		for _, p := range routeParamAttrs {
			if v := c.Param(p.param); v != "" {
				attrs = append(attrs, slog.String(p.attr, v))
			}
		}
		requestLogger := logger.With(attrs...)
		c.Set(requestLoggerKey, requestLogger)

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		requestLogger.LogAttrs(c.Request.Context(), accessLevel(area, status), "request completed",
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		)
	}
}

func accessLevel(area string, status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	case area == metrics.AreaSystem:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// LoggerFromContext 返回 RequestLogger 注入的 logger，缺失时退回默认 logger。
func LoggerFromContext(c *gin.Context) *slog.Logger {
	if value, ok := c.Get(requestLoggerKey); ok {
		if logger, ok := value.(*slog.Logger); ok {
			return logger
		}
	}
	return slog.Default()
}
