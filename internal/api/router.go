package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vaultEnvelopes/internal/api/middleware"
	"vaultEnvelopes/internal/assign"
	"vaultEnvelopes/internal/auth"
	"vaultEnvelopes/internal/media"
	"vaultEnvelopes/internal/metrics"
	"vaultEnvelopes/internal/worker"
)

// Dependencies 路由所需的全部组件，由 cmd/api 组装。
type Dependencies struct {
	Envelopes     EnvelopeRepository
	Tarot         TarotRepository
	Authenticator *auth.Authenticator
	Tokens        *auth.AuthService
	Assigner      *assign.Assigner
	Relay         media.Relay
	Cleaner       worker.MediaCleaner
	// Scanner 为 nil 时跳过病毒扫描。
	Scanner      Scanner
	Logger       *slog.Logger
	ExposeErrors bool
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Vault Envelopes API is running"})
}

// NewRouter 构建 Gin 路由引擎并挂载全局中间件、健康检查、指标与 /api 路由。
func NewRouter(deps Dependencies) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.Use(
		middleware.CorrelationIDMiddleware(),
		middleware.RequestLogger(logger),
		middleware.ErrorDetailMiddleware(deps.ExposeErrors),
		middleware.RecoveryMiddleware(),
		metrics.GinMiddleware(),
		middleware.CORSMiddleware(),
	)

	router.GET("/health", health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.NoRoute(func(c *gin.Context) {
		NotFound(c, "Route not found")
	})

	RegisterRoutes(router.Group("/api"), deps)
	return router
}
