package api

import (
	"github.com/gin-gonic/gin"

	"vaultEnvelopes/internal/api/middleware"
)

// RegisterRoutes 注册 /api 下的业务路由；写操作需要管理员令牌。
func RegisterRoutes(api *gin.RouterGroup, deps Dependencies) {
	authHandler := NewAuthHandler(deps.Authenticator)
	envelopeHandler := NewEnvelopeHandler(deps.Envelopes, deps.Assigner)
	tarotHandler := NewTarotHandler(deps.Tarot)
	uploadHandler := NewUploadHandler(deps.Envelopes, deps.Tarot, deps.Relay, deps.Cleaner, deps.Scanner)
	authMiddleware := middleware.AuthMiddleware(deps.Tokens)

	api.GET("/health", health)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.GET("/verify", authHandler.Verify)
	}

	envelopeGroup := api.Group("/envelopes")
	{
		envelopeGroup.GET("", envelopeHandler.List)
		envelopeGroup.GET("/:id", envelopeHandler.Get)
		envelopeGroup.GET("/:id/tarot", envelopeHandler.Tarot)
		envelopeGroup.POST("/:id/verify-password", envelopeHandler.VerifyPassword)
		envelopeGroup.POST("", authMiddleware, envelopeHandler.Create)
		envelopeGroup.PUT("/:id", authMiddleware, envelopeHandler.Update)
		envelopeGroup.DELETE("/:id", authMiddleware, envelopeHandler.Delete)
	}

	tarotGroup := api.Group("/tarot")
	{
		tarotGroup.GET("", tarotHandler.List)
		tarotGroup.GET("/random/pick", tarotHandler.RandomPick)
		tarotGroup.GET("/:id", tarotHandler.Get)
		tarotGroup.PUT("/:id", authMiddleware, tarotHandler.Update)
	}

	uploadGroup := api.Group("/upload")
	uploadGroup.Use(authMiddleware)
	{
		uploadGroup.POST("/music/:envelopeId", uploadHandler.Music)
		uploadGroup.POST("/memory/:envelopeId", uploadHandler.Memory)
		uploadGroup.DELETE("/memory/:envelopeId", uploadHandler.DeleteMemory)
		uploadGroup.POST("/stamp/:envelopeId", uploadHandler.Stamp)
		uploadGroup.POST("/tarot/:cardId", uploadHandler.TarotImage)
	}
}
