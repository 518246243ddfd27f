package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"vaultEnvelopes/internal/api/middleware"
	"vaultEnvelopes/internal/auth"
	"vaultEnvelopes/internal/database"
)

// AuthHandler 处理管理员登录与令牌校验。
type AuthHandler struct {
	authenticator *auth.Authenticator
}

// NewAuthHandler 构造认证处理器。
func NewAuthHandler(authenticator *auth.Authenticator) *AuthHandler {
	return &AuthHandler{authenticator: authenticator}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type adminView struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

func newAdminView(admin database.Admin) adminView {
	return adminView{ID: admin.ID, Username: admin.Username, CreatedAt: admin.CreatedAt}
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresIn string    `json:"expiresIn"`
	Admin     adminView `json:"admin"`
}

// Login 校验口令并返回 Token。
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Malformed JSON body")
		return
	}

	logger := middleware.LoggerFromContext(c).With(slog.String("username", req.Username))

	session, err := h.authenticator.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			logger.Info("login failed: invalid credentials")
			Unauthorized(c, "Invalid credentials")
			return
		}
		logger.Error("login failed", slog.Any("error", err))
		Internal(c, "Server error", err)
		return
	}

	logger.Info("admin logged in", slog.Uint64("admin_id", uint64(session.Admin.ID)))
	c.JSON(http.StatusOK, loginResponse{
		Token:     session.Token,
		ExpiresIn: session.ExpiresIn,
		Admin:     newAdminView(session.Admin),
	})
}

// Verify 校验 Authorization 头中的令牌，失败统一返回 {"valid": false}。
func (h *AuthHandler) Verify(c *gin.Context) {
	token := middleware.BearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"valid": false})
		return
	}

	admin, err := h.authenticator.Verify(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidToken) {
			middleware.LoggerFromContext(c).Error("verify token failed", slog.Any("error", err))
		}
		c.JSON(http.StatusUnauthorized, gin.H{"valid": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true, "admin": newAdminView(admin)})
}
