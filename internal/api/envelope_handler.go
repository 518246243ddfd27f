package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"vaultEnvelopes/internal/api/middleware"
	"vaultEnvelopes/internal/assign"
	"vaultEnvelopes/internal/database"
	"vaultEnvelopes/internal/envelope"
)

const envelopeNotFound = "Envelope not found"

// EnvelopeRepository 信封存储，由 database.EnvelopeStore 实现。
type EnvelopeRepository interface {
	List(ctx context.Context) ([]envelope.Envelope, error)
	Get(ctx context.Context, id string) (envelope.Envelope, error)
	Create(ctx context.Context, env envelope.Envelope) (envelope.Envelope, error)
	Update(ctx context.Context, env envelope.Envelope) (envelope.Envelope, error)
	Delete(ctx context.Context, id string) error
}

// EnvelopeHandler 处理信封的增删改查与解锁校验。
type EnvelopeHandler struct {
	store    EnvelopeRepository
	assigner *assign.Assigner
}

func NewEnvelopeHandler(store EnvelopeRepository, assigner *assign.Assigner) *EnvelopeHandler {
	return &EnvelopeHandler{store: store, assigner: assigner}
}

// List 按收件人排序返回全部信封。
func (h *EnvelopeHandler) List(c *gin.Context) {
	envs, err := h.store.List(c.Request.Context())
	if err != nil {
		middleware.LoggerFromContext(c).Error("list envelopes failed", slog.Any("error", err))
		Internal(c, "Server error", err)
		return
	}
	c.JSON(http.StatusOK, envs)
}

func (h *EnvelopeHandler) Get(c *gin.Context) {
	env, ok := h.load(c, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, env)
}

// Create 新建信封，未提供 id 时按收件人生成。
func (h *EnvelopeHandler) Create(c *gin.Context) {
	body, ok := readJSONObject(c)
	if !ok {
		return
	}
	logger := middleware.LoggerFromContext(c)

	env, err := envelope.Merge(envelope.Envelope{}, body)
	if err != nil {
		ValidationFailed(c, err)
		return
	}
	env.ID = idFromBody(body)
	if env.ID == "" {
		env.ID = envelope.NewID(env.Recipient)
	}
	env.ApplyDefaults()
	if err := env.Validate(); err != nil {
		logger.Info("create envelope rejected", slog.Any("error", err))
		ValidationFailed(c, err)
		return
	}

	created, err := h.store.Create(c.Request.Context(), env)
	if err != nil {
		logger.Error("create envelope failed", slog.String("envelope_id", env.ID), slog.Any("error", err))
		Internal(c, "Server error", err)
		return
	}

	logger.Info("envelope created", slog.String("envelope_id", created.ID))
	c.JSON(http.StatusCreated, created)
}

// Update 以 JSON merge patch 方式更新信封，合并后重新校验。
func (h *EnvelopeHandler) Update(c *gin.Context) {
	body, ok := readJSONObject(c)
	if !ok {
		return
	}
	current, ok := h.load(c, c.Param("id"))
	if !ok {
		return
	}
	logger := middleware.LoggerFromContext(c).With(slog.String("envelope_id", current.ID))

	merged, err := envelope.Merge(current, body)
	if err != nil {
		ValidationFailed(c, err)
		return
	}
	merged.ID = current.ID
	merged.CreatedAt = current.CreatedAt
	merged.ApplyDefaults()
	if err := merged.Validate(); err != nil {
		logger.Info("update envelope rejected", slog.Any("error", err))
		ValidationFailed(c, err)
		return
	}

	updated, err := h.store.Update(c.Request.Context(), merged)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			NotFound(c, envelopeNotFound)
			return
		}
		logger.Error("update envelope failed", slog.Any("error", err))
		Internal(c, "Server error", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *EnvelopeHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			NotFound(c, envelopeNotFound)
			return
		}
		middleware.LoggerFromContext(c).Error("delete envelope failed", slog.String("envelope_id", id), slog.Any("error", err))
		Internal(c, "Server error", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Envelope deleted"})
}

type verifyPasswordRequest struct {
	Password string `json:"password"`
}

// VerifyPassword 逐字节比较解锁口令。请求体缺失或 password 不是字符串时视为不匹配。
func (h *EnvelopeHandler) VerifyPassword(c *gin.Context) {
	env, ok := h.load(c, c.Param("id"))
	if !ok {
		return
	}
	var req verifyPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": env.PasswordMatches(req.Password)})
}

// Tarot 返回信封的塔罗牌：内嵌覆盖优先，否则为稳定的随机分配。
func (h *EnvelopeHandler) Tarot(c *gin.Context) {
	env, ok := h.load(c, c.Param("id"))
	if !ok {
		return
	}
	card, err := h.assigner.Resolve(c.Request.Context(), env)
	if err != nil {
		if errors.Is(err, assign.ErrEmptyCatalog) {
			NotFound(c, "No tarot cards available")
			return
		}
		middleware.LoggerFromContext(c).Error("resolve tarot card failed", slog.String("envelope_id", env.ID), slog.Any("error", err))
		Internal(c, "Server error", err)
		return
	}
	c.JSON(http.StatusOK, card)
}

func (h *EnvelopeHandler) load(c *gin.Context, id string) (envelope.Envelope, bool) {
	env, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			NotFound(c, envelopeNotFound)
			return envelope.Envelope{}, false
		}
		middleware.LoggerFromContext(c).Error("get envelope failed", slog.String("envelope_id", id), slog.Any("error", err))
		Internal(c, "Server error", err)
		return envelope.Envelope{}, false
	}
	return env, true
}
