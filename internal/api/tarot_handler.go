package api

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"

	"github.com/gin-gonic/gin"

	"vaultEnvelopes/internal/api/middleware"
	"vaultEnvelopes/internal/database"
	"vaultEnvelopes/internal/envelope"
)

const tarotNotFound = "Tarot card not found"

// TarotRepository 塔罗牌目录存储，由 database.TarotStore 实现。
type TarotRepository interface {
	List(ctx context.Context) ([]envelope.TarotCard, error)
	Get(ctx context.Context, id string) (envelope.TarotCard, error)
	Update(ctx context.Context, card envelope.TarotCard) (envelope.TarotCard, error)
	Count(ctx context.Context) (int64, error)
	PickAt(ctx context.Context, offset int) (envelope.TarotCard, error)
}

// TarotHandler 处理塔罗牌目录的读取与编辑。
type TarotHandler struct {
	store TarotRepository
	intn  func(n int) int
}

func NewTarotHandler(store TarotRepository) *TarotHandler {
	return &TarotHandler{store: store, intn: rand.IntN}
}

func (h *TarotHandler) List(c *gin.Context) {
	cards, err := h.store.List(c.Request.Context())
	if err != nil {
		middleware.LoggerFromContext(c).Error("list tarot cards failed", slog.Any("error", err))
		Internal(c, "Server error", err)
		return
	}
	c.JSON(http.StatusOK, cards)
}

func (h *TarotHandler) Get(c *gin.Context) {
	card, ok := h.load(c, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, card)
}

// Update 以 JSON merge patch 方式更新卡牌。
func (h *TarotHandler) Update(c *gin.Context) {
	body, ok := readJSONObject(c)
	if !ok {
		return
	}
	current, ok := h.load(c, c.Param("id"))
	if !ok {
		return
	}

	merged, err := envelope.Merge(current, body)
	if err != nil {
		ValidationFailed(c, err)
		return
	}
	merged.ID = current.ID
	if err := merged.Validate(); err != nil {
		ValidationFailed(c, err)
		return
	}

	updated, err := h.store.Update(c.Request.Context(), merged)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			NotFound(c, tarotNotFound)
			return
		}
		middleware.LoggerFromContext(c).Error("update tarot card failed", slog.String("card_id", current.ID), slog.Any("error", err))
		Internal(c, "Server error", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// RandomPick 先计数再按偏移取一张，目录为空时返回 404。
func (h *TarotHandler) RandomPick(c *gin.Context) {
	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c)

	count, err := h.store.Count(ctx)
	if err != nil {
		logger.Error("count tarot cards failed", slog.Any("error", err))
		Internal(c, "Server error", err)
		return
	}
	if count == 0 {
		NotFound(c, "No tarot cards available")
		return
	}

	card, err := h.store.PickAt(ctx, h.intn(int(count)))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			// 计数与读取之间目录被清空
			NotFound(c, "No tarot cards available")
			return
		}
		logger.Error("pick tarot card failed", slog.Any("error", err))
		Internal(c, "Server error", err)
		return
	}
	c.JSON(http.StatusOK, card)
}

func (h *TarotHandler) load(c *gin.Context, id string) (envelope.TarotCard, bool) {
	card, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			NotFound(c, tarotNotFound)
			return envelope.TarotCard{}, false
		}
		middleware.LoggerFromContext(c).Error("get tarot card failed", slog.String("card_id", id), slog.Any("error", err))
		Internal(c, "Server error", err)
		return envelope.TarotCard{}, false
	}
	return card, true
}
