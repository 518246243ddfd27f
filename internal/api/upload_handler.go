package api

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"vaultEnvelopes/internal/api/middleware"
	"vaultEnvelopes/internal/database"
	"vaultEnvelopes/internal/envelope"
	"vaultEnvelopes/internal/errcode"
	"vaultEnvelopes/internal/media"
	"vaultEnvelopes/internal/tasks"
	"vaultEnvelopes/internal/worker"
)

// UploadHandler 把上传文件转存到媒体托管，并把返回的地址写回文档。
type UploadHandler struct {
	envelopes EnvelopeRepository
	tarot     TarotRepository
	relay     media.Relay
	cleaner   worker.MediaCleaner
	scanner   Scanner
	now       func() time.Time
}

// NewUploadHandler scanner 可为 nil，表示不做病毒扫描。
func NewUploadHandler(envelopes EnvelopeRepository, tarot TarotRepository, relay media.Relay, cleaner worker.MediaCleaner, scanner Scanner) *UploadHandler {
	return &UploadHandler{
		envelopes: envelopes,
		tarot:     tarot,
		relay:     relay,
		cleaner:   cleaner,
		scanner:   scanner,
		now:       time.Now,
	}
}

// relayUpload 失败时已写出 500。
func (h *UploadHandler) relayUpload(c *gin.Context, file acceptedFile, target media.Target, failMsg string) (media.UploadResult, bool) {
	res, err := h.relay.Upload(c.Request.Context(), media.UploadRequest{
		Target:      target,
		Filename:    file.name,
		ContentType: file.contentType,
		Size:        int64(len(file.data)),
		Body:        bytes.NewReader(file.data),
	})
	if err != nil {
		middleware.LoggerFromContext(c).Error("relay upload failed",
			slog.String("public_id", target.FullPublicID()),
			slog.Any("error", err),
		)
		Error(c, mediaErrorCode(err), failMsg, err)
		return media.UploadResult{}, false
	}
	return res, true
}

func mediaErrorCode(err error) int {
	if errors.Is(err, media.ErrNotConfigured) {
		return errcode.MediaUnavailable
	}
	return errcode.SystemError
}

// uploadToEnvelope 为信封类上传共用：校验文件、查找信封、转存、修改并保存。
// apply 返回 false 时文档未变化，跳过保存。
func (h *UploadHandler) uploadToEnvelope(
	c *gin.Context,
	rule fileRule,
	target func(envelopeID string, now time.Time) media.Target,
	failMsg string,
	apply func(env *envelope.Envelope, url string) bool,
) {
	file, ok := h.acceptFile(c, rule)
	if !ok {
		return
	}
	env, ok := h.loadEnvelope(c, c.Param("envelopeId"))
	if !ok {
		return
	}
	res, ok := h.relayUpload(c, file, target(env.ID, h.now()), failMsg)
	if !ok {
		return
	}

	if !apply(&env, res.URL) {
		middleware.LoggerFromContext(c).Info("media uploaded without document change",
			slog.String("envelope_id", env.ID),
			slog.String("public_id", res.PublicID),
		)
		c.JSON(http.StatusOK, res)
		return
	}
	if _, err := h.envelopes.Update(c.Request.Context(), env); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			NotFound(c, envelopeNotFound)
			return
		}
		middleware.LoggerFromContext(c).Error("save envelope after upload failed",
			slog.String("envelope_id", env.ID),
			slog.Any("error", err),
		)
		Internal(c, failMsg, err)
		return
	}

	middleware.LoggerFromContext(c).Info("media uploaded",
		slog.String("envelope_id", env.ID),
		slog.String("public_id", res.PublicID),
	)
	c.JSON(http.StatusOK, res)
}

// Music 上传背景音乐。
func (h *UploadHandler) Music(c *gin.Context) {
	h.uploadToEnvelope(c, audioRule(), media.MusicTarget, "Failed to upload music",
		func(env *envelope.Envelope, url string) bool {
			env.BackgroundMusic = url
			return true
		})
}

// Memory 追加到第一个 memories 页面，没有该页面时只转存不修改。
func (h *UploadHandler) Memory(c *gin.Context) {
	h.uploadToEnvelope(c, imageRule("image"), media.MemoryTarget, "Failed to upload image",
		func(env *envelope.Envelope, url string) bool { return env.AddMemoryImage(url) })
}

func (h *UploadHandler) Stamp(c *gin.Context) {
	h.uploadToEnvelope(c, imageRule("stamp"), media.StampTarget, "Failed to upload stamp",
		func(env *envelope.Envelope, url string) bool {
			env.SetStampImage(url)
			return true
		})
}

type deleteMemoryRequest struct {
	ImageURL string `json:"imageUrl"`
}

// DeleteMemory 先更新文档，再尽力删除托管端对象；删除失败只记录日志。
func (h *UploadHandler) DeleteMemory(c *gin.Context) {
	var req deleteMemoryRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.ImageURL) == "" {
		BadRequest(c, "Image URL is required")
		return
	}
	env, ok := h.loadEnvelope(c, c.Param("envelopeId"))
	if !ok {
		return
	}
	logger := middleware.LoggerFromContext(c).With(slog.String("envelope_id", env.ID))

	env.RemoveMemoryImage(req.ImageURL)
	if _, err := h.envelopes.Update(c.Request.Context(), env); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			NotFound(c, envelopeNotFound)
			return
		}
		logger.Error("save envelope after image delete failed", slog.Any("error", err))
		Internal(c, "Failed to delete image", err)
		return
	}

	if publicID, ok := h.relay.PublicIDFromURL(req.ImageURL); ok {
		payload := tasks.MediaDestroyPayload{
			PublicID:      publicID,
			ResourceType:  string(media.ResourceImage),
			EnvelopeID:    env.ID,
			CorrelationID: middleware.GetCorrelationID(c),
		}
		if err := h.cleaner.Cleanup(c.Request.Context(), payload); err != nil {
			logger.Warn("media cleanup failed", slog.String("public_id", publicID), slog.Any("error", err))
		}
	} else {
		logger.Warn("image url not recognised by relay, skipping cleanup", slog.String("image_url", req.ImageURL))
	}

	c.JSON(http.StatusOK, gin.H{"message": "Image deleted"})
}

// TarotImage 上传塔罗牌图片，同一张牌覆盖旧对象。
func (h *UploadHandler) TarotImage(c *gin.Context) {
	file, ok := h.acceptFile(c, imageRule("image"))
	if !ok {
		return
	}
	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c)

	card, err := h.tarot.Get(ctx, c.Param("cardId"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			NotFound(c, tarotNotFound)
			return
		}
		logger.Error("get tarot card failed", slog.Any("error", err))
		Internal(c, "Failed to upload image", err)
		return
	}

	res, ok := h.relayUpload(c, file, media.TarotTarget(card.ID), "Failed to upload image")
	if !ok {
		return
	}

	card.Image = res.URL
	if _, err := h.tarot.Update(ctx, card); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			NotFound(c, tarotNotFound)
			return
		}
		logger.Error("save tarot card after upload failed", slog.String("card_id", card.ID), slog.Any("error", err))
		Internal(c, "Failed to upload image", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *UploadHandler) loadEnvelope(c *gin.Context, id string) (envelope.Envelope, bool) {
	env, err := h.envelopes.Get(c.Request.Context(), id)
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
