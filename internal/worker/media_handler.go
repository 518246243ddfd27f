package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"vaultEnvelopes/internal/media"
	"vaultEnvelopes/internal/tasks"
)

// MediaDestroyHandler 负责消费媒体删除任务。
type MediaDestroyHandler struct {
	relay  media.Relay
	logger *slog.Logger
}

// NewMediaDestroyHandler 创建任务处理器。
func NewMediaDestroyHandler(relay media.Relay, logger *slog.Logger) *MediaDestroyHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MediaDestroyHandler{relay: relay, logger: logger}
}

// ProcessTask 实现 asynq.Handler。
func (h *MediaDestroyHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload tasks.MediaDestroyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.logger.Error("unmarshal task payload failed", slog.Any("error", err))
		return fmt.Errorf("decode %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}

	log := h.logger.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.String("public_id", payload.PublicID),
		slog.String("envelope_id", payload.EnvelopeID),
	)

	if err := h.relay.Destroy(ctx, payload.PublicID, media.ResourceType(payload.ResourceType)); err != nil {
		if isFinalAsynqAttempt(ctx) {
			log.Error("media destroy failed, giving up", slog.Any("error", err))
		} else {
			log.Warn("media destroy failed, will retry", slog.Any("error", err))
		}
		return err
	}

	log.Info("media object destroyed")
	return nil
}

func isFinalAsynqAttempt(ctx context.Context) bool {
	retryCount, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 {
		return false
	}
	return retryCount >= maxRetry
}
