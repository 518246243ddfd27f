package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"vaultEnvelopes/internal/media"
	"vaultEnvelopes/internal/tasks"
)

// MediaCleaner 在文档更新之后删除托管端的旧对象。
type MediaCleaner interface {
	Cleanup(ctx context.Context, payload tasks.MediaDestroyPayload) error
}

// Enqueuer is the subset of *asynq.Client the queue cleaner needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueCleaner 将删除交给后台 worker，带重试。
type QueueCleaner struct {
	client Enqueuer
	logger *slog.Logger
}

func NewQueueCleaner(client Enqueuer, logger *slog.Logger) *QueueCleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueueCleaner{client: client, logger: logger}
}

func (q *QueueCleaner) Cleanup(ctx context.Context, payload tasks.MediaDestroyPayload) error {
	task, err := tasks.NewMediaDestroyTask(payload)
	if err != nil {
		return err
	}
	info, err := q.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", tasks.TypeMediaDestroy, err)
	}
	q.logger.Info("media destroy enqueued",
		slog.String("task_id", info.ID),
		slog.String("public_id", payload.PublicID),
	)
	return nil
}

// InlineCleaner 未配置 Redis 时在请求内直接删除。
type InlineCleaner struct {
	relay media.Relay
}

func NewInlineCleaner(relay media.Relay) *InlineCleaner {
	return &InlineCleaner{relay: relay}
}

func (c *InlineCleaner) Cleanup(ctx context.Context, payload tasks.MediaDestroyPayload) error {
	return c.relay.Destroy(ctx, payload.PublicID, media.ResourceType(payload.ResourceType))
}
