package tasks

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/hibiken/asynq"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypeMediaDestroy = "media:destroy"
)

// MediaDestroyPayload 描述需要从媒体托管删除的对象。
type MediaDestroyPayload struct {
	PublicID      string `json:"public_id"`
	ResourceType  string `json:"resource_type"`
	EnvelopeID    string `json:"envelope_id,omitempty"`
	CorrelationID string `json:"correlation_id"`
}

// NewMediaDestroyTask 构造一个媒体删除任务，失败时最多重试 5 次。
func NewMediaDestroyTask(p MediaDestroyPayload) (*asynq.Task, error) {
	if p.PublicID == "" {
		return nil, errors.New("public id is required")
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeMediaDestroy, payload, asynq.MaxRetry(5), asynq.Timeout(time.Minute)), nil
}
