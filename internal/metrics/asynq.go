package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"vaultEnvelopes/internal/tasks"
)

// 清理任务结果标签取值。
const (
	OutcomeRemoved   = "removed"
	OutcomeRetry     = "retry"
	OutcomeDropped   = "dropped"
	OutcomeExhausted = "exhausted"
)

const unknownResource = "unknown"

var (
	cleanupJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "envelopes",
			Subsystem: "cleanup",
			Name:      "jobs_total",
			Help:      "媒体删除任务按资源类型与结果的计数。",
		},
		[]string{"resource_type", "outcome"},
	)

	cleanupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "envelopes",
			Subsystem: "cleanup",
			Name:      "job_duration_seconds",
			Help:      "单次媒体删除调用耗时（秒）。",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"resource_type"},
	)

	cleanupRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "envelopes",
			Subsystem: "cleanup",
			Name:      "jobs_running",
			Help:      "正在执行的媒体删除任务数。",
		},
	)
)

// cleanupOutcome 判定一次执行的结果。最后一次重试仍失败记为 exhausted，托管端残留需要人工处理。
func cleanupOutcome(err error, retried, maxRetry int, retryKnown bool) string {
	switch {
	case err == nil:
		return OutcomeRemoved
	case errors.Is(err, asynq.SkipRetry):
		return OutcomeDropped
	case retryKnown && retried >= maxRetry:
		return OutcomeExhausted
	default:
		return OutcomeRetry
	}
}

func resourceLabel(task *asynq.Task) string {
	if task.Type() != tasks.TypeMediaDestroy {
		return unknownResource
	}
	var p tasks.MediaDestroyPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil || p.ResourceType == "" {
		return unknownResource
	}
	return p.ResourceType
}

// CleanupMetricsMiddleware 记录媒体删除任务的结果与耗时。
func CleanupMetricsMiddleware() asynq.MiddlewareFunc {
	return func(next asynq.Handler) asynq.Handler {
		return asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
			resource := resourceLabel(task)
			cleanupRunning.Inc()
			defer cleanupRunning.Dec()

			start := time.Now()
			err := next.ProcessTask(ctx, task)
			cleanupDuration.WithLabelValues(resource).Observe(time.Since(start).Seconds())

			retried, ok := asynq.GetRetryCount(ctx)
			maxRetry, maxOK := asynq.GetMaxRetry(ctx)
			cleanupJobs.WithLabelValues(resource, cleanupOutcome(err, retried, maxRetry, ok && maxOK)).Inc()
			return err
		})
	}
}
