// Package metrics 暴露 API 与后台任务的 Prometheus 指标。
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// 路由分区标签取值。
const (
	AreaEnvelopes = "envelopes"
	AreaTarot     = "tarot"
	AreaUpload    = "upload"
	AreaAuth      = "auth"
	AreaSystem    = "system"
	AreaUnmatched = "unmatched"
)

var (
	registerOnce sync.Once

	apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "envelopes",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "按路由分区、方法和状态类别统计的请求数。",
		},
		[]string{"area", "method", "status_class"},
	)

	apiLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "envelopes",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "按路由分区统计的请求耗时（秒）。",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 15, 60},
		},
		[]string{"area", "method"},
	)

	// 上传体积按媒体种类统计，取 Content-Length（含 multipart 开销）。
	uploadBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "envelopes",
			Subsystem: "api",
			Name:      "upload_request_bytes",
			Help:      "上传请求体大小（字节）。",
			Buckets:   prometheus.ExponentialBuckets(64<<10, 2, 9),
		},
		[]string{"kind"},
	)
)

// RouteArea 把 Gin 的路由模板归到 /api 下的一级分区。
func RouteArea(route string) string {
	if route == "" {
		return AreaUnmatched
	}
	rest, ok := strings.CutPrefix(route, "/api/")
	if !ok {
		return AreaSystem
	}
	head, _, _ := strings.Cut(rest, "/")
	switch head {
	case AreaEnvelopes, AreaTarot, AreaUpload, AreaAuth:
		return head
	default:
		return AreaSystem
	}
}

// uploadKind 取 /api/upload/<kind>/... 中的 kind。
func uploadKind(route string) string {
	rest, ok := strings.CutPrefix(route, "/api/upload/")
	if !ok {
		return ""
	}
	kind, _, _ := strings.Cut(rest, "/")
	return kind
}

func statusClass(status int) string {
	return strconv.Itoa(status/100) + "xx"
}

// GinMiddleware 记录每个请求所属分区的计数与耗时，上传请求额外记录体积。
func GinMiddleware() gin.HandlerFunc {
	registerOnce.Do(func() {
		prometheus.MustRegister(apiRequests, apiLatency, uploadBytes)
	})

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		area := RouteArea(route)
		method := c.Request.Method

		apiRequests.WithLabelValues(area, method, statusClass(c.Writer.Status())).Inc()
		apiLatency.WithLabelValues(area, method).Observe(time.Since(start).Seconds())

		if area == AreaUpload && method == http.MethodPost && c.Request.ContentLength > 0 {
			uploadBytes.WithLabelValues(uploadKind(route)).Observe(float64(c.Request.ContentLength))
		}
	}
}
