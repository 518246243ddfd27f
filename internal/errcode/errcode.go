package errcode

import "net/http"

// 错误码约定：
// - 0：无错误
// - 4xxx：调用方可修正的错误（鉴权、上传校验、资源不存在、请求体格式）
// - 5xxx：系统错误（存储、媒体托管、数据校验失败）
const (
	OK               = 0
	Unauthorized     = 4001
	UploadRejected   = 4002
	MalformedRequest = 4003
	NotFound         = 4004
	Validation       = 5001
	SystemError      = 5000
	MediaUnavailable = 5002
)

// HTTPStatus 返回错误码对应的 HTTP 状态。数据校验失败沿用 500。
func HTTPStatus(code int) int {
	switch code {
	case OK:
		return http.StatusOK
	case Unauthorized:
		return http.StatusUnauthorized
	case UploadRejected, MalformedRequest:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
