package media

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/minio/minio-go/v7"
)

var (
	// ErrNotConfigured 表示托管凭据缺失。
	ErrNotConfigured = errors.New("media relay not configured")
	// ErrObjectMissing 托管端已没有该对象，删除路径把它当作成功。
	ErrObjectMissing = errors.New("media object missing")
)

// s3RemoveError 把 S3 的 NoSuchKey 与 404 响应归为 ErrObjectMissing。
func s3RemoveError(key string, err error) error {
	if err == nil {
		return nil
	}
	var resp minio.ErrorResponse
	if errors.As(err, &resp) && (resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound) {
		return fmt.Errorf("%w: %s", ErrObjectMissing, key)
	}
	return fmt.Errorf("remove object %q: %w", key, err)
}

// cloudinaryDestroyError 按 destroy 接口返回的 result 字段归类。
func cloudinaryDestroyError(publicID, result string) error {
	switch result {
	case "ok":
		return nil
	case "not found":
		return fmt.Errorf("%w: %s", ErrObjectMissing, publicID)
	default:
		return fmt.Errorf("cloudinary destroy %q: result %q", publicID, result)
	}
}

func ignoreMissing(err error) error {
	if errors.Is(err, ErrObjectMissing) {
		return nil
	}
	return err
}
