package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"vaultEnvelopes/internal/config"
)

// ObjectStore 是 MinIO 中转依赖的最小对象存储接口，便于测试替换。
type ObjectStore interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// MinIO 将上传写入 S3 兼容存储的公开 Bucket。
type MinIO struct {
	client  ObjectStore
	bucket  string
	baseURL string
}

// NewMinIO 根据配置初始化 MinIO 客户端，并确保目标 Bucket 存在。
func NewMinIO(cfg config.MinIOConfig) (*MinIO, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if !cfg.AutoCreateBucket {
			return nil, fmt.Errorf("bucket %q does not exist (auto create disabled)", cfg.Bucket)
		}
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("make bucket %q: %w", cfg.Bucket, err)
		}
	}

	baseURL := strings.TrimSuffix(cfg.PublicBaseURL, "/")
	if baseURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		baseURL = scheme + "://" + cfg.Endpoint
	}

	return NewMinIOWithClient(client, cfg.Bucket, baseURL), nil
}

// NewMinIOWithClient wires an existing object store; baseURL is the public origin serving the bucket.
func NewMinIOWithClient(client ObjectStore, bucket, baseURL string) *MinIO {
	return &MinIO{client: client, bucket: bucket, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (m *MinIO) Upload(ctx context.Context, req UploadRequest) (UploadResult, error) {
	publicID := req.FullPublicID()
	key := publicID
	if ext := objectExt(req); ext != "" {
		key += "." + ext
	}

	size := req.Size
	if size <= 0 {
		size = -1
	}
	opts := minio.PutObjectOptions{ContentType: req.ContentType}
	if _, err := m.client.PutObject(ctx, m.bucket, key, req.Body, size, opts); err != nil {
		return UploadResult{}, fmt.Errorf("put object %q: %w", key, err)
	}

	return UploadResult{URL: m.baseURL + "/" + m.bucket + "/" + key, PublicID: publicID}, nil
}

// Destroy 删除对象。若对象不存在会被视为成功（幂等）。
// publicID 不含扩展名时按图片与音频的常见扩展名逐一尝试。
func (m *MinIO) Destroy(ctx context.Context, publicID string, resourceType ResourceType) error {
	publicID = strings.TrimSpace(publicID)
	if publicID == "" {
		return nil
	}

	keys := []string{publicID}
	if stripExt(publicID) == publicID {
		for _, ext := range candidateExts(resourceType) {
			keys = append(keys, publicID+"."+ext)
		}
	}

	var errs []error
	for _, key := range keys {
		err := s3RemoveError(key, m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}))
		if err = ignoreMissing(err); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PublicIDFromURL 仅识别本 Bucket 下的地址。
func (m *MinIO) PublicIDFromURL(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", false
	}
	prefix := "/" + m.bucket + "/"
	if !strings.HasPrefix(u.Path, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(u.Path, prefix)
	id := stripExt(key)
	return id, id != ""
}

func objectExt(req UploadRequest) string {
	if req.Format != "" {
		return req.Format
	}
	name := req.Filename
	if dot := strings.LastIndex(name, "."); dot >= 0 && dot < len(name)-1 {
		return strings.ToLower(name[dot+1:])
	}
	return ""
}

func candidateExts(resourceType ResourceType) []string {
	if resourceType == ResourceVideo {
		return []string{"mp3", "wav", "ogg"}
	}
	return []string{"jpg", "jpeg", "png", "webp", "gif"}
}
