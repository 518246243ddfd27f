// Package media 将上传文件转存到外部媒体托管（Cloudinary 或 S3 兼容存储），并负责删除。
package media

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"vaultEnvelopes/internal/config"
)

// ResourceType 对应托管端的资源分类，音频按 video 处理。
type ResourceType string

const (
	ResourceImage ResourceType = "image"
	ResourceVideo ResourceType = "video"
)

// RootFolder 所有上传对象的顶层目录。
const RootFolder = "vault-envelopes"


// Target says where an upload lands.
type Target struct {
	Folder       string
	PublicID     string
	ResourceType ResourceType
	Format       string
}

// UploadRequest 一次上传的内容与目标位置。
type UploadRequest struct {
	Target
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadResult 托管端返回的公开地址与对象 ID。
type UploadResult struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

// Relay is the upload/delete surface the API uses.
type Relay interface {
	Upload(ctx context.Context, req UploadRequest) (UploadResult, error)
	Destroy(ctx context.Context, publicID string, resourceType ResourceType) error
	PublicIDFromURL(rawURL string) (string, bool)
}

// New builds the relay selected by cfg.Provider.
func New(cfg config.MediaConfig) (Relay, error) {
	switch cfg.Provider {
	case "", config.ProviderCloudinary:
		c, err := NewCloudinary(cfg.Cloudinary)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.ProviderMinIO:
		return NewMinIO(cfg.MinIO)
	default:
		return nil, fmt.Errorf("unknown media provider %q", cfg.Provider)
	}
}

func millis(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 10)
}

// MusicTarget 背景音乐统一转为 mp3。
func MusicTarget(envelopeID string, now time.Time) Target {
	return Target{
		Folder:       RootFolder + "/music",
		PublicID:     envelopeID + "-" + millis(now),
		ResourceType: ResourceVideo,
		Format:       "mp3",
	}
}

func MemoryTarget(envelopeID string, now time.Time) Target {
	return Target{
		Folder:       RootFolder + "/memories/" + envelopeID,
		PublicID:     "memory-" + millis(now),
		ResourceType: ResourceImage,
	}
}

func StampTarget(envelopeID string, now time.Time) Target {
	return Target{
		Folder:       RootFolder + "/stamps",
		PublicID:     "stamp-" + envelopeID + "-" + millis(now),
		ResourceType: ResourceImage,
	}
}

// TarotTarget 同一张牌重复上传会覆盖旧图。
func TarotTarget(cardID string) Target {
	return Target{
		Folder:       RootFolder + "/tarot",
		PublicID:     "tarot-" + cardID,
		ResourceType: ResourceImage,
	}
}

// FullPublicID joins folder and id the way hosts address objects.
func (t Target) FullPublicID() string {
	if t.Folder == "" {
		return t.PublicID
	}
	return strings.TrimSuffix(t.Folder, "/") + "/" + t.PublicID
}

func stripExt(name string) string {
	slash := strings.LastIndex(name, "/")
	if dot := strings.LastIndex(name, "."); dot > slash+1 {
		return name[:dot]
	}
	return name
}
