package media

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"vaultEnvelopes/internal/config"
)

// Cloudinary 通过官方 SDK 进行签名上传与删除。
type Cloudinary struct {
	cld        *cloudinary.Cloudinary
	configured bool
}

func NewCloudinary(cfg config.CloudinaryConfig) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	if base := strings.TrimSuffix(strings.TrimSpace(cfg.APIBaseURL), "/"); base != "" {
		cld.Upload.Config.API.UploadPrefix = base
	}
	cld.Upload.Config.API.Timeout = 60

	return &Cloudinary{cld: cld, configured: cfg.Configured()}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, req UploadRequest) (UploadResult, error) {
	if !c.configured {
		return UploadResult{}, ErrNotConfigured
	}
	if req.Body == nil {
		return UploadResult{}, errors.New("cloudinary upload: empty body")
	}

	resourceType := req.ResourceType
	if resourceType == "" {
		resourceType = ResourceImage
	}

	res, err := c.cld.Upload.Upload(ctx, req.Body, uploader.UploadParams{
		PublicID:         req.PublicID,
		Folder:           req.Folder,
		Format:           req.Format,
		ResourceType:     string(resourceType),
		FilenameOverride: req.Filename,
		Overwrite:        api.Bool(true),
	})
	if err != nil {
		return UploadResult{}, fmt.Errorf("cloudinary upload: %w", err)
	}
	if res.Error.Message != "" {
		return UploadResult{}, fmt.Errorf("cloudinary upload: %s", res.Error.Message)
	}
	if res.SecureURL == "" {
		return UploadResult{}, errors.New("cloudinary upload: response missing secure_url")
	}

	return UploadResult{URL: res.SecureURL, PublicID: res.PublicID}, nil
}

// Destroy 删除对象，对象不存在视为成功。
func (c *Cloudinary) Destroy(ctx context.Context, publicID string, resourceType ResourceType) error {
	if !c.configured {
		return ErrNotConfigured
	}
	publicID = strings.TrimSpace(publicID)
	if publicID == "" {
		return nil
	}
	if resourceType == "" {
		resourceType = ResourceImage
	}

	res, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: string(resourceType),
		Invalidate:   api.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("cloudinary destroy %q: %w", publicID, err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy %q: %s", publicID, res.Error.Message)
	}
	return ignoreMissing(cloudinaryDestroyError(publicID, res.Result))
}

// PublicIDFromURL extracts the public id from a delivery URL such as
// https://res.cloudinary.com/<cloud>/image/upload/c_fill,w_200/v123/vault-envelopes/memories/x/memory-1.jpg.
// Transformation and version segments right after "upload" are skipped.
func (c *Cloudinary) PublicIDFromURL(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Path == "" {
		return "", false
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")

	start := -1
	for i, seg := range segments {
		if seg == "upload" {
			start = i + 1
			break
		}
	}
	if start < 0 || start >= len(segments) {
		return "", false
	}

	rest := segments[start:]
	for len(rest) > 0 && isTransformation(rest[0]) {
		rest = rest[1:]
	}
	if len(rest) > 0 && isVersion(rest[0]) {
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return "", false
	}

	id := stripExt(strings.Join(rest, "/"))
	return id, id != ""
}

// isVersion 匹配 v<数字>。
func isVersion(seg string) bool {
	if len(seg) < 2 || seg[0] != 'v' {
		return false
	}
	_, err := strconv.ParseUint(seg[1:], 10, 64)
	return err == nil
}

// isTransformation 匹配 c_fill,w_200 这类由逗号分隔的 <key>_<value> 片段。
func isTransformation(seg string) bool {
	if seg == "" {
		return false
	}
	for _, part := range strings.Split(seg, ",") {
		key, value, ok := strings.Cut(part, "_")
		if !ok || value == "" || len(key) == 0 || len(key) > 3 {
			return false
		}
		for _, r := range key {
			if r < 'a' || r > 'z' {
				return false
			}
		}
	}
	return true
}
