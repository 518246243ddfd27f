package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/dutchcoders/go-clamd"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"vaultEnvelopes/internal/api/middleware"
)

// multipart 边界与其他字段预留的余量。
const multipartOverhead = 1 << 20

var (
	imageTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}
	audioTypes = []string{"audio/mpeg", "audio/mp3", "audio/wav", "audio/ogg"}
)

// fileRule 描述某个上传字段允许的类型与大小。
type fileRule struct {
	field     string
	maxBytes  int64
	allowed   []string
	rejectMsg string
}

func imageRule(field string) fileRule {
	return fileRule{
		field:     field,
		maxBytes:  10 << 20,
		allowed:   imageTypes,
		rejectMsg: "Invalid file type. Only JPEG, PNG, WebP, and GIF are allowed.",
	}
}

func audioRule() fileRule {
	return fileRule{
		field:     "music",
		maxBytes:  20 << 20,
		allowed:   audioTypes,
		rejectMsg: "Invalid file type. Only MP3, WAV, and OGG are allowed.",
	}
}

func (r fileRule) allows(contentType string) bool {
	for _, t := range r.allowed {
		if t == contentType {
			return true
		}
	}
	return false
}

type acceptedFile struct {
	name        string
	contentType string
	data        []byte
}

// acceptFile 读取字段中的文件并执行类型、大小与病毒扫描检查。失败时已写出响应。
func (h *UploadHandler) acceptFile(c *gin.Context, rule fileRule) (acceptedFile, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, rule.maxBytes+multipartOverhead)

	header, err := c.FormFile(rule.field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			Rejected(c, "File too large")
			return acceptedFile{}, false
		}
		Rejected(c, "No file uploaded")
		return acceptedFile{}, false
	}
	if header.Size > rule.maxBytes {
		Rejected(c, "File too large")
		return acceptedFile{}, false
	}

	f, err := header.Open()
	if err != nil {
		Internal(c, "Failed to read upload", err)
		return acceptedFile{}, false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, rule.maxBytes+1))
	if err != nil {
		Internal(c, "Failed to read upload", err)
		return acceptedFile{}, false
	}
	if int64(len(data)) > rule.maxBytes {
		Rejected(c, "File too large")
		return acceptedFile{}, false
	}

	contentType := declaredType(header.Header.Get("Content-Type"))
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = declaredType(mimetype.Detect(data).String())
	}
	if !rule.allows(contentType) {
		Rejected(c, rule.rejectMsg)
		return acceptedFile{}, false
	}

	if h.scanner != nil {
		if err := h.scanner.Scan(c.Request.Context(), bytes.NewReader(data)); err != nil {
			if errors.Is(err, errInfected) {
				middleware.LoggerFromContext(c).Warn("infected upload rejected",
					slog.String("filename", header.Filename),
					slog.Any("error", err),
				)
				Rejected(c, "Malicious file detected")
				return acceptedFile{}, false
			}
			middleware.LoggerFromContext(c).Error("scan upload failed", slog.Any("error", err))
			Internal(c, "Failed to scan file", err)
			return acceptedFile{}, false
		}
	}

	return acceptedFile{name: header.Filename, contentType: contentType, data: data}, true
}

func declaredType(raw string) string {
	if raw == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(raw))
	}
	return mediaType
}

var errInfected = errors.New("infected file")

// Scanner 在文件转存前进行病毒扫描。
type Scanner interface {
	Scan(ctx context.Context, r io.Reader) error
}

// ClamdScanner 通过 clamd INSTREAM 扫描。
type ClamdScanner struct {
	client *clamd.Clamd
}

func NewClamdScanner(addr string) *ClamdScanner {
	return &ClamdScanner{client: clamd.NewClamd(addr)}
}

func (s *ClamdScanner) Scan(ctx context.Context, r io.Reader) error {
	abortChan := make(chan bool)
	defer close(abortChan)

	scanChan, err := s.client.ScanStream(r, abortChan)
	if err != nil {
		return fmt.Errorf("clamd scan: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case result, ok := <-scanChan:
			if !ok {
				return nil
			}
			switch result.Status {
			case clamd.RES_OK:
			case clamd.RES_FOUND:
				return fmt.Errorf("%w: %s", errInfected, result.Description)
			default:
				return fmt.Errorf("clamd scan: %s", result.Raw)
			}
		}
	}
}
